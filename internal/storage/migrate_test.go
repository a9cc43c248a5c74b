package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateUpIsRepeatable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-repeat.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	kv, err := NewSQLiteKV(db)
	if err != nil {
		t.Fatalf("new kv after migrations: %v", err)
	}

	if err := kv.Set(t.Context(), "timers", []byte(`[]`)); err != nil {
		t.Fatalf("set after migrations failed: %v", err)
	}
	got, found, err := kv.Get(t.Context(), "timers")
	if err != nil || !found {
		t.Fatalf("get after migrations failed: found=%v err=%v", found, err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value after migrations: %q", got)
	}
}
