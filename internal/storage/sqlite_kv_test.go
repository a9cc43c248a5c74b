package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "timerd-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteKVAbsentKey(t *testing.T) {
	kv := setupSQLite(t)
	value, found, err := kv.Get(context.Background(), "timers")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found || value != nil {
		t.Fatalf("expected absent key, got found=%v value=%q", found, value)
	}
}

func TestSQLiteKVSetOverwritesAndLists(t *testing.T) {
	kv := setupSQLite(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "timers", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("set timers: %v", err)
	}
	if err := kv.Set(ctx, "timerHistory", []byte(`[]`)); err != nil {
		t.Fatalf("set history: %v", err)
	}
	if err := kv.Set(ctx, "timers", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite timers: %v", err)
	}

	got, found, err := kv.Get(ctx, "timers")
	if err != nil || !found {
		t.Fatalf("get timers: found=%v err=%v", found, err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	keys := storedKeys(t, kv)
	if diff := cmp.Diff([]string{"timerHistory", "timers"}, keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
}

func TestSQLiteKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := kv.Set(context.Background(), "timers", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = kv.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, found, err := reopened.Get(context.Background(), "timers")
	if err != nil || !found || string(got) != "[1]" {
		t.Fatalf("unexpected value after reopen: %q found=%v err=%v", got, found, err)
	}
}

func TestKVRejectsInvalidKeys(t *testing.T) {
	kv := setupSQLite(t)
	for _, key := range []string{"", "  ", "a/b", `a\b`} {
		if err := kv.Set(context.Background(), key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", key, err)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Backend("redis"), ""); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func storedKeys(t *testing.T, kv *SQLiteKV) []string {
	t.Helper()
	rows, err := kv.db.Query(`SELECT key FROM kv ORDER BY key ASC`)
	if err != nil {
		t.Fatalf("query keys: %v", err)
	}
	defer rows.Close()
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			t.Fatalf("scan key: %v", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return keys
}
