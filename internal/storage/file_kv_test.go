package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileKVRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	kv, err := OpenFileKV(dir)
	if err != nil {
		t.Fatalf("open file kv: %v", err)
	}
	ctx := context.Background()

	if _, found, err := kv.Get(ctx, "timerHistory"); err != nil || found {
		t.Fatalf("expected absent key, found=%v err=%v", found, err)
	}

	if err := kv.Set(ctx, "timerHistory", []byte(`[{"id":"x"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "timerHistory.json"))
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	if string(raw) != `[{"id":"x"}]` {
		t.Fatalf("unexpected backing file content: %q", raw)
	}

	got, found, err := kv.Get(ctx, "timerHistory")
	if err != nil || !found || string(got) != `[{"id":"x"}]` {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}
}

func TestFileKVRequiresDir(t *testing.T) {
	if _, err := OpenFileKV("  "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestFileKVHonorsCanceledContext(t *testing.T) {
	kv, err := OpenFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := kv.Set(ctx, "timers", []byte("[]")); err == nil {
		t.Fatal("expected canceled context error")
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	value := []byte("abc")
	if err := kv.Set(ctx, "timers", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'z'
	got, found, err := kv.Get(ctx, "timers")
	if err != nil || !found || string(got) != "abc" {
		t.Fatalf("expected stored copy, got %q found=%v err=%v", got, found, err)
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		backend Backend
		path    string
	}{
		{BackendSQLite, filepath.Join(dir, "timerd.db")},
		{BackendJSON, filepath.Join(dir, "json")},
		{BackendMemory, ""},
	} {
		kv, err := Open(tc.backend, tc.path)
		if err != nil {
			t.Fatalf("open %s: %v", tc.backend, err)
		}
		if err := kv.Set(context.Background(), "timers", []byte("[]")); err != nil {
			t.Fatalf("set via %s: %v", tc.backend, err)
		}
		_ = kv.Close()
	}
}
