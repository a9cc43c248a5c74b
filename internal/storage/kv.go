package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey     = errors.New("storage: invalid key")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// KV stores opaque values under string keys. Get reports found=false for an
// absent key rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMemory Backend = "memory"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendJSON, BackendMemory:
		return true
	default:
		return false
	}
}

// Open returns the KV for a backend. path is the SQLite file for sqlite, the
// directory for json, and ignored for memory.
func Open(backend Backend, path string) (KV, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendJSON:
		return OpenFileKV(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
