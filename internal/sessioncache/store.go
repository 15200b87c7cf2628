package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrQuotaExceeded reports a write rejected because the store is full.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrMalformedEntry reports a blob that does not decode as an Entry.
	ErrMalformedEntry = errors.New("malformed cache entry")
)

// Store is the key-value capability the loader depends on.
type Store interface {
	// Get returns the blob stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores blob under key, replacing any previous value.
	Set(ctx context.Context, key string, blob []byte) error
}

// Manager is implemented by every backend in this package and backs the
// cache maintenance commands.
type Manager interface {
	Store
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes a backend's contents.
type Stats struct {
	Backend  string
	Location string
	Entries  int
	Bytes    int64
	Items    []ItemStat
}

// ItemStat describes one stored blob.
type ItemStat struct {
	Key       string
	Bytes     int
	UpdatedAt time.Time
}

// StorageError wraps a backend failure with the operation and key involved.
type StorageError struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s cache %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s cache %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(backend, op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Backend: backend, Op: op, Key: key, Err: err}
}
