package sessioncache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sheetslug/internal/config"
)

func exerciseManager(t *testing.T, m Manager) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "k1", []byte(`{"ts":1,"text":"a"}`)); err != nil {
		t.Fatalf("Set k1: %v", err)
	}
	if err := m.Set(ctx, "k2", []byte("second")); err != nil {
		t.Fatalf("Set k2: %v", err)
	}
	if err := m.Set(ctx, "k1", []byte(`{"ts":2,"text":"b"}`)); err != nil {
		t.Fatalf("overwrite k1: %v", err)
	}

	blob, ok, err := m.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Get(k1) = ok=%v err=%v", ok, err)
	}
	if string(blob) != `{"ts":2,"text":"b"}` {
		t.Fatalf("Get(k1) = %s", blob)
	}

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 || len(stats.Items) != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Bytes != int64(len(`{"ts":2,"text":"b"}`)+len("second")) {
		t.Fatalf("unexpected byte count %d", stats.Bytes)
	}

	if err := m.Delete(ctx, "k2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k2"); ok {
		t.Fatal("expected k2 to be deleted")
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k1"); ok {
		t.Fatal("expected k1 to be cleared")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseManager(t, NewMemoryStore(0))
}

func TestMemoryStoreQuota(t *testing.T) {
	m := NewMemoryStore(8)
	ctx := context.Background()
	if err := m.Set(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}
	err := m.Set(ctx, "b", []byte("12345"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "set" || storageErr.Key != "b" {
		t.Fatalf("expected StorageError for set b, got %#v", err)
	}
	if err := m.Set(ctx, "a", []byte("12345678")); err != nil {
		t.Fatalf("overwriting within quota should succeed: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	exerciseManager(t, NewFileStore(path, nil))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()
	if err := NewFileStore(path, nil).Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	blob, ok, err := NewFileStore(path, nil).Get(ctx, "k")
	if err != nil || !ok || string(blob) != "v" {
		t.Fatalf("Get from second instance = %q ok=%v err=%v", blob, ok, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should not linger: %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := NewFileStore(path, nil)
	ctx := context.Background()

	_, _, err := store.Get(ctx, "k")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError for corrupt file, got %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set should replace a corrupt file: %v", err)
	}
	blob, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(blob) != "v" {
		t.Fatalf("Get after repair = %q ok=%v err=%v", blob, ok, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseManager(t, store)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Set(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	blob, ok, err := second.Get(ctx, "k")
	if err != nil || !ok || string(blob) != "persisted" {
		t.Fatalf("Get after reopen = %q ok=%v err=%v", blob, ok, err)
	}
}

func TestSQLiteStoreSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := OpenSQLite(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestNopStore(t *testing.T) {
	ctx := context.Background()
	var s NopStore
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("NopStore.Get = ok=%v err=%v", ok, err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		want    string
	}{
		{config.CacheBackendNone, "", "none"},
		{config.CacheBackendMemory, "", "memory"},
		{config.CacheBackendFile, filepath.Join(dir, "c.json"), "file"},
		{config.CacheBackendSQLite, filepath.Join(dir, "c.db"), "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Path = tt.path
			m, err := Open(context.Background(), &cfg, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer m.Close()
			stats, err := m.Stats(context.Background())
			if err != nil {
				t.Fatalf("Stats: %v", err)
			}
			if stats.Backend != tt.want {
				t.Fatalf("backend = %q, want %q", stats.Backend, tt.want)
			}
		})
	}

	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	if _, err := Open(context.Background(), &cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
