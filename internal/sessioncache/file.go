package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"sheetslug/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

type fileRecord struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type fileDocument struct {
	Entries map[string]fileRecord `json:"entries"`
}

// FileStore keeps every key in one JSON document. Writes go through a temp
// file and rename, and a sibling .lock file serializes access between
// processes sharing the cache. Values are stored as text.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	lock   *flock.Flock
}

// NewFileStore returns a store backed by path. The file is created lazily on
// the first Set.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logging.NewComponentLogger(logger, "sessioncache"),
		lock:   flock.New(path + ".lock"),
	}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		rec   fileRecord
		found bool
	)
	err := s.withLock(ctx, false, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		rec, found = doc.Entries[key]
		return nil
	})
	if err != nil {
		return nil, false, storageErr("file", "get", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return []byte(rec.Value), true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, blob []byte) error {
	err := s.withLock(ctx, true, func() error {
		doc, err := s.load()
		if err != nil {
			s.logger.Debug("discarding unreadable cache file",
				logging.String("path", s.path),
				logging.Error(err))
			doc = fileDocument{}
		}
		if doc.Entries == nil {
			doc.Entries = make(map[string]fileRecord)
		}
		doc.Entries[key] = fileRecord{Value: string(blob), UpdatedAt: time.Now().UTC()}
		return s.save(doc)
	})
	return storageErr("file", "set", key, err)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := s.withLock(ctx, true, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		if _, ok := doc.Entries[key]; !ok {
			return nil
		}
		delete(doc.Entries, key)
		return s.save(doc)
	})
	return storageErr("file", "delete", key, err)
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := s.withLock(ctx, true, func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove cache file: %w", err)
		}
		return nil
	})
	return storageErr("file", "clear", "", err)
}

func (s *FileStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: "file", Location: s.path}
	err := s.withLock(ctx, false, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		for key, rec := range doc.Entries {
			stats.Entries++
			stats.Bytes += int64(len(rec.Value))
			stats.Items = append(stats.Items, ItemStat{Key: key, Bytes: len(rec.Value), UpdatedAt: rec.UpdatedAt})
		}
		return nil
	})
	if err != nil {
		return Stats{}, storageErr("file", "stats", "", err)
	}
	sortItems(stats.Items)
	return stats, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return errors.New("acquire cache lock: not acquired")
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Debug("release cache lock failed", logging.Error(err))
		}
	}()

	return fn()
}

// load reads the document; a missing or empty file is an empty document.
func (s *FileStore) load() (fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileDocument{}, nil
		}
		return fileDocument{}, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return fileDocument{}, nil
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("parse cache file: %w", err)
	}
	return doc, nil
}

// save writes the document atomically via a temp file.
func (s *FileStore) save(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
