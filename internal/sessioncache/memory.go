package sessioncache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryItem struct {
	blob      []byte
	updatedAt time.Time
}

// MemoryStore keeps blobs for the lifetime of the process.
type MemoryStore struct {
	mu       sync.Mutex
	maxBytes int64
	items    map[string]memoryItem
}

// NewMemoryStore returns an empty store. A positive maxBytes caps the total
// size of stored blobs; writes past the cap fail with ErrQuotaExceeded.
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{maxBytes: maxBytes, items: make(map[string]memoryItem)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), item.blob...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxBytes > 0 {
		total := int64(len(blob))
		for k, item := range m.items {
			if k != key {
				total += int64(len(item.blob))
			}
		}
		if total > m.maxBytes {
			return storageErr("memory", "set", key, ErrQuotaExceeded)
		}
	}
	m.items[key] = memoryItem{blob: append([]byte(nil), blob...), updatedAt: time.Now()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]memoryItem)
	return nil
}

func (m *MemoryStore) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Stats{Backend: "memory", Location: "process memory"}
	for key, item := range m.items {
		stats.Entries++
		stats.Bytes += int64(len(item.blob))
		stats.Items = append(stats.Items, ItemStat{Key: key, Bytes: len(item.blob), UpdatedAt: item.updatedAt})
	}
	sortItems(stats.Items)
	return stats, nil
}

func (m *MemoryStore) Close() error { return nil }

// NopStore never holds anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopStore) Set(context.Context, string, []byte) error { return nil }

func (NopStore) Delete(context.Context, string) error { return nil }

func (NopStore) Clear(context.Context) error { return nil }

func (NopStore) Stats(context.Context) (Stats, error) {
	return Stats{Backend: "none", Location: "disabled"}, nil
}

func (NopStore) Close() error { return nil }

// sortItems orders newest first.
func sortItems(items []ItemStat) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
