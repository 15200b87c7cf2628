package sessioncache

import (
	"context"
	"fmt"
	"log/slog"

	"sheetslug/internal/config"
)

// Open returns the backend selected by cfg.Cache.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Manager, error) {
	if cfg == nil {
		return NopStore{}, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return NopStore{}, nil
	case config.CacheBackendMemory:
		return NewMemoryStore(0), nil
	case config.CacheBackendFile:
		return NewFileStore(cfg.Cache.Path, logger), nil
	case config.CacheBackendSQLite:
		store, err := OpenSQLite(ctx, cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("cache.backend: unsupported value %q", cfg.Cache.Backend)
	}
}
