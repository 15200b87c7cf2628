package testsupport

import (
	"path/filepath"
	"testing"

	"sheetslug/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cache defaults to the file backend inside the temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Source.URL = "http://127.0.0.1:1/export.csv"
	cfgVal.Cache.Backend = config.CacheBackendFile
	cfgVal.Cache.Path = filepath.Join(base, "cache", "session_cache.json")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Logging.Format = "json"
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceURL points the config at a test export server.
func WithSourceURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.URL = url
	}
}

// WithCacheBackend selects the cache backend. File and SQLite backends get a
// path inside the temp directory.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		switch backend {
		case config.CacheBackendFile:
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "cache", "session_cache.json")
		case config.CacheBackendSQLite:
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "cache", "session_cache.db")
		default:
			b.cfg.Cache.Path = ""
		}
	}
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
