package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	envSourceURL    = "SHEETSLUG_SOURCE_URL"
	envCacheBackend = "SHEETSLUG_CACHE_BACKEND"
	envCacheTTL     = "SHEETSLUG_CACHE_TTL_MINUTES"
	envAPIToken     = "SHEETSLUG_API_TOKEN"
	envLogLevel     = "SHEETSLUG_LOG_LEVEL"
)

func (c *Config) normalize() error {
	c.normalizeSource()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeAPI()
	return c.normalizeLogging()
}

func (c *Config) normalizeSource() {
	if value, ok := lookupEnv(envSourceURL); ok {
		c.Source.URL = value
	}
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = defaultUserAgent
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Source.Delimiter == "" {
		c.Source.Delimiter = defaultDelimiter
	}
	if c.Source.Delimiter == `\t` {
		c.Source.Delimiter = "\t"
	}
}

func (c *Config) normalizeCache() error {
	if value, ok := lookupEnv(envCacheBackend); ok {
		c.Cache.Backend = value
	}
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if value, ok := lookupEnv(envCacheTTL); ok {
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", envCacheTTL, err)
		}
		c.Cache.TTLMinutes = minutes
	}

	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.Path == "" {
		switch c.Cache.Backend {
		case CacheBackendFile:
			c.Cache.Path = filepath.Join(defaultCacheDir(), defaultCacheFileName)
		case CacheBackendSQLite:
			c.Cache.Path = filepath.Join(defaultCacheDir(), defaultCacheDBName)
		}
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if value, ok := lookupEnv(envAPIToken); ok {
		c.API.Token = value
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := lookupEnv(envLogLevel); ok {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

// lookupEnv returns a trimmed, non-empty environment value.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
