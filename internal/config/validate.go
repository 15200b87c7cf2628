package config

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url must be set (or export %s)", envSourceURL)
	}
	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("source.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source.url: unsupported scheme %q (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("source.url: missing host")
	}
	if c.Source.TimeoutSeconds < 0 {
		return errors.New("source.timeout_seconds must be zero or positive")
	}
	if utf8.RuneCountInString(c.Source.Delimiter) != 1 {
		return fmt.Errorf("source.delimiter must be a single character, got %q", c.Source.Delimiter)
	}
	switch c.Source.Delimiter {
	case `"`, "\n", "\r":
		return fmt.Errorf("source.delimiter %q is reserved", c.Source.Delimiter)
	}
	if c.Source.Delimiter[0] >= utf8.RuneSelf {
		return fmt.Errorf("source.delimiter %q must be a single-byte character", c.Source.Delimiter)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendFile, CacheBackendSQLite:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path must be set when cache.backend is %q", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want none, memory, file, or sqlite)", c.Cache.Backend)
	}
	if c.Cache.TTLMinutes < 0 {
		return errors.New("cache.ttl_minutes must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
