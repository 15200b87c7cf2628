package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sheetslug/internal/config"
	"sheetslug/internal/delimited"
	"sheetslug/internal/logging"
	"sheetslug/internal/sessioncache"
	"sheetslug/internal/sheet"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	cache sessioncache.Manager
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// sessionCache opens the configured cache once per invocation.
func (c *commandContext) sessionCache(ctx context.Context) (sessioncache.Manager, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	cache, err := sessioncache.Open(ctx, cfg, c.log())
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}
	c.cache = cache
	return cache, nil
}

func (c *commandContext) newLoader(ctx context.Context) (*sheet.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	parser, err := delimited.NewParser(delimited.Options{Delimiter: cfg.DelimiterRune()})
	if err != nil {
		return nil, fmt.Errorf("source.delimiter: %w", err)
	}

	// A broken cache degrades to fetching every time.
	var cache sessioncache.Store = sessioncache.NopStore{}
	if opened, err := c.sessionCache(ctx); err != nil {
		logging.WarnWithContext(c.log(), "session cache unavailable", "cache_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache.backend and cache.path"),
			logging.String(logging.FieldImpact, "every load will fetch from the network"))
	} else {
		cache = opened
	}

	return sheet.New(cfg.Source.URL,
		sheet.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		sheet.WithCache(cache),
		sheet.WithTTL(cfg.CacheTTL()),
		sheet.WithUserAgent(cfg.Source.UserAgent),
		sheet.WithParser(parser),
		sheet.WithLogger(c.log()),
	)
}

func (c *commandContext) close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
