package sheet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"sheetslug/internal/delimited"
	"sheetslug/internal/logging"
	"sheetslug/internal/records"
	"sheetslug/internal/sessioncache"
)

const (
	defaultUserAgent = "sheetslug/dev"
	defaultTimeout   = 30 * time.Second
	// defaultMaxBody bounds how much of a response is read.
	defaultMaxBody = 32 << 20
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises Loader construction.
type Option func(*Loader)

// WithHTTPClient overrides the client used to fetch the export.
func WithHTTPClient(client HTTPDoer) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithCache injects the session cache. A nil store disables caching.
func WithCache(store sessioncache.Store) Option {
	return func(l *Loader) {
		l.cache = store
	}
}

// WithTTL overrides how long cached text stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithUserAgent sets the User-Agent header sent with each fetch.
func WithUserAgent(agent string) Option {
	return func(l *Loader) {
		l.userAgent = strings.TrimSpace(agent)
	}
}

// WithParser overrides the delimited-text parser.
func WithParser(parser *delimited.Parser) Option {
	return func(l *Loader) {
		l.parser = parser
	}
}

// WithMaxBodyBytes overrides the largest export accepted. Larger responses
// fail the fetch.
func WithMaxBodyBytes(n int64) Option {
	return func(l *Loader) {
		l.maxBody = n
	}
}

// Loader fetches the export, caches the raw text, and builds records. A
// Loader is not safe for concurrent use.
type Loader struct {
	url       string
	client    HTTPDoer
	cache     sessioncache.Store
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
	userAgent string
	parser    *delimited.Parser
	maxBody   int64
}

// Result is one completed load.
type Result struct {
	Records   []records.Record
	FromCache bool
	FetchedAt time.Time
	LoadID    string
}

// New builds a Loader for sourceURL.
func New(sourceURL string, opts ...Option) (*Loader, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, Wrap(ErrConfiguration, "new loader", fmt.Sprintf("invalid source url %q", sourceURL), err)
	}

	l := &Loader{
		url:       sourceURL,
		client:    &http.Client{Timeout: defaultTimeout},
		cache:     sessioncache.NopStore{},
		ttl:       sessioncache.DefaultTTL,
		now:       time.Now,
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.client == nil {
		l.client = &http.Client{Timeout: defaultTimeout}
	}
	if l.cache == nil {
		l.cache = sessioncache.NopStore{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.ttl < 0 {
		l.ttl = 0
	}
	if l.maxBody <= 0 {
		l.maxBody = defaultMaxBody
	}
	if l.userAgent == "" {
		l.userAgent = defaultUserAgent
	}
	if l.parser == nil {
		l.parser, _ = delimited.NewParser(delimited.Options{})
	}
	l.logger = logging.NewComponentLogger(l.logger, "sheet")
	return l, nil
}

// URL returns the export location.
func (l *Loader) URL() string { return l.url }

// CacheKey returns the session cache key for the export.
func (l *Loader) CacheKey() string { return sessioncache.Key(l.url) }

// FetchText returns the export text, from the cache when a fresh non-empty
// entry exists and from the network otherwise.
func (l *Loader) FetchText(ctx context.Context) (string, error) {
	text, _, err := l.fetchText(ctx, l.logger, false)
	return text, err
}

// Load fetches the export and builds records from it.
func (l *Loader) Load(ctx context.Context) ([]records.Record, error) {
	res, err := l.LoadResult(ctx)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// LoadResult is Load with provenance.
func (l *Loader) LoadResult(ctx context.Context) (Result, error) {
	return l.load(ctx, false)
}

// Refresh ignores any cached text, fetches the export, and rewrites the
// cache entry.
func (l *Loader) Refresh(ctx context.Context) (Result, error) {
	return l.load(ctx, true)
}

func (l *Loader) load(ctx context.Context, bypassCache bool) (Result, error) {
	loadID := uuid.NewString()
	logger := l.logger.With(logging.String(logging.FieldLoadID, loadID))
	started := time.Now()

	text, prov, err := l.fetchText(ctx, logger, bypassCache)
	if err != nil {
		return Result{}, err
	}

	recs := records.Build(l.parser.Parse(text))
	logger.Info("sheet loaded",
		logging.String(logging.FieldEventType, "sheet_loaded"),
		logging.Int("records", len(recs)),
		logging.Bool("from_cache", prov.fromCache),
		logging.Duration("elapsed", time.Since(started)))

	return Result{
		Records:   recs,
		FromCache: prov.fromCache,
		FetchedAt: prov.fetchedAt,
		LoadID:    loadID,
	}, nil
}

type provenance struct {
	fromCache bool
	fetchedAt time.Time
}

func (l *Loader) fetchText(ctx context.Context, logger *slog.Logger, bypassCache bool) (string, provenance, error) {
	key := l.CacheKey()
	if !bypassCache {
		if entry, ok := l.readCache(ctx, logger, key); ok {
			logger.Debug("using cached export",
				logging.String(logging.FieldCacheKey, key),
				logging.Int64("cached_at_ms", entry.Timestamp))
			return entry.Text, provenance{fromCache: true, fetchedAt: entry.StoredAt()}, nil
		}
	}

	text, err := l.fetch(ctx, logger)
	if err != nil {
		return "", provenance{}, err
	}
	fetchedAt := l.now()
	l.writeCache(ctx, logger, key, sessioncache.NewEntry(fetchedAt, text))
	return text, provenance{fetchedAt: fetchedAt}, nil
}

// readCache returns a usable entry. Every failure is a miss.
func (l *Loader) readCache(ctx context.Context, logger *slog.Logger, key string) (sessioncache.Entry, bool) {
	blob, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "session cache read failed", "cache_read_failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(Wrap(ErrCache, "read", "", err)),
			logging.String(logging.FieldErrorHint, "check cache.path permissions or run 'sheetslug cache clear'"),
			logging.String(logging.FieldImpact, "export will be fetched from the network"))
		return sessioncache.Entry{}, false
	}
	if !ok {
		return sessioncache.Entry{}, false
	}
	entry, err := sessioncache.DecodeEntry(blob)
	if err != nil {
		logging.WarnWithContext(logger, "session cache entry unreadable", "cache_entry_malformed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(Wrap(ErrCache, "decode", "", err)),
			logging.String(logging.FieldErrorHint, "run 'sheetslug cache clear'"),
			logging.String(logging.FieldImpact, "export will be fetched from the network"))
		return sessioncache.Entry{}, false
	}
	if entry.Text == "" || !entry.Fresh(l.now(), l.ttl) {
		return sessioncache.Entry{}, false
	}
	return entry, true
}

func (l *Loader) writeCache(ctx context.Context, logger *slog.Logger, key string, entry sessioncache.Entry) {
	blob, err := entry.Encode()
	if err == nil {
		err = l.cache.Set(ctx, key, blob)
	}
	if err != nil {
		logging.WarnWithContext(logger, "session cache write failed", "cache_write_failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(Wrap(ErrCache, "write", "", err)),
			logging.String(logging.FieldErrorHint, "check free space and cache.path permissions"),
			logging.String(logging.FieldImpact, "the next load will fetch again"))
	}
}

func (l *Loader) fetch(ctx context.Context, logger *slog.Logger) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", Wrap(ErrFetch, "build request", "", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	logger.Debug("fetching export", logging.String(logging.FieldSourceURL, l.url))
	resp, err := l.client.Do(req)
	if err != nil {
		return "", Wrap(ErrFetch, "get", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg += ": " + s
		}
		return "", Wrap(ErrFetch, "get", msg, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return "", Wrap(ErrFetch, "read body", "", err)
	}
	if int64(len(body)) > l.maxBody {
		return "", Wrap(ErrFetch, "read body", fmt.Sprintf("export exceeds %d bytes", l.maxBody), nil)
	}
	return string(body), nil
}
