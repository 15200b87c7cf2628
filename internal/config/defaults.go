package config

const (
	defaultSourceURL      = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSIEOUVLIXPvHK6BoHxM8c55p6M3zf8g1p7Lhj2DD1ukJIHIuWFf6Vo7HlH7OR_dOLU5fkZLA5T-j2h/pub?gid=1509118300&single=true&output=csv"
	defaultUserAgent      = "sheetslug/dev"
	defaultTimeoutSeconds = 30
	defaultDelimiter      = ","
	defaultCacheBackend   = CacheBackendFile
	defaultCacheTTLMins   = 360
	defaultCacheFileName  = "session_cache.json"
	defaultCacheDBName    = "session_cache.db"
	defaultAPIBind        = "127.0.0.1:7488"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Cache backends accepted by cache.backend.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Source: Source{
			URL:            defaultSourceURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
			Delimiter:      defaultDelimiter,
		},
		Cache: Cache{
			Backend:    defaultCacheBackend,
			TTLMinutes: defaultCacheTTLMins,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
