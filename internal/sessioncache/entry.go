package sessioncache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL is how long a cached export stays fresh (21,600,000 ms).
const DefaultTTL = 6 * time.Hour

const keyPrefix = "csv_cache_"

// Key derives the cache key for a source URL.
func Key(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// Entry is the cached payload: the export text and when it was fetched, in
// Unix milliseconds.
type Entry struct {
	Timestamp int64  `json:"ts"`
	Text      string `json:"text"`
}

// NewEntry stamps text with now.
func NewEntry(now time.Time, text string) Entry {
	return Entry{Timestamp: now.UnixMilli(), Text: text}
}

// Encode renders the entry as JSON.
func (e Entry) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses a blob written by Encode.
func DecodeEntry(blob []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(blob, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}
	return e, nil
}

// StoredAt returns the fetch time.
func (e Entry) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Fresh reports whether the entry carries a timestamp younger than ttl.
// A zero timestamp is never fresh.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if e.Timestamp <= 0 {
		return false
	}
	return now.UnixMilli()-e.Timestamp < ttl.Milliseconds()
}
