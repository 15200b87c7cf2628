package api

import (
	"time"

	"sheetslug/internal/records"
	"sheetslug/internal/sheet"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// LoadSummary describes one completed load.
type LoadSummary struct {
	LoadID    string `json:"loadId"`
	Count     int    `json:"count"`
	FromCache bool   `json:"fromCache"`
	FetchedAt string `json:"fetchedAt,omitempty"`
}

// RecordListResponse wraps GET /api/records.
type RecordListResponse struct {
	LoadSummary
	Records []records.Record `json:"records"`
}

// RecordResponse wraps GET /api/records/{slug}.
type RecordResponse struct {
	Record records.Record `json:"record"`
}

// NotFoundResponse is returned when a slug does not match any record.
type NotFoundResponse struct {
	Error       string   `json:"error"`
	Slug        string   `json:"slug"`
	Suggestions []string `json:"suggestions"`
}

// StatusResponse wraps GET /api/status.
type StatusResponse struct {
	SourceURL     string       `json:"sourceUrl"`
	StartedAt     string       `json:"startedAt"`
	UptimeSeconds int64        `json:"uptimeSeconds"`
	LastLoad      *LoadSummary `json:"lastLoad,omitempty"`
	LastError     string       `json:"lastError,omitempty"`
}

// FromResult converts a loader result into its summary form.
func FromResult(res sheet.Result) LoadSummary {
	return LoadSummary{
		LoadID:    res.LoadID,
		Count:     len(res.Records),
		FromCache: res.FromCache,
		FetchedAt: formatTime(res.FetchedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
