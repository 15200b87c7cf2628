// Package api serves loaded records over HTTP.
//
// # Routes
//
//	GET  /api/records         every record plus load provenance
//	GET  /api/records/{slug}  one record; 404 carries close-match suggestions
//	POST /api/refresh         reload bypassing the session cache
//	GET  /api/status          last load summary without triggering a load
//
// Loads are serialised behind a mutex because sheet.Loader is not safe for
// concurrent use. The last successful result is kept for /api/status.
//
// When a token is configured every route requires
// "Authorization: Bearer <token>".
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Records are emitted as flat objects keyed by
// the sheet headers, with "slug" and "_src_index" added. Timestamps use
// RFC3339 with milliseconds.
package api
