// Package sessioncache stores the raw text of a fetched export between runs.
//
// Callers see a small key-value capability (Store) holding opaque blobs; the
// Entry codec layers a millisecond timestamp on top so readers can decide
// whether a blob is still fresh. Backends are interchangeable: an in-memory
// map for a single process session, a JSON document on disk guarded by a file
// lock, and a SQLite table. Every backend failure surfaces as a
// *StorageError so callers can treat it as a cache miss.
package sessioncache
