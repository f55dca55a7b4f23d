// Package store persists all long-lived state in SQLite: season calendars,
// indexer and downloader definitions, scheduled searches, cached round search
// results, and manual download dispatches.
//
// The database opens with WAL journaling and a busy timeout, and short busy
// retries wrap writes so the scheduler loops and the HTTP API can share one
// file without coordination. Timestamps are stored as RFC3339Nano text in
// UTC. Schema creation is versioned; a version mismatch is an error rather
// than an in-place migration.
package store
