// Package querylog records resolved observation queries for operations.
// Entries are an audit of what callers asked for; nothing here caches or
// deduplicates query results.
package querylog

import (
	"context"
	"time"
)

// Entry is one resolved observation query.
type Entry struct {
	ID           string
	Network      string
	Parameter    string
	Period       string
	StationID    int64
	StationName  string
	ReadingCount int
	BucketCount  int
	Granularity  string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Repository persists query log entries.
type Repository interface {
	// Record stores an entry.
	Record(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
