package querylog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository is an in-memory implementation of Repository. It backs
// deployments without a database and is used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

// NewInMemoryRepository creates a new in-memory query log keeping at most
// max entries (default 1000).
func NewInMemoryRepository(max int) *InMemoryRepository {
	if max <= 0 {
		max = 1000
	}
	return &InMemoryRepository{max: max}
}

// Record stores an entry, evicting the oldest when full.
func (r *InMemoryRepository) Record(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *InMemoryRepository) Recent(_ context.Context, limit int) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if limit > n {
		limit = n
	}

	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
