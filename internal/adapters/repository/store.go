// Package repository defines the output metric store.
//
// Output writing is all-or-nothing per run: records are staged while the
// run computes, and become externally observable only when Commit is
// called after the full aggregation completes. A failure before Commit
// leaves no visible rows.
package repository

import (
	"context"
	"sync"

	"github.com/mbvera/pulse-data/internal/domain/metric"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// Store accepts finished metric records and routes them to a destination
// keyed by metric type.
type Store interface {
	// Stage buffers one record for the pending run.
	Stage(ctx context.Context, rec metric.Record) error

	// Commit makes every staged record visible atomically. A store commits
	// at most once per run.
	Commit(ctx context.Context) error

	// Discard drops all staged records without publishing them.
	Discard(ctx context.Context)

	// Rows returns the committed rows for one metric type.
	Rows(ctx context.Context, t metric.Type) []map[string]any
}

// InMemoryStore implements Store with per-type row tables.
type InMemoryStore struct {
	mu        sync.RWMutex
	staged    []metric.Record
	committed map[metric.Type][]map[string]any
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Stage buffers one record for the pending run.
func (s *InMemoryStore) Stage(_ context.Context, rec metric.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed != nil {
		return ErrCommitted
	}
	s.staged = append(s.staged, rec)
	return nil
}

// Commit makes every staged record visible atomically.
func (s *InMemoryStore) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed != nil {
		return ErrCommitted
	}

	tables := make(map[metric.Type][]map[string]any)
	for _, rec := range s.staged {
		tables[rec.Type] = append(tables[rec.Type], rec.Row())
	}
	s.committed = tables
	s.staged = nil

	for t, rows := range tables {
		metrics.RecordRowsCommitted(t.String(), len(rows))
	}
	return nil
}

// Discard drops all staged records without publishing them.
func (s *InMemoryStore) Discard(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

// Rows returns the committed rows for one metric type. Nothing is visible
// before Commit.
func (s *InMemoryStore) Rows(_ context.Context, t metric.Type) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.committed == nil {
		return nil
	}
	rows := make([]map[string]any, len(s.committed[t]))
	copy(rows, s.committed[t])
	return rows
}
