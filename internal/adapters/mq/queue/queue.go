// Package queue defines the contract for feeding person graphs to the
// calculation workers.
//
// Implementations may use channels or more advanced structures; the
// in-memory bounded queue is sufficient for a single-process run.
package queue

import (
	"context"
	"sync"

	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// PersonRecords is the payload type flowing through the queue.
type PersonRecords = model.PersonRecords

// Queue provides blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a person graph to the queue, blocking while the queue is
	// full. Returns false if the queue is closed or ctx is done.
	Enqueue(ctx context.Context, rec PersonRecords) bool

	// Dequeue returns a channel that receives person graphs as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan PersonRecords

	// Len returns the current number of queued person graphs.
	Len(ctx context.Context) int

	// Close signals that no more person graphs will arrive. After closing,
	// Enqueue returns false and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan PersonRecords
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.records = make(chan PersonRecords, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a person graph to the queue, blocking while full. The read
// lock is held across the send; Close takes the write lock, so the channel
// is never closed under an in-flight send.
func (q *InMemoryQueue) Enqueue(ctx context.Context, rec PersonRecords) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.records <- rec:
		q.observe()
		return true
	case <-ctx.Done():
		return false
	}
}

// Dequeue returns a channel that receives person graphs as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan PersonRecords {
	out := make(chan PersonRecords)
	go func() {
		defer close(out)
		for rec := range q.records {
			select {
			case out <- rec:
				q.observe()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued person graphs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.records)
}

// Close signals that no more person graphs will arrive.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// observe refreshes the queue gauges after a size change.
func (q *InMemoryQueue) observe() {
	size := len(q.records)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
