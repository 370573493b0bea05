package queue

import (
	"context"
	"testing"
	"time"

	"github.com/mbvera/pulse-data/internal/domain/model"
)

func record(id int64) PersonRecords {
	return PersonRecords{Person: model.Person{PersonID: id, StateCode: "US_ND"}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, record(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	rec := <-q.Dequeue(ctx)
	if rec.Person.PersonID != 1 {
		t.Errorf("expected person 1, got %d", rec.Person.PersonID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_BlocksWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if !q.Enqueue(ctx, record(1)) {
		t.Error("expected enqueue to succeed")
	}

	// A full queue blocks until the context expires.
	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if q.Enqueue(timeoutCtx, record(2)) {
		t.Error("expected enqueue to fail once the context expired")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, record(1))
	q.Enqueue(ctx, record(2))

	if q.IsClosed() {
		t.Error("expected queue to be open")
	}
	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}

	// Closing twice is harmless.
	if err := q.Close(); err != nil {
		t.Errorf("unexpected error on second close: %v", err)
	}

	// Enqueue after close fails.
	if q.Enqueue(ctx, record(3)) {
		t.Error("expected enqueue to fail after close")
	}

	// The dequeue channel drains buffered records then closes.
	var drained []int64
	for rec := range q.Dequeue(ctx) {
		drained = append(drained, rec.Person.PersonID)
	}
	if len(drained) != 2 {
		t.Errorf("expected 2 drained records, got %d", len(drained))
	}
}

func TestInMemoryQueue_CloseWaitsForBlockedEnqueue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	q.Enqueue(context.Background(), record(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The second enqueue blocks on the full queue while Close races it.
	// Close must wait for the send to resolve rather than closing the
	// channel underneath it.
	enqueued := make(chan bool)
	go func() {
		enqueued <- q.Enqueue(ctx, record(2))
	}()

	closed := make(chan error)
	go func() {
		time.Sleep(10 * time.Millisecond)
		closed <- q.Close()
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if <-enqueued {
		t.Error("expected the blocked enqueue to fail")
	}
	if err := <-closed; err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
}

func TestInMemoryQueue_EnqueueHonorsCancellation(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	q.Enqueue(context.Background(), record(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The queue is full and the context is already done.
	if q.Enqueue(ctx, record(2)) {
		t.Error("expected enqueue to fail with a cancelled context")
	}
}
