// Package worker defines the workers that run classification and
// combination generation across the person partition.
//
// Classification and mapping are pure functions of a single person's
// records, so workers need no coordination: each folds its observations
// into a worker-local shard, and the pipeline merges finished shards after
// all workers stop.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/mbvera/pulse-data/internal/adapters/mq/queue"
	"github.com/mbvera/pulse-data/internal/domain/aggregate"
	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/pkg/logger"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
)

// Mapper turns one person's records into raw metric observations. An error
// for one person is isolated: the person is excluded and processing of
// other persons continues.
type Mapper interface {
	MapPerson(ctx context.Context, rec model.PersonRecords) ([]aggregate.Observation, error)
}

// Queue defines how workers receive person graphs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.PersonRecords
}

// Worker processes person graphs into a local partial aggregation.
type Worker struct {
	queue  Queue
	mapper Mapper
	shard  *aggregate.Shard
	name   string

	done chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker's name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, mapper Mapper, opts ...Option) *Worker {
	w := &Worker{
		queue:  q,
		mapper: mapper,
		shard:  aggregate.NewShard(),
		name:   "worker",
		done:   make(chan struct{}),
		logger: logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes the queue until it drains or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for rec := range w.queue.Dequeue(ctx) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.processPerson(ctx, rec)
	}
}

// Shard returns the worker's partial aggregation. Only valid after Run
// returns.
func (w *Worker) Shard() *aggregate.Shard {
	<-w.done
	return w.shard
}

// processPerson maps one person and folds the observations locally.
func (w *Worker) processPerson(ctx context.Context, rec model.PersonRecords) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	observations, err := w.mapper.MapPerson(ctx, rec)
	if err != nil {
		// Per-person failures never block other persons.
		w.logger.Error(ctx, "excluding person from calculations",
			logger.Int64("personID", rec.Person.PersonID),
			logger.Error(err),
		)
		metrics.RecordContractViolation()
		metrics.RecordPersonSkipped()
		return
	}
	if len(observations) == 0 {
		w.logger.Debug(ctx, "no valid release events identified for person",
			logger.Int64("personID", rec.Person.PersonID),
		)
		metrics.RecordPersonSkipped()
		return
	}

	for _, obs := range observations {
		if err := w.shard.Add(obs); err != nil {
			w.logger.Error(ctx, "dropping observation",
				logger.Int64("personID", rec.Person.PersonID),
				logger.Error(err),
			)
			metrics.RecordContractViolation()
		}
	}
	metrics.RecordCombinationsGenerated(len(observations))
	metrics.RecordPersonProcessed()
}

// Pool manages a set of workers over one queue.
type Pool struct {
	workers []*Worker

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// falls back to a multiple of the CPU count.
func NewPool(workerCount int, q Queue, mapper Mapper) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(q, mapper, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Run starts every worker and blocks until all of them finish.
func (p *Pool) Run(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	for _, w := range p.workers {
		<-w.done
	}
	metrics.UpdateWorkerActiveCount(0)
	p.logger.Debug(ctx, "all workers finished", logger.Int("workers", len(p.workers)))
}

// MergedShard merges every worker's partial aggregation. Only valid after
// Run returns. Merge order does not affect the result.
func (p *Pool) MergedShard() (*aggregate.Shard, error) {
	merged := aggregate.NewShard()
	for _, w := range p.workers {
		if err := merged.Merge(w.Shard()); err != nil {
			return nil, fmt.Errorf("merging worker shard: %w", err)
		}
	}
	metrics.UpdateAggregationBuckets(merged.Len())
	return merged, nil
}
