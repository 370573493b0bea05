// Package app wires the calculation pipeline together: it feeds person
// graphs through the classification workers, merges their partial
// aggregations, builds output metrics, and commits them to the store.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/mbvera/pulse-data/internal/adapters/mq/queue"
	"github.com/mbvera/pulse-data/internal/adapters/mq/worker"
	"github.com/mbvera/pulse-data/internal/adapters/repository"
	"github.com/mbvera/pulse-data/internal/config"
	"github.com/mbvera/pulse-data/internal/domain/aggregate"
	"github.com/mbvera/pulse-data/internal/domain/calculator"
	"github.com/mbvera/pulse-data/internal/domain/dedupe"
	"github.com/mbvera/pulse-data/internal/domain/identifier"
	"github.com/mbvera/pulse-data/internal/domain/metric"
	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/internal/domain/timerange"
	"github.com/mbvera/pulse-data/pkg/logger"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// Source supplies the pipeline's inputs: one pre-linked entity graph per
// person and the county-of-residence lookup table.
type Source interface {
	Records(ctx context.Context) (<-chan model.PersonRecords, error)
	CountyOfResidence(ctx context.Context) (map[int64]string, error)
}

// Summary reports what one run produced.
type Summary struct {
	JobID             string
	PersonsEnqueued   int
	DuplicatesSkipped int
	FilteredOut       int
	Buckets           int
	RecordsBuilt      map[string]int
	RecordsDropped    int
	Committed         bool
}

// Service runs calculation pipelines against a metric store.
type Service struct {
	store repository.Store

	metricTypes    []string
	stateCode      string
	personFilter   map[int64]bool
	endMonth       string
	workerCount    int
	queueSize      int
	personLevel    bool
	externalIDType string
	methodologyAll bool

	project string
	jobName string
	region  string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the output metric store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMetricTypes selects metric types by name; ALL selects everything.
func WithMetricTypes(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.metricTypes = names
		}
	}
}

// WithStateCode restricts the run to one state.
func WithStateCode(code string) Option {
	return func(s *Service) {
		s.stateCode = code
	}
}

// WithPersonFilter restricts the run to specific person ids for debugging.
// Output writing is suppressed when the filter is non-empty.
func WithPersonFilter(ids []int64) Option {
	return func(s *Service) {
		if len(ids) == 0 {
			return
		}
		s.personFilter = make(map[int64]bool, len(ids))
		for _, id := range ids {
			s.personFilter[id] = true
		}
	}
}

// WithCalculationEndMonth sets the YYYY-MM month reporting windows end in.
func WithCalculationEndMonth(value string) Option {
	return func(s *Service) {
		s.endMonth = value
	}
}

// WithWorkerCount sets the number of calculation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the in-memory person queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPersonLevel enables person-level identifiers on output metrics.
func WithPersonLevel(idType string) Option {
	return func(s *Service) {
		s.personLevel = true
		s.externalIDType = idType
	}
}

// WithMethodologyAll adds the combined-methodology variant.
func WithMethodologyAll() Option {
	return func(s *Service) {
		s.methodologyAll = true
	}
}

// WithJobDetails identifies the run for the job id stamp.
func WithJobDetails(project, jobName, region string) Option {
	return func(s *Service) {
		if project != "" {
			s.project = project
		}
		if jobName != "" {
			s.jobName = jobName
		}
		if region != "" {
			s.region = region
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service with the provided options.
func New(opts ...Option) *Service {
	s := &Service{
		store:       repository.NewInMemoryStore(),
		metricTypes: []string{metric.AllSentinel},
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		project:     "pulse-data",
		jobName:     "recidivism-calculations",
		region:      "local",
		logger:      logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the service's metric store.
func (s *Service) Store() repository.Store { return s.store }

// Run executes one calculation pipeline over the source. The run is
// deterministic and side-effect-free apart from the store commit, so the
// orchestration layer may re-invoke it with identical inputs.
//
// Configuration errors (an unknown metric type, an invalid end month) fail
// the run before any person is processed. Per-person failures are logged
// and excluded without aborting the run.
func (s *Service) Run(ctx context.Context, source Source) (Summary, error) {
	inclusions, err := metric.ParseSelection(s.metricTypes)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	endYear, endMonth, err := s.calculationEnd()
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	// The job id is computed once per run and threaded through explicitly.
	jobID := s.buildJobID()
	createdOn := time.Now().UTC()

	for t, included := range inclusions {
		if included {
			s.logger.Info(ctx, "producing metrics", logger.String("metricType", t.String()))
		}
	}

	calcOpts := []calculator.Option{
		calculator.WithInclusions(inclusions),
		calculator.WithCalculationEndMonth(endYear, endMonth),
	}
	if s.personLevel {
		calcOpts = append(calcOpts, calculator.WithPersonLevel(s.externalIDType))
	}
	if s.methodologyAll {
		calcOpts = append(calcOpts, calculator.WithMethodologyAll())
	}

	mapper := &pipelineMapper{
		identifier: identifier.New(),
		calculator: calculator.New(calcOpts...),
	}

	counties, err := source.CountyOfResidence(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("loading county of residence: %w", err)
	}
	records, err := source.Records(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("opening person records: %w", err)
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, mapper)

	summary := Summary{JobID: jobID, RecordsBuilt: make(map[string]int)}

	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		defer func() { _ = q.Close() }()
		s.produce(ctx, records, counties, q, &summary)
	}()

	pool.Run(ctx)
	<-producerDone

	merged, err := pool.MergedShard()
	if err != nil {
		return Summary{}, err
	}
	summary.Buckets = merged.Len()

	s.buildRecords(ctx, merged, jobID, createdOn, &summary)

	if len(s.personFilter) > 0 {
		// Debug runs never write output.
		s.logger.Warn(ctx, "non-empty person filter set - skipping metric write",
			logger.String("jobID", jobID),
			logger.Int("buckets", summary.Buckets),
			logger.Int("personsEnqueued", summary.PersonsEnqueued),
		)
		s.store.Discard(ctx)
		return summary, nil
	}

	if err := s.store.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("committing metrics: %w", err)
	}
	summary.Committed = true

	s.logger.Info(ctx, "run complete",
		logger.String("jobID", jobID),
		logger.Int("buckets", summary.Buckets),
		logger.Int("personsEnqueued", summary.PersonsEnqueued),
		logger.Int("recordsDropped", summary.RecordsDropped),
	)
	return summary, nil
}

// produce feeds filtered person graphs into the queue.
func (s *Service) produce(ctx context.Context, records <-chan model.PersonRecords, counties map[int64]string, q queue.Queue, summary *Summary) {
	deduper := dedupe.NewInMemoryDeduper()

	for rec := range records {
		id := rec.Person.PersonID

		if s.stateCode != "" && rec.Person.StateCode != s.stateCode {
			summary.FilteredOut++
			continue
		}
		if len(s.personFilter) > 0 && !s.personFilter[id] {
			summary.FilteredOut++
			continue
		}
		if deduper.SeenAndRecord(ctx, id) {
			s.logger.Warn(ctx, "duplicate person graph in input; skipping",
				logger.Int64("personID", id),
			)
			metrics.RecordDataQualityWarning()
			summary.DuplicatesSkipped++
			continue
		}

		if rec.CountyOfResidence == "" {
			rec.CountyOfResidence = counties[id]
		}

		if !q.Enqueue(ctx, rec) {
			return
		}
		summary.PersonsEnqueued++
	}
}

// buildRecords converts every aggregated bucket into an output record and
// stages it. A record-level failure drops only that record.
func (s *Service) buildRecords(ctx context.Context, merged *aggregate.Shard, jobID string, createdOn time.Time, summary *Summary) {
	for _, entry := range merged.Entries() {
		value := entry.Acc.Extract()
		rec, err := metric.Build(entry.Key, &value, jobID, createdOn)
		if err != nil {
			if errors.Is(err, metric.ErrUnknownMetric) {
				s.logger.Error(ctx, "unexpected metric type", logger.Error(err))
			} else {
				s.logger.Error(ctx, "metric build contract violation", logger.Error(err))
				metrics.RecordContractViolation()
			}
			metrics.RecordDroppedRecord()
			summary.RecordsDropped++
			continue
		}
		if err := s.store.Stage(ctx, rec); err != nil {
			s.logger.Error(ctx, "staging metric failed", logger.Error(err))
			metrics.RecordDroppedRecord()
			summary.RecordsDropped++
			continue
		}
		metrics.RecordMetricBuilt(rec.Type.String())
		summary.RecordsBuilt[rec.Type.String()]++
	}
}

// calculationEnd resolves the month reporting windows end in.
func (s *Service) calculationEnd() (int, int, error) {
	if s.endMonth == "" {
		now := time.Now().UTC()
		return now.Year(), int(now.Month()), nil
	}
	bound, err := timerange.MonthUpperBound(s.endMonth)
	if err != nil {
		return 0, 0, err
	}
	return bound.Year(), int(bound.Month()), nil
}

// buildJobID forms the run-scoped id stamped onto every output record.
func (s *Service) buildJobID() string {
	timestamp := time.Now().UTC().Format("2006-01-02_15_04_05")
	return fmt.Sprintf("%s_%s_%s_%s_%s",
		timestamp, s.project, s.region, s.jobName, uuid.NewString()[:8])
}

// pipelineMapper chains the identifier and calculator for the workers.
type pipelineMapper struct {
	identifier *identifier.Identifier
	calculator *calculator.Calculator
}

// MapPerson implements worker.Mapper.
func (m *pipelineMapper) MapPerson(ctx context.Context, rec model.PersonRecords) ([]aggregate.Observation, error) {
	eventsByYear := m.identifier.FindReleaseEvents(ctx, rec)
	if len(eventsByYear) == 0 {
		// An explicit "no data" state: the person contributes nothing.
		return nil, nil
	}

	total := 0
	for _, events := range eventsByYear {
		total += len(events)
	}
	metrics.RecordEventsClassified(total)

	return m.calculator.MapCombinations(ctx, rec.Person, eventsByYear)
}
