// Package metrics provides Prometheus instrumentation for the calculation
// pipeline service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "pulse"
	subsystem = "pipeline"
)

// Pipeline throughput metrics.
var (
	personsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "persons_processed_total",
		Help:      "Number of persons whose records were fully classified and mapped.",
	})

	personsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "persons_skipped_total",
		Help:      "Number of persons excluded from the run (no usable events, duplicates, filters).",
	})

	eventsClassified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "release_events_total",
		Help:      "Number of release events produced by the identifier.",
	})

	combinationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "metric_combinations_total",
		Help:      "Number of raw metric key combinations generated.",
	})

	metricsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "metrics_built_total",
		Help:      "Number of output metric records built, by metric type.",
	}, []string{"metric_type"})

	rowsCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rows_committed_total",
		Help:      "Number of metric rows committed to the output store, by metric type.",
	}, []string{"metric_type"})
)

// Data quality and error metrics.
var (
	dataQualityWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "data_quality_warnings_total",
		Help:      "Number of periods or persons skipped for unusable data.",
	})

	contractViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "contract_violations_total",
		Help:      "Number of per-record invariant breaches detected.",
	})

	droppedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dropped_records_total",
		Help:      "Number of metric records dropped before the output store.",
	})
)

// Queue and worker metrics.
var (
	queueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "queue_size",
		Help:      "Current number of person graphs waiting in the queue.",
	})

	queueCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "queue_capacity",
		Help:      "Configured queue capacity.",
	})

	queueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "queue_utilization",
		Help:      "Queue fill ratio between 0 and 1.",
	})

	workerActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "worker_active_count",
		Help:      "Number of running calculation workers.",
	})

	workerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "worker_person_latency_ms",
		Help:      "Latency of classifying and mapping one person, in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
	})

	aggregationBuckets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "aggregation_bucket_count",
		Help:      "Number of distinct metric keys in the merged aggregation.",
	})
)

// RecordPersonProcessed increments the processed-person counter.
func RecordPersonProcessed() { personsProcessed.Inc() }

// RecordPersonSkipped increments the skipped-person counter.
func RecordPersonSkipped() { personsSkipped.Inc() }

// RecordEventsClassified adds n classified release events.
func RecordEventsClassified(n int) { eventsClassified.Add(float64(n)) }

// RecordCombinationsGenerated adds n generated metric combinations.
func RecordCombinationsGenerated(n int) { combinationsGenerated.Add(float64(n)) }

// RecordMetricBuilt increments the built-metric counter for a metric type.
func RecordMetricBuilt(metricType string) { metricsBuilt.WithLabelValues(metricType).Inc() }

// RecordRowsCommitted adds n committed rows for a metric type.
func RecordRowsCommitted(metricType string, n int) {
	rowsCommitted.WithLabelValues(metricType).Add(float64(n))
}

// RecordDataQualityWarning increments the data-quality warning counter.
func RecordDataQualityWarning() { dataQualityWarnings.Inc() }

// RecordContractViolation increments the contract-violation counter.
func RecordContractViolation() { contractViolations.Inc() }

// RecordDroppedRecord increments the dropped-record counter.
func RecordDroppedRecord() { droppedRecords.Inc() }

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(n int) { queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(n int) { queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(ratio float64) { queueUtilization.Set(ratio) }

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(n int) { workerActive.Set(float64(n)) }

// RecordWorkerProcessingLatency observes one person-processing latency sample.
func RecordWorkerProcessingLatency(ms float64) { workerLatency.Observe(ms) }

// UpdateAggregationBuckets sets the distinct-key gauge.
func UpdateAggregationBuckets(n int) { aggregationBuckets.Set(float64(n)) }
