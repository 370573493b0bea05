package metric

import (
	"fmt"
	"math"
	"time"
)

// Record is one immutable output metric. It carries every key dimension
// (minus the metric type, which routes the record to its destination), the
// aggregate fields for its type, and the run metadata stamp.
type Record struct {
	Type      Type
	JobID     string
	CreatedOn time.Time

	// Dimensions holds the key fields in their original order.
	Dimensions []Dimension

	// Count metric aggregates.
	Returns *int64

	// Rate metric aggregates.
	TotalReleases       *int64
	RecidivatedReleases *float64
	RecidivismRate      *float64
}

// Build converts one (key, aggregated value) pair plus run metadata into a
// Record. The job id is computed once per run and threaded through
// explicitly.
//
// An empty key or missing value means an upstream component broke its
// contract; the error aborts only this record. An unrecognized metric type
// yields ErrUnknownMetric so the caller can log and drop the record
// without aborting the run.
func Build(key Key, value *float64, jobID string, createdOn time.Time) (Record, error) {
	if key.IsEmpty() {
		return Record{}, fmt.Errorf("%w: cannot build a metric from it", ErrEmptyKey)
	}
	if value == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrMissingValue, key.Encode())
	}

	rec := Record{
		Type:       key.MetricType(),
		JobID:      jobID,
		CreatedOn:  createdOn,
		Dimensions: key.Dimensions(),
	}

	switch key.MetricType() {
	case ReincarcerationCount:
		v := *value
		if _, ok := key.Get(DimPersonID); ok {
			// Person-level count metrics count people, not raw returns.
			v = 1
		}
		returns := int64(math.Round(v))
		rec.Returns = &returns

	case ReincarcerationRate:
		// One observed release per input row. The aggregated value lands on
		// both the recidivated count and the rate, mirroring the upstream
		// combine step which pre-averages before this point.
		one := int64(1)
		recidivated := *value
		rate := *value
		rec.TotalReleases = &one
		rec.RecidivatedReleases = &recidivated
		rec.RecidivismRate = &rate

	case TypeUnknown:
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownMetric, key.Encode())
	default:
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownMetric, key.Encode())
	}

	return rec, nil
}

// Row reduces the record to a flat, warehouse-serializable form: dimension
// values stay strings, aggregates are numbers, and dates use their
// canonical YYYY-MM-DD form.
func (r Record) Row() map[string]any {
	row := make(map[string]any, len(r.Dimensions)+6)
	for _, d := range r.Dimensions {
		row[d.Name] = d.Value
	}
	row["job_id"] = r.JobID
	row["created_on"] = r.CreatedOn.Format("2006-01-02")
	if r.Returns != nil {
		row["returns"] = *r.Returns
	}
	if r.TotalReleases != nil {
		row["total_releases"] = *r.TotalReleases
	}
	if r.RecidivatedReleases != nil {
		row["recidivated_releases"] = *r.RecidivatedReleases
	}
	if r.RecidivismRate != nil {
		row["recidivism_rate"] = *r.RecidivismRate
	}
	return row
}
