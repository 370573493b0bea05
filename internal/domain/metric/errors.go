package metric

import "errors"

// Sentinel kinds for builder errors. Empty keys and missing values indicate
// an upstream invariant breach; unknown types indicate a record that must
// be dropped without aborting the run.
var (
	ErrEmptyKey      = errors.New("empty metric key")
	ErrMissingValue  = errors.New("no value associated with metric key")
	ErrUnknownMetric = errors.New("unknown metric type")
)
