package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrKindMismatch  = errors.New("cannot merge accumulators of different kinds")
	ErrNoAccumulator = errors.New("no accumulator for metric type")
)
