// Package aggregate implements the combine functions that reduce raw
// per-combination observations into summary values. Every accumulator is
// associative and commutative so partial results from independent shards
// merge in any order.
package aggregate

import (
	"fmt"
	"math"
)

// Accumulator folds repeated observations for one metric key. Implementations
// must not depend on input order.
type Accumulator interface {
	// AddInput folds one raw observation into the accumulator.
	AddInput(v float64)

	// Merge folds another accumulator of the same kind into this one.
	Merge(other Accumulator) error

	// Extract returns the final aggregated value.
	Extract() float64
}

// Sum is a running total. Used for count metrics and for counting distinct
// people: callers pre-deduplicate by (key, person) and feed a constant 1
// per unique person.
type Sum struct {
	total float64
}

// NewSum creates an empty Sum accumulator.
func NewSum() *Sum { return &Sum{} }

// AddInput implements Accumulator.
func (s *Sum) AddInput(v float64) { s.total += v }

// Merge implements Accumulator.
func (s *Sum) Merge(other Accumulator) error {
	o, ok := other.(*Sum)
	if !ok {
		return fmt.Errorf("%w: sum and %T", ErrKindMismatch, other)
	}
	s.total += o.total
	return nil
}

// Extract implements Accumulator.
func (s *Sum) Extract() float64 { return s.total }

// Average accumulates a (sum, count) pair. Used for rate metrics.
type Average struct {
	sum   float64
	count int64
}

// NewAverage creates an empty Average accumulator.
func NewAverage() *Average { return &Average{} }

// AddInput implements Accumulator.
func (a *Average) AddInput(v float64) {
	a.sum += v
	a.count++
}

// Merge implements Accumulator.
func (a *Average) Merge(other Accumulator) error {
	o, ok := other.(*Average)
	if !ok {
		return fmt.Errorf("%w: average and %T", ErrKindMismatch, other)
	}
	a.sum += o.sum
	a.count += o.count
	return nil
}

// Extract implements Accumulator. An empty accumulator yields NaN, the
// defined not-a-number sentinel, rather than an error.
func (a *Average) Extract() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.count)
}
