// Package metric defines the closed set of output metric kinds, the
// dimensional keys that identify aggregation buckets, and the builder that
// turns aggregated values into immutable output records.
package metric

import (
	"fmt"
	"strings"
)

// Type enumerates the known metric kinds. The set is closed: every switch
// over it handles all constants plus an explicit unknown branch.
type Type int

// Known metric types.
const (
	TypeUnknown Type = iota
	ReincarcerationCount
	ReincarcerationRate
)

// AllSentinel selects every known metric type in a run configuration.
const AllSentinel = "ALL"

// String returns the canonical wire name of the type.
func (t Type) String() string {
	switch t {
	case ReincarcerationCount:
		return "REINCARCERATION_COUNT"
	case ReincarcerationRate:
		return "REINCARCERATION_RATE"
	case TypeUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// AllTypes returns every known metric type.
func AllTypes() []Type {
	return []Type{ReincarcerationCount, ReincarcerationRate}
}

// ParseType resolves a canonical name to a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "REINCARCERATION_COUNT":
		return ReincarcerationCount, nil
	case "REINCARCERATION_RATE":
		return ReincarcerationRate, nil
	default:
		return TypeUnknown, fmt.Errorf("unknown metric type: %q", name)
	}
}

// ParseSelection resolves a metric-type selection into an inclusion map.
// The ALL sentinel (or an empty selection) selects every known type. An
// unrecognized name is a configuration error; the caller must fail the run
// before processing any person.
func ParseSelection(names []string) (map[Type]bool, error) {
	inclusions := make(map[Type]bool, len(AllTypes()))
	for _, t := range AllTypes() {
		inclusions[t] = len(names) == 0
	}
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), AllSentinel) {
			for _, t := range AllTypes() {
				inclusions[t] = true
			}
			continue
		}
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		inclusions[t] = true
	}
	return inclusions, nil
}
