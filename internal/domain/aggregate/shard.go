package aggregate

import (
	"fmt"
	"sort"

	"github.com/mbvera/pulse-data/internal/domain/metric"
)

// Observation is one raw (key, value) pair produced during combination
// generation, owned by the pipeline run that created it.
type Observation struct {
	Key   metric.Key
	Value float64
}

// Entry pairs a metric key with its accumulator.
type Entry struct {
	Key metric.Key
	Acc Accumulator
}

// Shard is a worker-local partial aggregation over metric keys. Shards are
// never shared between goroutines; workers fold into their own shard and
// the pipeline merges finished shards afterward.
type Shard struct {
	entries map[string]*Entry
}

// NewShard creates an empty shard.
func NewShard() *Shard {
	return &Shard{entries: make(map[string]*Entry)}
}

// Add folds one observation into the shard, creating the accumulator for
// its metric type on first sight of the key.
func (s *Shard) Add(obs Observation) error {
	encoded := obs.Key.Encode()
	entry, ok := s.entries[encoded]
	if !ok {
		acc, err := accumulatorFor(obs.Key.MetricType())
		if err != nil {
			return err
		}
		entry = &Entry{Key: obs.Key, Acc: acc}
		s.entries[encoded] = entry
	}
	entry.Acc.AddInput(obs.Value)
	return nil
}

// Merge folds another shard into this one. Merge order never affects the
// extracted values.
func (s *Shard) Merge(other *Shard) error {
	if other == nil {
		return nil
	}
	for encoded, entry := range other.entries {
		existing, ok := s.entries[encoded]
		if !ok {
			s.entries[encoded] = entry
			continue
		}
		if err := existing.Acc.Merge(entry.Acc); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of distinct keys in the shard.
func (s *Shard) Len() int { return len(s.entries) }

// Entries returns the shard's entries ordered by encoded key, so a run's
// output is deterministic for identical inputs.
func (s *Shard) Entries() []*Entry {
	encoded := make([]string, 0, len(s.entries))
	for k := range s.entries {
		encoded = append(encoded, k)
	}
	sort.Strings(encoded)
	out := make([]*Entry, 0, len(encoded))
	for _, k := range encoded {
		out = append(out, s.entries[k])
	}
	return out
}

// accumulatorFor picks the combine function for a metric type.
func accumulatorFor(t metric.Type) (Accumulator, error) {
	switch t {
	case metric.ReincarcerationCount:
		return NewSum(), nil
	case metric.ReincarcerationRate:
		return NewAverage(), nil
	case metric.TypeUnknown:
		return nil, fmt.Errorf("%w: %s", ErrNoAccumulator, t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoAccumulator, t)
	}
}
