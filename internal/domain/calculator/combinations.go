package calculator

import "github.com/mbvera/pulse-data/internal/domain/metric"

// slot is one optional dimension with the values observed in the source
// data. A slot with several values (e.g. multiple race tags) contributes
// one combination per value when included.
type slot struct {
	name   string
	values []string
}

// forEachCombination walks the full powerset over the optional slots,
// extending base with each chosen subset. Slots are indexed, so the walk is
// lazy and restartable: nothing is materialized beyond the key handed to
// yield. Returning false from yield stops the walk.
//
// The empty subset is included, so base itself is always yielded. No two
// yielded keys are structurally identical.
func forEachCombination(base metric.Key, slots []slot, yield func(metric.Key) bool) bool {
	if len(slots) == 0 {
		return yield(base)
	}

	rest := slots[1:]

	// Combinations without this slot.
	if !forEachCombination(base, rest, yield) {
		return false
	}

	// Combinations with one of this slot's values.
	for _, v := range slots[0].values {
		if !forEachCombination(base.With(slots[0].name, v), rest, yield) {
			return false
		}
	}
	return true
}
