// Package calculator expands classified release events into every
// dimensional metric-key combination needed for reporting.
package calculator

import (
	"fmt"

	"github.com/mbvera/pulse-data/internal/domain/model"
)

// AgeBucket maps an age in whole years to its reporting bucket. Both edge
// values are boundary-inclusive on the bucket they name.
func AgeBucket(age int) string {
	switch {
	case age < 25:
		return "<25"
	case age <= 29:
		return "25-29"
	case age <= 34:
		return "30-34"
	case age <= 39:
		return "35-39"
	default:
		return "40<"
	}
}

// ExternalIDToInclude resolves the single external id to report for a
// person, given the id type the pipeline requires.
//
// Ids issued by more than one state, or more than one id of the required
// type, make resolution ambiguous; both are contract violations and fail
// fast rather than arbitrarily picking a value. A person with no id of the
// required type simply reports none.
func ExternalIDToInclude(person model.Person, idType string) (string, error) {
	states := make(map[string]bool)
	for _, id := range person.ExternalIDs {
		states[id.StateCode] = true
	}
	if len(states) > 1 {
		return "", fmt.Errorf("%w: person %d has external ids from %d states",
			ErrAmbiguousExternalID, person.PersonID, len(states))
	}

	var matches []string
	for _, id := range person.ExternalIDs {
		if id.IDType == idType {
			matches = append(matches, id.ExternalID)
		}
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: person %d has %d external ids of type %s",
			ErrAmbiguousExternalID, person.PersonID, len(matches), idType)
	}
}
