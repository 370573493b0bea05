// Package identifier classifies one person's incarceration periods into
// release events grouped by cohort year.
package identifier

import (
	"time"

	"github.com/mbvera/pulse-data/internal/domain/model"
)

// ReincarcerationReturnType describes how a person returned to custody.
type ReincarcerationReturnType string

// Known return types.
const (
	ReturnNewAdmission ReincarcerationReturnType = "NEW_ADMISSION"
	ReturnRevocation   ReincarcerationReturnType = "REVOCATION"
)

// SupervisionType is the supervision a revocation return came from.
type SupervisionType string

// Known supervision types.
const (
	SupervisionParole    SupervisionType = "PAROLE"
	SupervisionProbation SupervisionType = "PROBATION"
)

// ReleaseEvent carries the facts shared by every release outcome. Events
// are derived per run and never persisted.
type ReleaseEvent struct {
	StateCode             string
	CohortYear            int
	OriginalAdmissionDate time.Time
	ReleaseDate           time.Time
	ReleaseFacility       string
	CountyOfResidence     string
}

// Event is one classified release outcome.
type Event interface {
	// Release returns the shared release facts for the event.
	Release() ReleaseEvent
}

// RecidivismReleaseEvent is a release followed by a later admission.
type RecidivismReleaseEvent struct {
	ReleaseEvent

	ReincarcerationDate     time.Time
	ReincarcerationFacility string
	ReturnType              ReincarcerationReturnType
	FromSupervisionType     SupervisionType
	SourceViolationType     model.ViolationType
}

// Release implements Event.
func (e RecidivismReleaseEvent) Release() ReleaseEvent { return e.ReleaseEvent }

// NonRecidivismReleaseEvent is a release with no qualifying subsequent
// admission within the observation horizon.
type NonRecidivismReleaseEvent struct {
	ReleaseEvent
}

// Release implements Event.
func (e NonRecidivismReleaseEvent) Release() ReleaseEvent { return e.ReleaseEvent }
