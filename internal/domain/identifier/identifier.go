package identifier

import (
	"context"

	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/pkg/logger"
	"github.com/mbvera/pulse-data/pkg/metrics"
)

// Identifier turns one person's ordered periods into release events.
type Identifier struct {
	logger logger.Logger
}

// Option applies a configuration option to the Identifier.
type Option func(*Identifier)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Identifier) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Identifier.
func New(opts ...Option) *Identifier {
	i := &Identifier{
		logger: logger.Get().Named("identifier"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FindReleaseEvents classifies every release in the person's periods as
// either a recidivism or non-recidivism event, keyed by cohort year (the
// calendar year of the release). The observation horizon is open-ended:
// any later admission counts as a return.
//
// A person with zero usable events yields a nil map, never an empty entry.
// Periods with unusable dates are skipped with a data-quality warning;
// they degrade coverage for the person but are never fatal.
func (i *Identifier) FindReleaseEvents(ctx context.Context, rec model.PersonRecords) map[int][]Event {
	periods := i.usablePeriods(ctx, rec)
	if len(periods) == 0 {
		return nil
	}

	var eventsByYear map[int][]Event

	for idx, period := range periods {
		if period.ReleaseDate == nil {
			// Still in custody; not a release.
			continue
		}
		release := *period.ReleaseDate
		if release.Before(*period.AdmissionDate) {
			i.logger.Warn(ctx, "release date precedes admission date; skipping period",
				logger.Int64("personID", rec.Person.PersonID),
				logger.Int64("periodID", period.PeriodID),
			)
			metrics.RecordDataQualityWarning()
			continue
		}

		base := ReleaseEvent{
			StateCode:             period.StateCode,
			CohortYear:            release.Year(),
			OriginalAdmissionDate: *period.AdmissionDate,
			ReleaseDate:           release,
			ReleaseFacility:       period.Facility,
			CountyOfResidence:     rec.CountyOfResidence,
		}

		event := i.classify(base, periods[idx+1:])
		if eventsByYear == nil {
			eventsByYear = make(map[int][]Event)
		}
		eventsByYear[base.CohortYear] = append(eventsByYear[base.CohortYear], event)
	}

	return eventsByYear
}

// usablePeriods drops placeholder rows and periods missing an admission
// date, then orders the remainder by admission date (stable on ties).
func (i *Identifier) usablePeriods(ctx context.Context, rec model.PersonRecords) []model.IncarcerationPeriod {
	usable := make([]model.IncarcerationPeriod, 0, len(rec.Periods))
	for _, p := range rec.Periods {
		if p.IsPlaceholder() {
			continue
		}
		if p.AdmissionDate == nil {
			i.logger.Warn(ctx, "period has no admission date; skipping",
				logger.Int64("personID", rec.Person.PersonID),
				logger.Int64("periodID", p.PeriodID),
			)
			metrics.RecordDataQualityWarning()
			continue
		}
		usable = append(usable, p)
	}
	model.SortPeriods(usable)
	return usable
}

// classify scans forward for the next admission following the release. The
// first later period with an admission date decides the outcome.
func (i *Identifier) classify(base ReleaseEvent, later []model.IncarcerationPeriod) Event {
	for _, next := range later {
		if next.AdmissionDate == nil || next.AdmissionDate.Before(base.ReleaseDate) {
			continue
		}

		event := RecidivismReleaseEvent{
			ReleaseEvent:            base,
			ReincarcerationDate:     *next.AdmissionDate,
			ReincarcerationFacility: next.Facility,
			ReturnType:              ReturnNewAdmission,
		}

		switch next.AdmissionReason {
		case model.AdmissionParoleRevocation:
			event.ReturnType = ReturnRevocation
			event.FromSupervisionType = SupervisionParole
		case model.AdmissionProbationRevocation:
			event.ReturnType = ReturnRevocation
			event.FromSupervisionType = SupervisionProbation
		}

		if resp := next.SourceViolationResponse; resp != nil && resp.Violation != nil {
			event.SourceViolationType = model.MostSevereViolationType([]model.Violation{*resp.Violation})
		}

		return event
	}

	return NonRecidivismReleaseEvent{ReleaseEvent: base}
}
