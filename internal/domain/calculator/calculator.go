package calculator

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/mbvera/pulse-data/internal/domain/aggregate"
	"github.com/mbvera/pulse-data/internal/domain/identifier"
	"github.com/mbvera/pulse-data/internal/domain/metric"
	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/internal/domain/timerange"
	"github.com/mbvera/pulse-data/pkg/logger"
)

// Calculator maps a person's release events to raw metric observations.
type Calculator struct {
	inclusions     map[metric.Type]bool
	endYear        int
	endMonth       int
	personLevel    bool
	externalIDType string
	methodologyAll bool
	logger         logger.Logger
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithInclusions selects which metric types to produce.
func WithInclusions(inclusions map[metric.Type]bool) Option {
	return func(c *Calculator) {
		c.inclusions = inclusions
	}
}

// WithCalculationEndMonth sets the month every trailing reporting window
// ends in.
func WithCalculationEndMonth(year, month int) Option {
	return func(c *Calculator) {
		if year > 0 && month >= 1 && month <= 12 {
			c.endYear = year
			c.endMonth = month
		}
	}
}

// WithPersonLevel enables person-level identifiers on every combination.
// idType names the external id type the pipeline reports.
func WithPersonLevel(idType string) Option {
	return func(c *Calculator) {
		c.personLevel = true
		c.externalIDType = idType
	}
}

// WithMethodologyAll adds the combined-methodology variant to every
// combination set.
func WithMethodologyAll() Option {
	return func(c *Calculator) {
		c.methodologyAll = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Calculator. Without options it produces every metric type
// with reporting windows ending in the current month.
func New(opts ...Option) *Calculator {
	now := time.Now().UTC()
	c := &Calculator{
		endYear:  now.Year(),
		endMonth: int(now.Month()),
		logger:   logger.Get().Named("calculator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.inclusions == nil {
		c.inclusions = make(map[metric.Type]bool)
		for _, t := range metric.AllTypes() {
			c.inclusions[t] = true
		}
	}
	return c
}

// MapCombinations expands every event into its full set of raw (key,
// value) observations: the powerset over present optional dimensions,
// crossed with the required base fields, the applicable time variants, and
// each methodology.
//
// Person-methodology observations are pre-deduplicated by key within the
// person, so distinct-people counts receive exactly one unit contribution
// per person per key.
func (c *Calculator) MapCombinations(ctx context.Context, person model.Person, eventsByYear map[int][]identifier.Event) ([]aggregate.Observation, error) {
	if len(eventsByYear) == 0 {
		return nil, nil
	}

	externalID := ""
	if c.personLevel {
		id, err := ExternalIDToInclude(person, c.externalIDType)
		if err != nil {
			return nil, err
		}
		externalID = id
	}

	years := make([]int, 0, len(eventsByYear))
	for year := range eventsByYear {
		years = append(years, year)
	}
	sort.Ints(years)

	col := newCollector()
	for _, year := range years {
		for _, event := range eventsByYear[year] {
			c.mapEvent(col, person, event, externalID)
		}
	}
	return col.observations(), nil
}

// mapEvent emits the observations for one release event across all
// included metric types.
func (c *Calculator) mapEvent(col *collector, person model.Person, event identifier.Event, externalID string) {
	release := event.Release()
	recidivism, isRecidivism := event.(identifier.RecidivismReleaseEvent)

	for _, t := range metric.AllTypes() {
		if !c.inclusions[t] {
			continue
		}

		var eventDate time.Time
		var value float64
		switch t {
		case metric.ReincarcerationRate:
			// One observed release per row; averaging the 0/1 outcomes
			// yields the rate.
			eventDate = release.ReleaseDate
			if isRecidivism {
				value = 1
			}
		case metric.ReincarcerationCount:
			// Counts track the returns themselves.
			if !isRecidivism {
				continue
			}
			eventDate = recidivism.ReincarcerationDate
			value = 1
		case metric.TypeUnknown:
			continue
		default:
			continue
		}

		slots := c.optionalSlots(person, event, eventDate)

		for _, methodology := range c.methodologies() {
			for _, tv := range c.timeVariants(eventDate) {
				base := c.requiredKey(t, release, person, methodology, tv, externalID)
				forEachCombination(base, slots, func(key metric.Key) bool {
					col.add(key, value, methodology)
					return true
				})
			}
		}
	}
}

// timeVariant is one required time slice for a combination: either the
// event's own calendar month, or a trailing window of PeriodMonths ending
// in the calculation end month.
type timeVariant struct {
	Year         int
	Month        int
	PeriodMonths int
}

func (c *Calculator) timeVariants(eventDate time.Time) []timeVariant {
	variants := []timeVariant{{Year: eventDate.Year(), Month: int(eventDate.Month())}}
	for _, p := range timerange.RelevantMetricPeriods(eventDate, c.endYear, c.endMonth) {
		variants = append(variants, timeVariant{Year: c.endYear, PeriodMonths: p})
	}
	return variants
}

func (c *Calculator) methodologies() []string {
	methodologies := []string{metric.MethodologyEvent, metric.MethodologyPerson}
	if c.methodologyAll {
		methodologies = append(methodologies, metric.MethodologyAll)
	}
	return methodologies
}

// requiredKey builds the base key every combination for this event shares.
func (c *Calculator) requiredKey(t metric.Type, release identifier.ReleaseEvent, person model.Person, methodology string, tv timeVariant, externalID string) metric.Key {
	stateCode := release.StateCode
	if stateCode == "" {
		stateCode = person.StateCode
	}

	key := metric.NewKey(t).
		With(metric.DimStateCode, stateCode).
		With(metric.DimMethodology, methodology).
		With(metric.DimYear, strconv.Itoa(tv.Year))
	if tv.PeriodMonths > 0 {
		key = key.With(metric.DimMetricPeriodMonths, strconv.Itoa(tv.PeriodMonths))
	} else {
		key = key.With(metric.DimMonth, strconv.Itoa(tv.Month))
	}

	if c.personLevel {
		key = key.With(metric.DimPersonID, strconv.FormatInt(person.PersonID, 10))
		if externalID != "" {
			key = key.With(metric.DimPersonExternalID, externalID)
		}
	}
	return key
}

// optionalSlots lists the optional dimensions present for this event, in
// canonical order. A dimension absent from the source data contributes no
// slot at all; it never appears as an empty placeholder.
func (c *Calculator) optionalSlots(person model.Person, event identifier.Event, eventDate time.Time) []slot {
	release := event.Release()
	var slots []slot

	if age := person.AgeAt(eventDate); age >= 0 {
		slots = append(slots, slot{name: metric.DimAgeBucket, values: []string{AgeBucket(age)}})
	}
	if person.Gender != "" {
		slots = append(slots, slot{name: metric.DimGender, values: []string{string(person.Gender)}})
	}
	if len(person.Races) > 0 {
		values := make([]string, 0, len(person.Races))
		for _, r := range person.Races {
			values = append(values, string(r))
		}
		slots = append(slots, slot{name: metric.DimRace, values: values})
	}
	if len(person.Ethnicities) > 0 {
		values := make([]string, 0, len(person.Ethnicities))
		for _, e := range person.Ethnicities {
			values = append(values, string(e))
		}
		slots = append(slots, slot{name: metric.DimEthnicity, values: values})
	}
	if release.CountyOfResidence != "" {
		slots = append(slots, slot{name: metric.DimDistrict, values: []string{release.CountyOfResidence}})
	}
	if release.ReleaseFacility != "" {
		slots = append(slots, slot{name: metric.DimReleaseFacility, values: []string{release.ReleaseFacility}})
	}

	if recidivism, ok := event.(identifier.RecidivismReleaseEvent); ok {
		if recidivism.ReturnType != "" {
			slots = append(slots, slot{name: metric.DimReturnType, values: []string{string(recidivism.ReturnType)}})
		}
		if recidivism.FromSupervisionType != "" {
			slots = append(slots, slot{name: metric.DimFromSupervisionType, values: []string{string(recidivism.FromSupervisionType)}})
		}
		if recidivism.SourceViolationType != "" {
			slots = append(slots, slot{name: metric.DimSourceViolationType, values: []string{string(recidivism.SourceViolationType)}})
		}
		if recidivism.ReincarcerationFacility != "" {
			slots = append(slots, slot{name: metric.DimReturnFacility, values: []string{recidivism.ReincarcerationFacility}})
		}
	}

	return slots
}

// collector accumulates observations for one person. Person-methodology
// keys are deduplicated: repeat sightings keep the maximum value, so a
// person who recidivated under any release in a window stays counted once.
type collector struct {
	obs        []aggregate.Observation
	personSeen map[string]int
}

func newCollector() *collector {
	return &collector{personSeen: make(map[string]int)}
}

func (col *collector) add(key metric.Key, value float64, methodology string) {
	if methodology == metric.MethodologyPerson {
		encoded := key.Encode()
		if i, ok := col.personSeen[encoded]; ok {
			if value > col.obs[i].Value {
				col.obs[i].Value = value
			}
			return
		}
		col.personSeen[encoded] = len(col.obs)
	}
	col.obs = append(col.obs, aggregate.Observation{Key: key, Value: value})
}

func (col *collector) observations() []aggregate.Observation {
	return col.obs
}
