// Package fixtures generates synthetic person entity graphs for local
// pipeline runs and load testing. The distributions are rough but cover
// every classification path: recidivists, non-recidivists, revocation
// returns, and placeholder noise.
package fixtures

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/mbvera/pulse-data/internal/domain/model"
	"github.com/mbvera/pulse-data/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	outcomeDivisor     = 10
)

// Outcome cases for a generated person.
const (
	caseNonRecidivist  = 0 // released once, never returned
	caseRecidivist     = 1 // released and re-admitted
	caseRevocation     = 2 // re-admitted on a supervision revocation
	caseStillInCustody = 3 // admitted, never released
	casePlaceholder    = 4 // placeholder noise period alongside a release
)

// Generation ranges.
const (
	minBirthYear      = 1955
	birthYearRange    = 45
	minAdmissionYear  = 2000
	admissionYearSpan = 15
	minStayMonths     = 6
	stayMonthsRange   = 60
	minGapMonths      = 1
	gapMonthsRange    = 48
)

var stateCodes = []string{"US_ND", "US_MO", "US_XX"}

var genders = []model.Gender{
	model.GenderMale,
	model.GenderFemale,
	model.GenderOther,
}

var races = []model.Race{
	model.RaceWhite,
	model.RaceBlack,
	model.RaceAsian,
	model.RaceAmericanIndianAlaskanNative,
}

var facilities = []string{"STATE PRISON", "EAST UNIT", "WEST UNIT", "COUNTY JAIL"}

var counties = []string{"CASS", "BURLEIGH", "WARD", "MORTON"}

// Config controls fixture generation.
type Config struct {
	NumPersons int
	StateCode  string
}

// Generator builds synthetic person graphs.
type Generator struct {
	cfg    Config
	logger logger.Logger
}

// New creates a Generator.
func New(cfg Config) *Generator {
	if cfg.NumPersons <= 0 {
		cfg.NumPersons = 100
	}
	return &Generator{
		cfg:    cfg,
		logger: logger.Get().Named("fixtures"),
	}
}

// Generate produces the configured number of person graphs.
func (g *Generator) Generate(ctx context.Context) ([]model.PersonRecords, error) {
	g.logger.Info(ctx, "generating person graphs", logger.Int("numPersons", g.cfg.NumPersons))

	out := make([]model.PersonRecords, 0, g.cfg.NumPersons)
	for i := 0; i < g.cfg.NumPersons; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		default:
		}
		out = append(out, g.generatePerson(int64(i + 1)))
	}

	g.logger.Info(ctx, "generated person graphs successfully", logger.Int("count", len(out)))
	return out, nil
}

// generatePerson builds one person with periods matching a random outcome.
func (g *Generator) generatePerson(personID int64) model.PersonRecords {
	stateCode := g.cfg.StateCode
	if stateCode == "" {
		stateCode = pick(stateCodes)
	}

	birthdate := date(minBirthYear+randomInt(birthYearRange), time.Month(1+randomInt(12)), 1+randomInt(28))
	person := model.Person{
		PersonID:  personID,
		StateCode: stateCode,
		Birthdate: &birthdate,
		Gender:    pick(genders),
		Races:     []model.Race{pick(races)},
		ExternalIDs: []model.PersonExternalID{{
			ExternalID: fmt.Sprintf("SID%06d", personID),
			IDType:     stateCode + "_SID",
			StateCode:  stateCode,
		}},
	}

	admission := date(minAdmissionYear+randomInt(admissionYearSpan), time.Month(1+randomInt(12)), 1+randomInt(28))
	release := admission.AddDate(0, minStayMonths+randomInt(stayMonthsRange), 0)

	periods := []model.IncarcerationPeriod{basePeriod(1, stateCode, admission, &release)}

	outcome, _ := rand.Int(rand.Reader, big.NewInt(outcomeDivisor))
	switch outcome.Int64() % 5 {
	case caseNonRecidivist:
		// Single completed stay.
	case caseRecidivist:
		periods = append(periods, returnPeriod(2, stateCode, release, model.AdmissionNewAdmission))
	case caseRevocation:
		reason := model.AdmissionParoleRevocation
		if randomInt(2) == 0 {
			reason = model.AdmissionProbationRevocation
		}
		periods = append(periods, returnPeriod(2, stateCode, release, reason))
	case caseStillInCustody:
		periods = []model.IncarcerationPeriod{{
			PeriodID:          1,
			StateCode:         stateCode,
			Status:            model.StatusInCustody,
			IncarcerationType: model.IncarcerationStatePrison,
			Facility:          pick(facilities),
			AdmissionDate:     &admission,
			AdmissionReason:   model.AdmissionNewAdmission,
		}}
	case casePlaceholder:
		periods = append(periods, model.IncarcerationPeriod{
			PeriodID:  2,
			StateCode: stateCode,
			Status:    model.StatusPresentWithoutInfo,
		})
	}

	return model.PersonRecords{
		Person:            person,
		Periods:           periods,
		CountyOfResidence: pick(counties),
	}
}

func basePeriod(id int64, stateCode string, admission time.Time, release *time.Time) model.IncarcerationPeriod {
	p := model.IncarcerationPeriod{
		PeriodID:          id,
		StateCode:         stateCode,
		Status:            model.StatusNotInCustody,
		IncarcerationType: model.IncarcerationStatePrison,
		Facility:          pick(facilities),
		AdmissionDate:     &admission,
		AdmissionReason:   model.AdmissionNewAdmission,
		ReleaseDate:       release,
		ReleaseReason:     model.ReleaseSentenceServed,
	}
	return p
}

func returnPeriod(id int64, stateCode string, release time.Time, reason model.AdmissionReason) model.IncarcerationPeriod {
	readmission := release.AddDate(0, minGapMonths+randomInt(gapMonthsRange), 0)
	p := model.IncarcerationPeriod{
		PeriodID:          id,
		StateCode:         stateCode,
		Status:            model.StatusInCustody,
		IncarcerationType: model.IncarcerationStatePrison,
		Facility:          pick(facilities),
		AdmissionDate:     &readmission,
		AdmissionReason:   reason,
	}
	if reason == model.AdmissionParoleRevocation || reason == model.AdmissionProbationRevocation {
		p.SourceViolationResponse = &model.ViolationResponse{
			ResponseID:   id,
			ResponseDate: &readmission,
			Decision:     model.DecisionRevocation,
			Violation: &model.Violation{
				ViolationID: id,
				StateCode:   stateCode,
				ViolationTypes: []model.ViolationTypeEntry{
					{ViolationType: model.ViolationTechnical},
				},
			},
		}
	}
	return p
}

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick[T any](values []T) T {
	return values[randomInt(len(values))]
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
