package model

import (
	"sort"
	"time"
)

// PeriodStatus describes the custody status recorded on a period.
type PeriodStatus string

// Known period statuses. PresentWithoutInfo marks placeholder rows that
// carry no usable dates and are dropped before classification.
const (
	StatusInCustody          PeriodStatus = "IN_CUSTODY"
	StatusNotInCustody       PeriodStatus = "NOT_IN_CUSTODY"
	StatusPresentWithoutInfo PeriodStatus = "PRESENT_WITHOUT_INFO"
)

// IncarcerationType distinguishes the custodial system holding the person.
type IncarcerationType string

// Known incarceration types.
const (
	IncarcerationStatePrison IncarcerationType = "STATE_PRISON"
	IncarcerationCountyJail  IncarcerationType = "COUNTY_JAIL"
)

// AdmissionReason describes why a period of custody began.
type AdmissionReason string

// Known admission reasons.
const (
	AdmissionNewAdmission        AdmissionReason = "NEW_ADMISSION"
	AdmissionParoleRevocation    AdmissionReason = "PAROLE_REVOCATION"
	AdmissionProbationRevocation AdmissionReason = "PROBATION_REVOCATION"
	AdmissionReturnFromEscape    AdmissionReason = "RETURN_FROM_ESCAPE"
	AdmissionTemporaryCustody    AdmissionReason = "TEMPORARY_CUSTODY"
	AdmissionTransfer            AdmissionReason = "TRANSFER"
)

// ReleaseReason describes why a period of custody ended.
type ReleaseReason string

// Known release reasons.
const (
	ReleaseSentenceServed   ReleaseReason = "SENTENCE_SERVED"
	ReleaseConditional      ReleaseReason = "CONDITIONAL_RELEASE"
	ReleaseTransfer         ReleaseReason = "TRANSFER"
	ReleaseEscape           ReleaseReason = "ESCAPE"
	ReleaseDeath            ReleaseReason = "DEATH"
	ReleaseCourtOrder       ReleaseReason = "COURT_ORDER"
	ReleaseTemporaryCustody ReleaseReason = "RELEASED_FROM_TEMPORARY_CUSTODY"
)

// IncarcerationPeriod is one interval of custody. ReleaseDate is nil while
// the period is still open. SourceViolationResponse links back to the
// supervision violation response that caused a revocation admission, when
// one exists.
type IncarcerationPeriod struct {
	PeriodID                int64              `json:"period_id"`
	StateCode               string             `json:"state_code"`
	Status                  PeriodStatus       `json:"status"`
	IncarcerationType       IncarcerationType  `json:"incarceration_type,omitempty"`
	Facility                string             `json:"facility,omitempty"`
	CountyCode              string             `json:"county_code,omitempty"`
	AdmissionDate           *time.Time         `json:"admission_date,omitempty"`
	AdmissionReason         AdmissionReason    `json:"admission_reason,omitempty"`
	ReleaseDate             *time.Time         `json:"release_date,omitempty"`
	ReleaseReason           ReleaseReason      `json:"release_reason,omitempty"`
	SourceViolationResponse *ViolationResponse `json:"source_violation_response,omitempty"`
}

// IsPlaceholder reports whether the period is a dateless placeholder row.
func (p IncarcerationPeriod) IsPlaceholder() bool {
	return p.Status == StatusPresentWithoutInfo && p.AdmissionDate == nil && p.ReleaseDate == nil
}

// SortPeriods orders periods by admission date, preserving the original
// load order on ties. Periods without an admission date sort last.
func SortPeriods(periods []IncarcerationPeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		a, b := periods[i].AdmissionDate, periods[j].AdmissionDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
