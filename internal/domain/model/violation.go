package model

import "time"

// ViolationType classifies a supervision violation entry.
type ViolationType string

// Known violation types.
const (
	ViolationFelony      ViolationType = "FELONY"
	ViolationMisdemeanor ViolationType = "MISDEMEANOR"
	ViolationAbsconded   ViolationType = "ABSCONDED"
	ViolationMunicipal   ViolationType = "MUNICIPAL"
	ViolationEscaped     ViolationType = "ESCAPED"
	ViolationTechnical   ViolationType = "TECHNICAL"
)

// violationTypeSeverity ranks violation types from most to least severe.
var violationTypeSeverity = []ViolationType{
	ViolationFelony,
	ViolationMisdemeanor,
	ViolationAbsconded,
	ViolationMunicipal,
	ViolationEscaped,
	ViolationTechnical,
}

// ResponseDecision is the decision recorded on a violation response.
type ResponseDecision string

// Known response decisions.
const (
	DecisionRevocation         ResponseDecision = "REVOCATION"
	DecisionShockIncarceration ResponseDecision = "SHOCK_INCARCERATION"
	DecisionWarrantIssued      ResponseDecision = "WARRANT_ISSUED"
	DecisionPrivilegesRevoked  ResponseDecision = "PRIVILEGES_REVOKED"
	DecisionNewConditions      ResponseDecision = "NEW_CONDITIONS"
	DecisionExtension          ResponseDecision = "EXTENSION"
	DecisionSuspension         ResponseDecision = "SUSPENSION"
	DecisionServiceTermination ResponseDecision = "SERVICE_TERMINATION"
	DecisionDelayedAction      ResponseDecision = "DELAYED_ACTION"
	DecisionWarning            ResponseDecision = "WARNING"
	DecisionContinuance        ResponseDecision = "CONTINUANCE"
)

// responseDecisionSeverity ranks response decisions from most to least severe.
var responseDecisionSeverity = []ResponseDecision{
	DecisionRevocation,
	DecisionShockIncarceration,
	DecisionWarrantIssued,
	DecisionPrivilegesRevoked,
	DecisionNewConditions,
	DecisionExtension,
	DecisionSuspension,
	DecisionServiceTermination,
	DecisionDelayedAction,
	DecisionWarning,
	DecisionContinuance,
}

// ViolationTypeEntry is one typed entry attached to a violation.
type ViolationTypeEntry struct {
	ViolationType ViolationType `json:"violation_type"`
}

// Violation is a supervision violation with zero or more typed entries.
type Violation struct {
	ViolationID    int64                `json:"violation_id"`
	StateCode      string               `json:"state_code"`
	ViolationTypes []ViolationTypeEntry `json:"violation_types,omitempty"`
}

// ViolationResponse carries the decision made in response to a violation.
// Responses attach to the incarceration period they caused.
type ViolationResponse struct {
	ResponseID   int64            `json:"response_id"`
	ResponseDate *time.Time       `json:"response_date,omitempty"`
	Decision     ResponseDecision `json:"decision,omitempty"`
	Violation    *Violation       `json:"violation,omitempty"`
}

// MostSevereViolationType returns the most severe violation type present on
// the given violations, or "" when none is recognized.
func MostSevereViolationType(violations []Violation) ViolationType {
	present := make(map[ViolationType]bool)
	for _, v := range violations {
		for _, entry := range v.ViolationTypes {
			present[entry.ViolationType] = true
		}
	}
	for _, t := range violationTypeSeverity {
		if present[t] {
			return t
		}
	}
	return ""
}

// MostSevereResponseDecision returns the most severe decision among the
// given decisions, or "" when none is recognized.
func MostSevereResponseDecision(decisions []ResponseDecision) ResponseDecision {
	present := make(map[ResponseDecision]bool)
	for _, d := range decisions {
		present[d] = true
	}
	for _, d := range responseDecisionSeverity {
		if present[d] {
			return d
		}
	}
	return ""
}
