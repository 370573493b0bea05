// Package model contains the administrative entity graph passed into the
// calculation pipeline. Entities are loaded once per run by an external
// collaborator and are read-only to the core.
package model

import "time"

// Gender is a person's recorded gender.
type Gender string

// Known gender values.
const (
	GenderFemale Gender = "FEMALE"
	GenderMale   Gender = "MALE"
	GenderTrans  Gender = "TRANS"
	GenderOther  Gender = "OTHER"
)

// Race is a single recorded race tag. A person may carry zero or more.
type Race string

// Known race values.
const (
	RaceWhite                         Race = "WHITE"
	RaceBlack                         Race = "BLACK"
	RaceAsian                         Race = "ASIAN"
	RaceAmericanIndianAlaskanNative   Race = "AMERICAN_INDIAN_ALASKAN_NATIVE"
	RaceNativeHawaiianPacificIslander Race = "NATIVE_HAWAIIAN_PACIFIC_ISLANDER"
	RaceOther                         Race = "OTHER"
)

// Ethnicity is a single recorded ethnicity tag. A person may carry zero or more.
type Ethnicity string

// Known ethnicity values.
const (
	EthnicityHispanic    Ethnicity = "HISPANIC"
	EthnicityNotHispanic Ethnicity = "NOT_HISPANIC"
)

// PersonExternalID is an identifier issued to a person by one state system.
type PersonExternalID struct {
	ExternalID string `json:"external_id"`
	IDType     string `json:"id_type"`
	StateCode  string `json:"state_code"`
}

// Person is the root entity of one person's graph.
type Person struct {
	PersonID    int64              `json:"person_id"`
	StateCode   string             `json:"state_code"`
	Birthdate   *time.Time         `json:"birthdate,omitempty"`
	Gender      Gender             `json:"gender,omitempty"`
	Races       []Race             `json:"races,omitempty"`
	Ethnicities []Ethnicity        `json:"ethnicities,omitempty"`
	ExternalIDs []PersonExternalID `json:"external_ids,omitempty"`
}

// AgeAt returns the person's age in whole years on the given date, or -1
// when the birthdate is unknown.
func (p Person) AgeAt(date time.Time) int {
	if p.Birthdate == nil {
		return -1
	}
	b := *p.Birthdate
	age := date.Year() - b.Year()
	if date.Month() < b.Month() || (date.Month() == b.Month() && date.Day() < b.Day()) {
		age--
	}
	return age
}

// PersonRecords bundles one person's pre-linked entity graph with the
// reference data the pipeline needs for that person.
type PersonRecords struct {
	Person            Person                `json:"person"`
	Periods           []IncarcerationPeriod `json:"periods,omitempty"`
	CountyOfResidence string                `json:"county_of_residence,omitempty"`
}
