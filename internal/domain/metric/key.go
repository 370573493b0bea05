package metric

import "strings"

// Dimension names shared across the pipeline.
const (
	DimStateCode           = "state_code"
	DimYear                = "year"
	DimMonth               = "month"
	DimMetricPeriodMonths  = "metric_period_months"
	DimMethodology         = "methodology"
	DimAgeBucket           = "age_bucket"
	DimGender              = "gender"
	DimRace                = "race"
	DimEthnicity           = "ethnicity"
	DimDistrict            = "district"
	DimReleaseFacility     = "release_facility"
	DimReturnFacility      = "return_facility"
	DimReturnType          = "return_type"
	DimFromSupervisionType = "from_supervision_type"
	DimSourceViolationType = "source_violation_type"
	DimPersonID            = "person_id"
	DimPersonExternalID    = "person_external_id"
)

// Methodology dimension values.
const (
	MethodologyPerson = "PERSON"
	MethodologyEvent  = "EVENT"
	MethodologyAll    = "ALL"
)

// Dimension is one name/value pair in a metric key.
type Dimension struct {
	Name  string
	Value string
}

// Key is an ordered mapping from dimension name to value that uniquely
// identifies one aggregation bucket. Every key carries a metric type
// discriminator. Keys are immutable: With returns an extended copy.
type Key struct {
	metricType Type
	dims       []Dimension
}

// NewKey creates a key for the given metric type.
func NewKey(t Type) Key {
	return Key{metricType: t}
}

// With returns a copy of the key extended with one dimension.
func (k Key) With(name, value string) Key {
	dims := make([]Dimension, len(k.dims), len(k.dims)+1)
	copy(dims, k.dims)
	return Key{metricType: k.metricType, dims: append(dims, Dimension{Name: name, Value: value})}
}

// MetricType returns the key's discriminator.
func (k Key) MetricType() Type { return k.metricType }

// Dimensions returns a copy of the key's dimensions, in insertion order.
func (k Key) Dimensions() []Dimension {
	dims := make([]Dimension, len(k.dims))
	copy(dims, k.dims)
	return dims
}

// Get returns the value of a named dimension.
func (k Key) Get(name string) (string, bool) {
	for _, d := range k.dims {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// IsEmpty reports whether the key identifies nothing. An empty key reaching
// the builder is a contract violation.
func (k Key) IsEmpty() bool {
	return k.metricType == TypeUnknown && len(k.dims) == 0
}

// Encode returns the canonical string form of the key, suitable for use as
// a grouping key. Two keys encode equally iff they are structurally equal.
func (k Key) Encode() string {
	var sb strings.Builder
	sb.WriteString("metric_type=")
	sb.WriteString(k.metricType.String())
	for _, d := range k.dims {
		sb.WriteByte('|')
		sb.WriteString(d.Name)
		sb.WriteByte('=')
		sb.WriteString(d.Value)
	}
	return sb.String()
}
