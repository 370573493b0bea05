// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains one calculation run's configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the metrics/health HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// InputPath points at the JSONL file of person entity graphs.
	InputPath string `koanf:"input_path"`

	// CountyPath points at the optional person-to-county lookup JSON file.
	CountyPath string `koanf:"county_path"`

	// Project, JobName, and Region identify the run for the job id stamp.
	Project string `koanf:"project"`
	JobName string `koanf:"job_name"`
	Region  string `koanf:"region"`

	// MetricTypes selects metric types by name; the ALL sentinel selects
	// every known type. An unknown name fails the run at startup.
	MetricTypes []string `koanf:"metric_types"`

	// StateCode restricts the run to one state when set.
	StateCode string `koanf:"state_code"`

	// PersonFilterIDs restricts the run to specific persons for debugging.
	// When set, output writing is suppressed entirely.
	PersonFilterIDs []int64 `koanf:"person_filter_ids"`

	// CalculationEndMonth is the YYYY-MM month every trailing reporting
	// window ends in. Empty means the current month.
	CalculationEndMonth string `koanf:"calculation_end_month"`

	// WorkerCount sets the number of calculation workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory person queue.
	QueueSize int `koanf:"queue_size"`

	// PersonLevel enables person-level identifiers on output metrics.
	PersonLevel bool `koanf:"person_level"`

	// ExternalIDType names the external id type reported on person-level
	// metrics, e.g. "US_ND_SID".
	ExternalIDType string `koanf:"external_id_type"`

	// MethodologyAll adds the combined-methodology variant to every
	// combination set.
	MethodologyAll bool `koanf:"methodology_all"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9090",
		Project:     "pulse-data",
		JobName:     "recidivism-calculations",
		Region:      "local",
		MetricTypes: []string{"ALL"},
		WorkerCount: runtime.NumCPU() * 2,
		QueueSize:   10_000,
	}
}
