package models

import "time"

// MeasurementSummary is the per-spec statistical summary derived from a
// TrialSet. It can be recomputed at any time; trials are never mutated.
type MeasurementSummary struct {
	Spec        SpecKey `json:"spec"`
	TotalTrials int     `json:"total_trials"`

	// Energy statistics over the retained samples, after warm-up
	// discard and outlier rejection.
	SampleCount  int     `json:"sample_count"`
	MeanJoules   float64 `json:"mean_joules"`
	StddevJoules float64 `json:"stddev_joules"`
	MinJoules    float64 `json:"min_joules"`
	MaxJoules    float64 `json:"max_joules"`
	// Half-width of the 95% confidence interval around the mean.
	ConfidenceJoules float64 `json:"confidence_interval_joules"`

	MeanWallSeconds float64 `json:"mean_wall_seconds"`

	// PassRate counts every recorded trial, including warm-up trials
	// and rejected outliers.
	PassRate float64 `json:"pass_rate"`
}

// RunReport is the aggregate outcome of one harness run, consumable by
// an external reporter.
type RunReport struct {
	Name          string               `json:"name"`
	Cancelled     bool                 `json:"cancelled"`
	TotalSpecs    int                  `json:"total_specs"`
	FailedBuilds  int                  `json:"failed_builds"`
	TotalTrials   int                  `json:"total_trials"`
	PassedTrials  int                  `json:"passed_trials"`
	FailedTrials  int                  `json:"failed_trials"`
	SkippedTrials int                  `json:"skipped_trials"`
	StartedAt     time.Time            `json:"started_at"`
	EndedAt       time.Time            `json:"ended_at"`
	Summaries     []MeasurementSummary `json:"summaries"`
}
