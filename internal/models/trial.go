package models

import (
	"strconv"
	"time"
)

// Outcome classifies a completed trial.
type Outcome string

const (
	OutcomePass                   Outcome = "pass"
	OutcomeOutputMismatch         Outcome = "output_mismatch"
	OutcomeNonZeroExit            Outcome = "non_zero_exit"
	OutcomeTimeout                Outcome = "timeout"
	OutcomeBuildFailure           Outcome = "build_failure"
	OutcomeMeasurementUnavailable Outcome = "measurement_unavailable"
)

// Trial is one timed, validated execution attempt of a built artifact.
// Immutable once recorded.
type Trial struct {
	Spec         SpecKey    `json:"spec"`
	Attempt      int        `json:"attempt"`
	ArtifactHash string     `json:"artifact_hash,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      time.Time  `json:"ended_at"`
	EnergyJoules *float64   `json:"energy_joules,omitempty"`
	ExitCode     int        `json:"exit_code"`
	Stdout       string     `json:"stdout,omitempty"`
	Outcome      Outcome    `json:"outcome"`
	Diagnostic   string     `json:"diagnostic,omitempty"` // first differing line on mismatch
	Phases       PhaseTimes `json:"phases"`
}

// ID returns a stable identifier for the trial within a run.
func (t Trial) ID() string {
	return t.Spec.Name + "__" + t.Spec.Language + "__" + strconv.Itoa(t.Attempt)
}

// PhaseTimes records when the trial passed through each runner phase.
// Zero values mean the phase was never reached.
type PhaseTimes struct {
	SamplerAcquiredAt time.Time `json:"sampler_acquired_at,omitzero"`
	ExecStartedAt     time.Time `json:"exec_started_at,omitzero"`
	ExecEndedAt       time.Time `json:"exec_ended_at,omitzero"`
	ValidatedAt       time.Time `json:"validated_at,omitzero"`
	SamplerReleasedAt time.Time `json:"sampler_released_at,omitzero"`
	RecordedAt        time.Time `json:"recorded_at,omitzero"`
}

// TrialSet is the ordered trial history for one spec. Insertion order
// is significant; trials are never mutated after being appended.
type TrialSet struct {
	Spec   SpecKey
	Trials []Trial
}
