package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/joulebench/joulebench/internal/environment"
	"github.com/joulebench/joulebench/internal/models"
	"github.com/joulebench/joulebench/internal/sampler"
)

// TrialRunner executes built artifacts inside exclusive sampling
// windows and validates their output against the spec's oracle.
type TrialRunner struct {
	gate *sampler.Gate

	// DefaultTimeout bounds executions whose spec sets no timeout.
	DefaultTimeout time.Duration
	// TimeoutMultiplier scales every per-spec timeout.
	TimeoutMultiplier float64
}

// New creates a trial runner around the given sampling gate.
func New(gate *sampler.Gate, defaultTimeout time.Duration, timeoutMultiplier float64) *TrialRunner {
	if timeoutMultiplier <= 0 {
		timeoutMultiplier = 1.0
	}
	return &TrialRunner{
		gate:              gate,
		DefaultTimeout:    defaultTimeout,
		TimeoutMultiplier: timeoutMultiplier,
	}
}

// Run performs one trial of the artifact: acquire the sampling window,
// execute, validate, record. The window is released on every exit path
// before the outcome is recorded. A MeasurementUnavailable outcome is
// also returned as an error because it is fatal to the harness run.
func (r *TrialRunner) Run(ctx context.Context, env environment.Environment, artifact *models.BuildArtifact, attempt int) (*models.Trial, error) {
	spec := artifact.Spec
	trial := &models.Trial{
		Spec:         spec.Key(),
		Attempt:      attempt,
		ArtifactHash: artifact.Hash,
		StartedAt:    time.Now(),
	}

	defer func() {
		trial.EndedAt = time.Now()
		trial.Phases.RecordedAt = trial.EndedAt
	}()

	if artifact.Status != models.BuildBuilt {
		trial.Outcome = models.OutcomeBuildFailure
		trial.Diagnostic = artifact.BuildLog
		return trial, nil
	}

	window, ok := r.gate.Acquire()
	if !ok {
		trial.Outcome = models.OutcomeMeasurementUnavailable
		return trial, models.NewHarnessError(models.ErrMeasurementUnavailable, spec.Key(),
			"sampler refused to open a window")
	}
	trial.Phases.SamplerAcquiredAt = time.Now()

	// Release on every exit path. The explicit close below makes the
	// normal path deterministic; this covers panics and early returns.
	defer window.Close()

	stdout, exitCode, execErr := r.execute(ctx, env, artifact, trial)
	trial.Stdout = stdout
	trial.ExitCode = exitCode

	// The window must be closed before any outcome is recorded, timeout
	// included.
	window.Close()
	trial.Phases.SamplerReleasedAt = time.Now()
	if joules, ok := window.Energy(); ok {
		trial.EnergyJoules = &joules
	} else if window.Failed() {
		trial.Outcome = models.OutcomeMeasurementUnavailable
		return trial, models.NewHarnessError(models.ErrMeasurementUnavailable, spec.Key(),
			"sampler failed mid-window")
	}

	if execErr != nil {
		if errors.Is(execErr, context.DeadlineExceeded) {
			trial.Outcome = models.OutcomeTimeout
			return trial, nil
		}
		trial.Outcome = models.OutcomeNonZeroExit
		trial.Diagnostic = execErr.Error()
		return trial, nil
	}

	if exitCode != 0 {
		trial.Outcome = models.OutcomeNonZeroExit
		return trial, nil
	}

	if diag := validate(spec, stdout); diag != "" {
		trial.Outcome = models.OutcomeOutputMismatch
		trial.Diagnostic = diag
		trial.Phases.ValidatedAt = time.Now()
		return trial, nil
	}
	trial.Phases.ValidatedAt = time.Now()

	trial.Outcome = models.OutcomePass
	return trial, nil
}

// execute spawns one process invocation of the artifact with the
// spec's timeout enforced. The deadline context is derived without the
// caller's cancellation so an external cancel never kills a process
// inside an open window; cancellation is observed between trials.
func (r *TrialRunner) execute(ctx context.Context, env environment.Environment, artifact *models.BuildArtifact, trial *models.Trial) (string, int, error) {
	spec := artifact.Spec

	timeout := r.DefaultTimeout
	if spec.TimeoutSec > 0 {
		timeout = time.Duration(spec.TimeoutSec * float64(time.Second))
	}
	timeout = time.Duration(float64(timeout) * r.TimeoutMultiplier)

	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	path, argv := env.RunCommand(artifact, spec.Args)
	cmd := exec.CommandContext(execCtx, path, argv...)
	cmd.Dir = artifact.WorkDir
	// Don't wait on orphaned pipe holders after the process is killed.
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(), fmt.Sprintf("RAPL_ITERATIONS=%d", windowIterations(spec)))
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	trial.Phases.ExecStartedAt = time.Now()
	err := cmd.Run()
	trial.Phases.ExecEndedAt = time.Now()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	// A process that exits cleanly just as the deadline fires is a
	// success; only a failed Run with an expired deadline is a timeout.
	if err != nil && execCtx.Err() != nil {
		slog.Warn("execution timed out, process killed",
			"spec", spec.Key(), "timeout", timeout)
		return stdout.String(), exitCode, context.DeadlineExceeded
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return stdout.String(), exitCode, fmt.Errorf("spawning workload: %w", err)
	}

	return stdout.String(), exitCode, nil
}

// windowIterations is how many internal iterations the workload should
// run inside the sampling window. Iteration-aware workloads (warmup
// mode) loop themselves by reading RAPL_ITERATIONS; all others run the
// measured body exactly once per invocation.
func windowIterations(spec models.WorkloadSpec) int {
	if spec.Warmup {
		return spec.Iterations
	}
	return 1
}
