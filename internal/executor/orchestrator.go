package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joulebench/joulebench/internal/aggregator"
	"github.com/joulebench/joulebench/internal/builder"
	"github.com/joulebench/joulebench/internal/environment"
	"github.com/joulebench/joulebench/internal/models"
	"github.com/joulebench/joulebench/internal/runner"
	"github.com/joulebench/joulebench/internal/sampler"
)

// HarnessOrchestrator coordinates one measurement run: build every
// spec through a bounded worker pool, then execute trials one at a
// time under the exclusive sampling gate, then aggregate and report.
type HarnessOrchestrator struct {
	cfg     models.HarnessConfig
	specs   []models.WorkloadSpec
	builder *builder.Builder
	runner  *runner.TrialRunner
	agg     *aggregator.Aggregator

	mu sync.Mutex // guards report trial counters during parallel builds
}

// NewHarnessOrchestrator wires a run together. buildRoot is the
// run-scoped workspace for build directories.
func NewHarnessOrchestrator(cfg models.HarnessConfig, specs []models.WorkloadSpec, gate *sampler.Gate, buildRoot string) *HarnessOrchestrator {
	defaultTimeout := time.Duration(cfg.DefaultTimeoutSec * float64(time.Second))

	return &HarnessOrchestrator{
		cfg:     cfg,
		specs:   specs,
		builder: builder.New(buildRoot, environment.Lookup),
		runner:  runner.New(gate, defaultTimeout, cfg.TimeoutMultiplier),
		agg:     aggregator.New(cfg.WarmupDiscard, cfg.OutlierIQRMultiplier),
	}
}

// Run executes all trials and writes the run report. Build and spec
// errors abort only the affected spec's trial set; a sampler failure
// aborts the whole run.
func (o *HarnessOrchestrator) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{
		Name:       o.runName(),
		TotalSpecs: len(o.specs),
		StartedAt:  time.Now(),
	}

	runDir := filepath.Join(o.cfg.ResultsDir, report.Name)
	if _, err := os.Stat(runDir); err == nil {
		return nil, fmt.Errorf("run directory already exists: %s (will not overwrite existing results)", runDir)
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if err := writeConfigEcho(runDir, o.cfg); err != nil {
		return nil, err
	}

	artifacts := o.buildAll(ctx, report)

	runErr := o.runTrials(ctx, artifacts, report)

	report.EndedAt = time.Now()
	report.Summaries = o.agg.Summaries()

	if err := writeReport(runDir, report); err != nil {
		slog.Error("writing run report", "error", err)
	}

	return report, runErr
}

// buildAll compiles every spec through a bounded worker pool. Build
// failures and missing dependencies become a single failed trial for
// that spec; the rest of the run is unaffected.
func (o *HarnessOrchestrator) buildAll(ctx context.Context, report *models.RunReport) map[models.SpecKey]*models.BuildArtifact {
	artifacts := make(map[models.SpecKey]*models.BuildArtifact, len(o.specs))

	type built struct {
		key      models.SpecKey
		artifact *models.BuildArtifact
	}
	results := make(chan built, len(o.specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.BuildWorkers)

	for _, spec := range o.specs {
		g.Go(func() error {
			artifact, err := o.builder.Build(gctx, spec)
			if err != nil {
				slog.Warn("spec excluded from run", "spec", spec.Key(),
					"reason", models.ErrorTypeOf(err), "error", err)
				now := time.Now()
				o.agg.Record(models.Trial{
					Spec:       spec.Key(),
					Attempt:    1,
					StartedAt:  now,
					EndedAt:    now,
					Outcome:    models.OutcomeBuildFailure,
					Diagnostic: err.Error(),
				})
				o.mu.Lock()
				report.TotalTrials++
				report.FailedTrials++
				o.mu.Unlock()
				return nil
			}
			results <- built{key: spec.Key(), artifact: artifact}
			return nil
		})
	}

	g.Wait()
	close(results)

	for b := range results {
		artifacts[b.key] = b.artifact
	}
	report.FailedBuilds = len(o.specs) - len(artifacts)
	return artifacts
}

// runTrials executes every attempt of every built spec. The sampling
// gate serializes the measured bodies; cancellation is observed only
// between trials.
func (o *HarnessOrchestrator) runTrials(ctx context.Context, artifacts map[models.SpecKey]*models.BuildArtifact, report *models.RunReport) error {
	for _, spec := range o.specs {
		artifact, ok := artifacts[spec.Key()]
		if !ok {
			continue
		}

		env, err := environment.Lookup(spec.Language)
		if err != nil {
			// Unreachable for a built artifact, but keep the spec keyed.
			slog.Error("environment lookup failed after build", "spec", spec.Key(), "error", err)
			continue
		}

		// Non-warmup specs run each of their iterations as a separate
		// invocation with its own window; warmup specs loop internally
		// inside one window per attempt.
		runs := o.cfg.Attempts
		if !spec.Warmup && spec.Iterations > 1 {
			runs *= spec.Iterations
		}

		for attempt := 1; attempt <= runs; attempt++ {
			if ctx.Err() != nil {
				report.Cancelled = true
				report.SkippedTrials += runs - attempt + 1
				break
			}

			trial, err := o.runner.Run(ctx, env, artifact, attempt)
			o.agg.Record(*trial)
			report.TotalTrials++
			if trial.Outcome == models.OutcomePass {
				report.PassedTrials++
			} else {
				report.FailedTrials++
			}

			if err != nil {
				var he *models.HarnessError
				if errors.As(err, &he) && he.Type == models.ErrMeasurementUnavailable {
					// The sampler is a required process-wide resource.
					return err
				}
				return fmt.Errorf("trial %s: %w", trial.ID(), err)
			}

			slog.Info("trial recorded",
				"spec", spec.Key(), "attempt", attempt,
				"outcome", trial.Outcome, "exit_code", trial.ExitCode)

			o.coolDown(ctx, spec, attempt, runs)
		}
	}
	return nil
}

// coolDown sleeps between successful measurements so one trial's heat
// and frequency effects bleed less into the next.
func (o *HarnessOrchestrator) coolDown(ctx context.Context, spec models.WorkloadSpec, attempt, runs int) {
	if o.cfg.SleepBetweenSec <= 0 || attempt == runs {
		return
	}
	slog.Debug("sleeping between trials", "spec", spec.Key(), "seconds", o.cfg.SleepBetweenSec)
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(o.cfg.SleepBetweenSec) * time.Second):
	}
}

func (o *HarnessOrchestrator) runName() string {
	if o.cfg.Name != "" {
		return o.cfg.Name
	}
	return time.Now().Format("2006-01-02__15-04-05")
}
