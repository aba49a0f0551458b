package executor_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/joulebench/joulebench/internal/executor"
	"github.com/joulebench/joulebench/internal/models"
	"github.com/joulebench/joulebench/internal/sampler"
)

type fakeSampler struct {
	joules float64
	starts atomic.Int32
	stops  atomic.Int32
}

func (f *fakeSampler) Start() bool { f.starts.Add(1); return true }

func (f *fakeSampler) Stop() { f.stops.Add(1) }

func (f *fakeSampler) Joules() (float64, bool) { return f.joules, true }

func testConfig(t *testing.T) models.HarnessConfig {
	t.Helper()
	return models.HarnessConfig{
		Name:                 "test-run",
		ResultsDir:           t.TempDir(),
		Attempts:             2,
		BuildWorkers:         2,
		TimeoutMultiplier:    1.0,
		DefaultTimeoutSec:    10,
		WarmupDiscard:        0,
		OutlierIQRMultiplier: 1.5,
	}
}

func shellSpec(name, code, expected string) models.WorkloadSpec {
	return models.WorkloadSpec{
		Name:           name,
		Language:       "shell",
		Code:           code,
		ExpectedStdout: expected,
		Iterations:     1,
	}
}

func TestOrchestratorFullRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := testConfig(t)
	specs := []models.WorkloadSpec{
		shellSpec("passes", `echo "check: 5"`, "check: 5\n"),
		shellSpec("mismatches", `echo "check: 6"`, "check: 5\n"),
		shellSpec("broken", "if then fi done", "never\n"),
	}

	fake := &fakeSampler{joules: 2.5}
	o := executor.NewHarnessOrchestrator(cfg, specs, sampler.NewGate(fake), t.TempDir())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.TotalSpecs != 3 {
		t.Errorf("TotalSpecs = %d, want 3", report.TotalSpecs)
	}
	if report.FailedBuilds != 1 {
		t.Errorf("FailedBuilds = %d, want 1", report.FailedBuilds)
	}
	// Two buildable specs run every attempt; the broken one records a
	// single synthetic build-failure trial.
	if report.TotalTrials != 5 {
		t.Errorf("TotalTrials = %d, want 5", report.TotalTrials)
	}
	if report.PassedTrials != 2 {
		t.Errorf("PassedTrials = %d, want 2", report.PassedTrials)
	}
	if report.FailedTrials != 3 {
		t.Errorf("FailedTrials = %d, want 3", report.FailedTrials)
	}
	if report.Cancelled {
		t.Error("run was not cancelled")
	}

	// One window per executed trial, all released.
	if fake.starts.Load() != 4 || fake.stops.Load() != 4 {
		t.Errorf("expected 4 matched windows, got %d/%d", fake.starts.Load(), fake.stops.Load())
	}

	if len(report.Summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(report.Summaries))
	}
	for _, s := range report.Summaries {
		if s.Spec.Name != "passes" {
			continue
		}
		if s.SampleCount != 2 {
			t.Errorf("passing spec SampleCount = %d, want 2", s.SampleCount)
		}
		if s.MeanJoules != 2.5 {
			t.Errorf("passing spec MeanJoules = %f, want 2.5", s.MeanJoules)
		}
		if s.PassRate != 1.0 {
			t.Errorf("passing spec PassRate = %f, want 1", s.PassRate)
		}
	}
}

func TestNonWarmupIterationsRunSeparately(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := testConfig(t)
	cfg.Attempts = 1
	spec := shellSpec("repeated", "echo hi", "hi\n")
	spec.Iterations = 3

	fake := &fakeSampler{joules: 1.0}
	o := executor.NewHarnessOrchestrator(cfg, []models.WorkloadSpec{spec}, sampler.NewGate(fake), t.TempDir())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Without warmup every iteration is its own invocation: one window
	// and one recorded trial each.
	if fake.starts.Load() != 3 {
		t.Errorf("opened %d windows, want 3 (one per invocation)", fake.starts.Load())
	}
	if report.TotalTrials != 3 {
		t.Errorf("TotalTrials = %d, want 3", report.TotalTrials)
	}
	if report.PassedTrials != 3 {
		t.Errorf("PassedTrials = %d, want 3", report.PassedTrials)
	}
	if len(report.Summaries) != 1 || report.Summaries[0].TotalTrials != 3 {
		t.Fatalf("expected one summary over 3 trials, got %+v", report.Summaries)
	}
}

func TestWarmupIterationsShareWindows(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := testConfig(t)
	cfg.Attempts = 2
	spec := models.WorkloadSpec{
		Name:     "looped",
		Language: "shell",
		Code: `i=0
while [ "$i" -lt "$RAPL_ITERATIONS" ]; do
  echo hi
  i=$((i+1))
done`,
		ExpectedStdout: "hi\n",
		Warmup:         true,
		Iterations:     3,
	}

	fake := &fakeSampler{joules: 1.0}
	o := executor.NewHarnessOrchestrator(cfg, []models.WorkloadSpec{spec}, sampler.NewGate(fake), t.TempDir())

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Warmup mode spans all iterations with a single window per attempt.
	if fake.starts.Load() != 2 {
		t.Errorf("opened %d windows, want 2 (one per attempt)", fake.starts.Load())
	}
	if report.TotalTrials != 2 || report.PassedTrials != 2 {
		t.Errorf("trials = %d passed %d, want 2/2", report.TotalTrials, report.PassedTrials)
	}
}

func TestOrchestratorWritesResults(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := testConfig(t)
	specs := []models.WorkloadSpec{shellSpec("hello", "echo hello", "hello\n")}

	fake := &fakeSampler{joules: 1.0}
	o := executor.NewHarnessOrchestrator(cfg, specs, sampler.NewGate(fake), t.TempDir())

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	runDir := filepath.Join(cfg.ResultsDir, cfg.Name)

	var echoed models.HarnessConfig
	data, err := os.ReadFile(filepath.Join(runDir, "config.json"))
	if err != nil {
		t.Fatalf("reading config echo: %v", err)
	}
	if err := json.Unmarshal(data, &echoed); err != nil {
		t.Fatalf("decoding config echo: %v", err)
	}
	if echoed.Attempts != cfg.Attempts {
		t.Errorf("config echo Attempts = %d, want %d", echoed.Attempts, cfg.Attempts)
	}

	var report models.RunReport
	data, err = os.ReadFile(filepath.Join(runDir, "report.json"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Name != "test-run" || len(report.Summaries) != 1 {
		t.Errorf("unexpected report: name=%q summaries=%d", report.Name, len(report.Summaries))
	}

	var summary models.MeasurementSummary
	data, err = os.ReadFile(filepath.Join(runDir, "summaries", "hello__shell.json"))
	if err != nil {
		t.Fatalf("reading per-spec summary: %v", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decoding per-spec summary: %v", err)
	}
	if summary.Spec.Name != "hello" || summary.TotalTrials != cfg.Attempts {
		t.Errorf("unexpected per-spec summary: %+v", summary)
	}

	f, err := os.Open(filepath.Join(runDir, "summary.csv"))
	if err != nil {
		t.Fatalf("opening summary.csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading summary.csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[1][0] != "hello" || rows[1][1] != "shell" {
		t.Errorf("unexpected summary row: %v", rows[1])
	}
}

func TestOrchestratorRefusesExistingRunDir(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.ResultsDir, cfg.Name), 0755); err != nil {
		t.Fatal(err)
	}

	o := executor.NewHarnessOrchestrator(cfg, nil, sampler.NewGate(&fakeSampler{}), t.TempDir())
	if _, err := o.Run(context.Background()); err == nil {
		t.Fatal("expected refusal to overwrite an existing run directory")
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := testConfig(t)
	cfg.Attempts = 3
	specs := []models.WorkloadSpec{shellSpec("hello", "echo hello", "hello\n")}

	ctx, cancel := context.WithCancel(context.Background())
	fake := &cancellingSampler{cancel: cancel}
	o := executor.NewHarnessOrchestrator(cfg, specs, sampler.NewGate(fake), t.TempDir())

	report, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The first window cancels the run; the remaining attempts are
	// skipped between trials.
	if !report.Cancelled {
		t.Error("expected cancelled report")
	}
	if report.TotalTrials != 1 {
		t.Errorf("TotalTrials = %d, want 1", report.TotalTrials)
	}
	if report.SkippedTrials != 2 {
		t.Errorf("SkippedTrials = %d, want 2", report.SkippedTrials)
	}
}

// cancellingSampler cancels the run's context from inside the first
// sampling window, after the trial's deadline context is already
// derived.
type cancellingSampler struct {
	cancel context.CancelFunc
}

func (c *cancellingSampler) Start() bool { c.cancel(); return true }

func (c *cancellingSampler) Stop() {}
