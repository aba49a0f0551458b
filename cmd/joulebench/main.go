package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joulebench/joulebench/internal/executor"
	"github.com/joulebench/joulebench/internal/util"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: joulebench <harness.toml> <workload.yml|dir>...")
		os.Exit(1)
	}

	configPath := os.Args[1]
	specPaths := os.Args[2:]

	// Setup context with manual signal handling; cancellation takes
	// effect between trials, never inside an open sampling window.
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, finishing current trial...", "signal", sig)
		cancel()
	}()

	report, err := executor.RunFromConfig(ctx, configPath, specPaths)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nRun: %s\n", report.Name)
	fmt.Printf("Specs: %d (%d failed to build)\n", report.TotalSpecs, report.FailedBuilds)
	fmt.Printf("Trials: %d total, %d passed, %d failed, %d skipped\n",
		report.TotalTrials, report.PassedTrials, report.FailedTrials, report.SkippedTrials)
	for _, s := range report.Summaries {
		fmt.Printf("  %-40s mean %s ± %s over %d samples (pass rate %.0f%%)\n",
			s.Spec, util.FormatJoules(s.MeanJoules), util.FormatJoules(s.ConfidenceJoules),
			s.SampleCount, s.PassRate*100)
	}
	fmt.Printf("Duration: %.2fs\n", report.EndedAt.Sub(report.StartedAt).Seconds())

	if report.FailedTrials > 0 || report.Cancelled {
		os.Exit(1)
	}
}
