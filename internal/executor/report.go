package executor

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joulebench/joulebench/internal/models"
)

// writeConfigEcho saves the effective harness configuration alongside
// the results so a run is reproducible from its output directory.
func writeConfigEcho(runDir string, cfg models.HarnessConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config echo: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "config.json"), data, 0644); err != nil {
		return fmt.Errorf("writing config echo: %w", err)
	}
	return nil
}

// writeReport writes report.json, one summary JSON per spec under
// summaries/, and a summary.csv for external reporters.
func writeReport(runDir string, report *models.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "report.json"), data, 0644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}

	if err := writeSummaries(runDir, report.Summaries); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(runDir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("creating summary.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"name", "language", "total_trials", "sample_count",
		"mean_joules", "stddev_joules", "min_joules", "max_joules",
		"confidence_interval_joules", "mean_wall_seconds", "pass_rate",
	}); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for _, s := range report.Summaries {
		row := []string{
			s.Spec.Name,
			s.Spec.Language,
			strconv.Itoa(s.TotalTrials),
			strconv.Itoa(s.SampleCount),
			formatFloat(s.MeanJoules),
			formatFloat(s.StddevJoules),
			formatFloat(s.MinJoules),
			formatFloat(s.MaxJoules),
			formatFloat(s.ConfidenceJoules),
			formatFloat(s.MeanWallSeconds),
			formatFloat(s.PassRate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeSummaries(runDir string, summaries []models.MeasurementSummary) error {
	dir := filepath.Join(runDir, "summaries")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating summaries directory: %w", err)
	}

	for _, s := range summaries {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding summary for %s: %w", s.Spec, err)
		}
		name := fmt.Sprintf("%s__%s.json", s.Spec.Name, s.Spec.Language)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("writing summary for %s: %w", s.Spec, err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
