package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joulebench/joulebench/internal/config"
	"github.com/joulebench/joulebench/internal/models"
	"github.com/joulebench/joulebench/internal/registry"
	"github.com/joulebench/joulebench/internal/sampler"
)

// RunFromConfig loads a harness config and workload spec files, then
// executes the full measurement run against the RAPL sampler.
func RunFromConfig(ctx context.Context, configPath string, specPaths []string) (*models.RunReport, error) {
	cfg, err := config.LoadHarnessConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading harness config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	reg := registry.New()
	for _, path := range specPaths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("locating workload spec %s: %w", path, err)
		}
		if info.IsDir() {
			err = reg.LoadDir(path)
		} else {
			err = reg.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		}
		if err != nil {
			return nil, err
		}
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no workload specs loaded")
	}

	buildRoot := filepath.Join(os.TempDir(), fmt.Sprintf("joulebench-build-%d", time.Now().Unix()))
	if err := os.MkdirAll(buildRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating build workspace: %w", err)
	}
	defer os.RemoveAll(buildRoot)

	gate := sampler.NewGate(sampler.NewRAPL())
	orchestrator := NewHarnessOrchestrator(cfg, reg.Specs(), gate, buildRoot)
	return orchestrator.Run(ctx)
}
