package environment

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joulebench/joulebench/internal/models"
)

// Environment is the per-language capability set that translates a
// workload spec into build and run commands.
type Environment interface {
	// Language returns the canonical language name.
	Language() string

	// Aliases returns every spec `language` value this environment
	// serves, lowercase, including the canonical name.
	Aliases() []string

	// ResolveDependencies returns the toolchain components the spec
	// requires, in invocation order. It fails with a missing-dependency
	// error when any component is absent from the host.
	ResolveDependencies(spec models.WorkloadSpec) ([]string, error)

	// Compile builds the spec inside workdir. On a non-zero compiler
	// exit the returned artifact has Status BuildFailed and carries the
	// captured stderr, and the error classifies as a build failure.
	Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error)

	// RunCommand returns the executable path and argv for one
	// invocation of a built artifact.
	RunCommand(artifact *models.BuildArtifact, args []string) (string, []string)
}

// resolveTools probes each toolchain component with exec.LookPath.
func resolveTools(spec models.WorkloadSpec, tools ...string) ([]string, error) {
	seen := make(map[string]bool, len(tools))
	var resolved []string
	for _, tool := range tools {
		if tool == "" || seen[tool] {
			continue
		}
		seen[tool] = true
		if _, err := exec.LookPath(tool); err != nil {
			return nil, models.NewHarnessError(models.ErrMissingDependency, spec.Key(),
				"%s not found on host", tool)
		}
		resolved = append(resolved, tool)
	}
	return resolved, nil
}

// compileWith writes the spec source into workdir and runs the compiler
// command, capturing its output into the artifact's build log.
func compileWith(ctx context.Context, spec models.WorkloadSpec, workdir, source, target string, argv []string) (*models.BuildArtifact, error) {
	sourcePath := filepath.Join(workdir, source)
	if err := os.WriteFile(sourcePath, []byte(spec.Code), 0644); err != nil {
		return nil, models.NewHarnessError(models.ErrBuildFailure, spec.Key(),
			"writing source: %s", err)
	}

	artifact := &models.BuildArtifact{
		Spec:       spec,
		WorkDir:    workdir,
		Executable: filepath.Join(workdir, target),
		Status:     models.BuildPending,
	}

	if len(argv) == 0 {
		// Nothing to compile; the source itself is the target.
		artifact.Status = models.BuildBuilt
		return artifact, nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workdir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	artifact.BuildLog = output.String()
	if err != nil {
		artifact.Status = models.BuildFailed
		return artifact, models.NewHarnessError(models.ErrBuildFailure, spec.Key(),
			"compile failed: %s: %s", err, artifact.BuildLog)
	}

	artifact.Status = models.BuildBuilt
	return artifact, nil
}
