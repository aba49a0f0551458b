package environment

import (
	"context"

	"github.com/joulebench/joulebench/internal/models"
)

// Python runs workloads under the python3 interpreter. Compilation is a
// syntax check through py_compile so malformed code is classified as a
// build failure rather than a runtime one.
type Python struct{}

func (Python) Language() string { return "python" }

func (Python) Aliases() []string { return []string{"python", "py"} }

func (Python) ResolveDependencies(spec models.WorkloadSpec) ([]string, error) {
	return resolveTools(spec, append([]string{"python3"}, spec.Dependencies...)...)
}

func (Python) Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error) {
	return compileWith(ctx, spec, workdir, "main.py", "main.py", []string{"python3", "-m", "py_compile", "main.py"})
}

// RunCommand passes spec options as interpreter flags ahead of the
// script path.
func (Python) RunCommand(artifact *models.BuildArtifact, args []string) (string, []string) {
	argv := append([]string{}, artifact.Spec.Options...)
	argv = append(argv, artifact.Executable)
	return "python3", append(argv, args...)
}

// Shell runs workloads under the POSIX shell. Compilation is a syntax
// check with sh -n.
type Shell struct{}

func (Shell) Language() string { return "shell" }

func (Shell) Aliases() []string { return []string{"shell", "sh"} }

func (Shell) ResolveDependencies(spec models.WorkloadSpec) ([]string, error) {
	return resolveTools(spec, append([]string{"sh"}, spec.Dependencies...)...)
}

func (Shell) Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error) {
	return compileWith(ctx, spec, workdir, "main.sh", "main.sh", []string{"sh", "-n", "main.sh"})
}

func (Shell) RunCommand(artifact *models.BuildArtifact, args []string) (string, []string) {
	return "sh", append([]string{artifact.Executable}, args...)
}
