package environment

import (
	"context"

	"github.com/joulebench/joulebench/internal/models"
)

// Rust builds workloads with rustc.
type Rust struct{}

func (Rust) Language() string { return "rust" }

func (Rust) Aliases() []string { return []string{"rust", "rs"} }

func (Rust) ResolveDependencies(spec models.WorkloadSpec) ([]string, error) {
	return resolveTools(spec, append([]string{"rustc"}, spec.Dependencies...)...)
}

func (Rust) Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error) {
	argv := append([]string{"rustc", "main.rs", "-o", "main", "-A", "warnings"}, spec.Options...)
	return compileWith(ctx, spec, workdir, "main.rs", "main", argv)
}

func (Rust) RunCommand(artifact *models.BuildArtifact, args []string) (string, []string) {
	return artifact.Executable, args
}
