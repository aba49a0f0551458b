package environment

import (
	"context"

	"github.com/joulebench/joulebench/internal/models"
)

// C builds workloads with gcc.
type C struct{}

func (C) Language() string { return "c" }

func (C) Aliases() []string { return []string{"c"} }

func (C) ResolveDependencies(spec models.WorkloadSpec) ([]string, error) {
	return resolveTools(spec, append([]string{"gcc"}, spec.Dependencies...)...)
}

func (C) Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error) {
	argv := append([]string{"gcc", "main.c", "-o", "main", "-w"}, spec.Options...)
	return compileWith(ctx, spec, workdir, "main.c", "main", argv)
}

func (C) RunCommand(artifact *models.BuildArtifact, args []string) (string, []string) {
	return artifact.Executable, args
}

// Cpp builds workloads with g++.
type Cpp struct{}

func (Cpp) Language() string { return "c++" }

func (Cpp) Aliases() []string { return []string{"c++", "cpp", "cplusplus"} }

func (Cpp) ResolveDependencies(spec models.WorkloadSpec) ([]string, error) {
	return resolveTools(spec, append([]string{"g++"}, spec.Dependencies...)...)
}

func (Cpp) Compile(ctx context.Context, spec models.WorkloadSpec, workdir string) (*models.BuildArtifact, error) {
	argv := append([]string{"g++", "main.cpp", "-o", "main", "-w"}, spec.Options...)
	return compileWith(ctx, spec, workdir, "main.cpp", "main", argv)
}

func (Cpp) RunCommand(artifact *models.BuildArtifact, args []string) (string, []string) {
	return artifact.Executable, args
}
