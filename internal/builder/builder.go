package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/joulebench/joulebench/internal/environment"
	"github.com/joulebench/joulebench/internal/models"
)

// LookupFunc resolves a spec language to its environment.
type LookupFunc func(language string) (environment.Environment, error)

// Builder compiles workload specs into cached artifacts. A given
// content hash is built at most once per harness run; concurrent
// requests for an identical spec share the single in-progress build.
type Builder struct {
	root   string // run-scoped workspace for build directories
	lookup LookupFunc

	mu    sync.Mutex
	cache map[string]*models.BuildArtifact

	group singleflight.Group
}

// New creates a builder rooted at the given workspace directory.
func New(root string, lookup LookupFunc) *Builder {
	if lookup == nil {
		lookup = environment.Lookup
	}
	return &Builder{
		root:   root,
		lookup: lookup,
		cache:  make(map[string]*models.BuildArtifact),
	}
}

// Build returns the artifact for spec, compiling it on first request.
// Failed builds are cached too, so a broken spec is compiled only once.
func (b *Builder) Build(ctx context.Context, spec models.WorkloadSpec) (*models.BuildArtifact, error) {
	hash := ContentHash(spec)

	if artifact, ok := b.cached(hash); ok {
		return artifact, artifactErr(artifact)
	}

	v, err, shared := b.group.Do(hash, func() (any, error) {
		if artifact, ok := b.cached(hash); ok {
			return artifact, nil
		}

		artifact, err := b.compile(ctx, spec, hash)
		if artifact == nil {
			return nil, err
		}

		b.store(hash, artifact)
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}

	artifact := v.(*models.BuildArtifact)
	if shared {
		slog.Debug("shared in-flight build", "spec", spec.Key(), "hash", hash[:12])
	}
	return artifact, artifactErr(artifact)
}

func (b *Builder) compile(ctx context.Context, spec models.WorkloadSpec, hash string) (*models.BuildArtifact, error) {
	env, err := b.lookup(spec.Language)
	if err != nil {
		return nil, err
	}

	deps, err := env.ResolveDependencies(spec)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved toolchain", "spec", spec.Key(), "components", deps)

	workdir := filepath.Join(b.root, hash[:16])
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}

	artifact, err := env.Compile(ctx, spec, workdir)
	if artifact == nil {
		return nil, err
	}
	artifact.Hash = hash

	if artifact.Status == models.BuildFailed {
		slog.Warn("build failed", "spec", spec.Key(), "log", artifact.BuildLog)
	}
	return artifact, nil
}

// cached returns the artifact for hash if one has been stored.
func (b *Builder) cached(hash string) (*models.BuildArtifact, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	artifact, ok := b.cache[hash]
	return artifact, ok
}

// store inserts the artifact unless a concurrent build won the race.
func (b *Builder) store(hash string, artifact *models.BuildArtifact) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.cache[hash]; !exists {
		b.cache[hash] = artifact
	}
}

// artifactErr reconstructs the build failure for a cached failed
// artifact, keeping build errors distinct from runtime ones.
func artifactErr(artifact *models.BuildArtifact) error {
	if artifact.Status != models.BuildFailed {
		return nil
	}
	return models.NewHarnessError(models.ErrBuildFailure, artifact.Spec.Key(),
		"compile failed: %s", artifact.BuildLog)
}
