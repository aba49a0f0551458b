package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joulebench/joulebench/internal/models"
)

// ErrNotFound is returned by Get for an unknown (name, language) pair.
var ErrNotFound = errors.New("workload spec not found")

// Registry loads and indexes workload specs. Specs are immutable once
// loaded; identity is (name, language), unique within the registry.
type Registry struct {
	specs map[models.SpecKey]models.WorkloadSpec
	order []models.SpecKey
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		specs: make(map[models.SpecKey]models.WorkloadSpec),
	}
}

// Load parses the given workload YAML documents from fsys and adds them
// to the registry. A missing required field or a duplicate
// (name, language) pair fails with a spec parse error naming the file.
func (r *Registry) Load(fsys fs.FS, paths ...string) error {
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading workload spec %s: %w", path, err)
		}

		var spec models.WorkloadSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return models.NewHarnessError(models.ErrSpecParse, models.SpecKey{},
				"parsing workload spec %s: %s", path, err)
		}

		if err := r.Add(spec); err != nil {
			return fmt.Errorf("workload spec %s: %w", path, err)
		}
	}
	return nil
}

// LoadDir loads every .yml/.yaml file directly under dir, in lexical
// order.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading workload spec directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yml" || ext == ".yaml" {
			paths = append(paths, entry.Name())
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return fmt.Errorf("no workload specs found in %s", dir)
	}

	return r.Load(os.DirFS(dir), paths...)
}

// Add validates a spec and indexes it.
func (r *Registry) Add(spec models.WorkloadSpec) error {
	spec.Language = strings.ToLower(strings.TrimSpace(spec.Language))

	var missing []string
	if spec.Name == "" {
		missing = append(missing, "name")
	}
	if spec.Language == "" {
		missing = append(missing, "language")
	}
	if spec.Code == "" {
		missing = append(missing, "code")
	}
	if spec.ExpectedStdout == "" {
		missing = append(missing, "expected_stdout")
	}
	if len(missing) > 0 {
		return models.NewHarnessError(models.ErrSpecParse, spec.Key(),
			"missing required field(s): %s", strings.Join(missing, ", "))
	}

	if spec.Iterations < 0 {
		return models.NewHarnessError(models.ErrSpecParse, spec.Key(),
			"iterations cannot be negative: %d", spec.Iterations)
	}
	if spec.Iterations == 0 {
		spec.Iterations = 1
	}
	if spec.TimeoutSec < 0 {
		return models.NewHarnessError(models.ErrSpecParse, spec.Key(),
			"timeout_sec cannot be negative: %g", spec.TimeoutSec)
	}

	key := spec.Key()
	if _, exists := r.specs[key]; exists {
		return models.NewHarnessError(models.ErrSpecParse, key,
			"duplicate workload spec")
	}

	r.specs[key] = spec
	r.order = append(r.order, key)
	return nil
}

// Get returns the spec for (name, language), or ErrNotFound.
func (r *Registry) Get(name, language string) (models.WorkloadSpec, error) {
	key := models.SpecKey{Name: name, Language: strings.ToLower(strings.TrimSpace(language))}
	spec, ok := r.specs[key]
	if !ok {
		return models.WorkloadSpec{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return spec, nil
}

// Specs returns all specs in insertion order.
func (r *Registry) Specs() []models.WorkloadSpec {
	out := make([]models.WorkloadSpec, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.specs[key])
	}
	return out
}

// Len returns the number of loaded specs.
func (r *Registry) Len() int {
	return len(r.specs)
}
