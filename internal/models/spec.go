package models

// WorkloadSpec describes one benchmark implementation in one language,
// loaded from a workload YAML document. Immutable once loaded.
type WorkloadSpec struct {
	Name           string   `yaml:"name"`
	Language       string   `yaml:"language"`
	Description    string   `yaml:"description,omitempty"`
	Code           string   `yaml:"code"`
	Dependencies   []string `yaml:"dependencies,omitempty"`
	Options        []string `yaml:"options,omitempty"`
	Args           []string `yaml:"args,omitempty"`
	Stdin          string   `yaml:"stdin,omitempty"`
	ExpectedStdout string   `yaml:"expected_stdout"`

	// Warmup selects the sampling window shape for repeated trials:
	// true runs Iterations internal iterations inside a single window
	// per trial (the workload reads RAPL_ITERATIONS and loops itself),
	// false opens one window per process invocation.
	Warmup     bool    `yaml:"warmup,omitempty"`
	Iterations int     `yaml:"iterations,omitempty"`  // default: 1
	TimeoutSec float64 `yaml:"timeout_sec,omitempty"` // default: harness config
}

// Key returns the registry identity of the spec.
func (s WorkloadSpec) Key() SpecKey {
	return SpecKey{Name: s.Name, Language: s.Language}
}

// SpecKey identifies a workload spec. Unique within a registry.
type SpecKey struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (k SpecKey) String() string {
	return k.Name + " (" + k.Language + ")"
}
