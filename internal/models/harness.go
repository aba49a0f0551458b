package models

// HarnessConfig represents the parsed harness.toml configuration.
type HarnessConfig struct {
	Name       string `toml:"name,omitempty" json:"name,omitempty"`
	ResultsDir string `toml:"results_dir" json:"results_dir"`
	LogLevel   string `toml:"log_level,omitempty" json:"log_level,omitempty"`

	// Attempts is the number of trials recorded per spec.
	Attempts     int `toml:"attempts" json:"attempts"`
	BuildWorkers int `toml:"build_workers" json:"build_workers"`

	TimeoutMultiplier float64 `toml:"timeout_multiplier" json:"timeout_multiplier"`
	DefaultTimeoutSec float64 `toml:"default_timeout_sec" json:"default_timeout_sec"`

	// SleepBetweenSec is the cool-down after each successful trial.
	SleepBetweenSec int `toml:"sleep_between_sec" json:"sleep_between_sec"`

	// Aggregation controls.
	WarmupDiscard        int     `toml:"warmup_discard" json:"warmup_discard"`
	OutlierIQRMultiplier float64 `toml:"outlier_iqr_multiplier" json:"outlier_iqr_multiplier"`
}
