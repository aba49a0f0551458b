package sampler

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joulebench/joulebench/internal/util"
)

const powercapRoot = "/sys/class/powercap"

// RAPL samples the package energy counter exposed by the Linux
// powercap subsystem. Start returns false when the counter cannot be
// read, which the harness treats as measurement being unavailable.
type RAPL struct {
	zone string

	startUJ uint64
	maxUJ   uint64

	lastJoules float64
	valid      bool
}

// NewRAPL returns a sampler bound to the first package energy zone.
func NewRAPL() *RAPL {
	return &RAPL{zone: filepath.Join(powercapRoot, "intel-rapl:0")}
}

// NewRAPLZone returns a sampler bound to a specific powercap zone
// directory.
func NewRAPLZone(zone string) *RAPL {
	return &RAPL{zone: zone}
}

// Start reads the energy counter at window open.
func (r *RAPL) Start() bool {
	uj, err := r.readCounter("energy_uj")
	if err != nil {
		slog.Error("energy counter unreadable", "zone", r.zone, "error", err)
		return false
	}

	if r.maxUJ == 0 {
		// The range file is optional; without it a wrapped counter is
		// unrecoverable, the window has no reading, and the run aborts
		// as a mid-window measurement failure.
		if rangeUJ, err := r.readCounter("max_energy_range_uj"); err == nil {
			r.maxUJ = rangeUJ
		}
	}

	r.startUJ = uj
	r.valid = false
	return true
}

// Stop reads the counter again and fixes the window's energy.
func (r *RAPL) Stop() {
	uj, err := r.readCounter("energy_uj")
	if err != nil {
		slog.Error("energy counter unreadable at window close", "zone", r.zone, "error", err)
		return
	}

	if uj >= r.startUJ {
		r.lastJoules = util.MicrojoulesToJoules(uj - r.startUJ)
		r.valid = true
		return
	}

	// Counter wrapped during the window.
	if r.maxUJ > 0 {
		r.lastJoules = util.MicrojoulesToJoules(r.maxUJ - r.startUJ + uj)
		r.valid = true
	}
}

// Joules reports the energy of the most recently closed window.
func (r *RAPL) Joules() (float64, bool) {
	return r.lastJoules, r.valid
}

func (r *RAPL) readCounter(name string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(r.zone, name))
	if err != nil {
		return 0, err
	}
	return util.ParseMicrojoules(string(data))
}
