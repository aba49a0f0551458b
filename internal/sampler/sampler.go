// Package sampler wraps the external energy-sampling subsystem behind
// an exclusive start/stop gate. At most one sampling window is open
// across the entire harness at any instant.
package sampler

import "sync"

// Sampler is the external energy-sampling boundary. Start opens a
// measurement window and returns false when the subsystem is
// unavailable, in which case the caller must not proceed. Stop closes
// exactly one open window. Windows do not nest.
type Sampler interface {
	Start() bool
	Stop()
}

// EnergyReader is implemented by samplers that can report the energy of
// the most recently closed window.
type EnergyReader interface {
	Joules() (float64, bool)
}

// Gate serializes sampling windows process-wide. The mutex is held for
// the whole acquire → execute → release sequence.
type Gate struct {
	mu      sync.Mutex
	sampler Sampler
}

// NewGate wraps a sampler in an exclusive gate.
func NewGate(s Sampler) *Gate {
	return &Gate{sampler: s}
}

// Acquire opens a sampling window. ok is false when the subsystem
// refused work: no window is open, nothing was locked, and the caller
// must not run the measured body.
func (g *Gate) Acquire() (w *Window, ok bool) {
	g.mu.Lock()
	if !g.sampler.Start() {
		g.mu.Unlock()
		return nil, false
	}
	return &Window{gate: g}, true
}

// Window is one open sampling window. Close must run on every exit
// path; it is safe to call more than once.
type Window struct {
	gate   *Gate
	closed bool
	joules *float64
}

// Close stops the sampler, captures the window's energy if the sampler
// reports one, and releases the gate.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.gate.sampler.Stop()
	if reader, ok := w.gate.sampler.(EnergyReader); ok {
		if j, ok := reader.Joules(); ok {
			w.joules = &j
		}
	}
	w.gate.mu.Unlock()
}

// Energy returns the measured energy of the window in joules. It is
// only available after Close, and only when the sampler can report it.
func (w *Window) Energy() (float64, bool) {
	if w.joules == nil {
		return 0, false
	}
	return *w.joules, true
}

// Failed reports a mid-window measurement failure: the sampler can
// report energy but produced no reading for this closed window.
// Samplers without an EnergyReader never fail this way.
func (w *Window) Failed() bool {
	if !w.closed || w.joules != nil {
		return false
	}
	_, isReader := w.gate.sampler.(EnergyReader)
	return isReader
}
