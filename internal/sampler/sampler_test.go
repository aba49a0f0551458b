package sampler_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/joulebench/joulebench/internal/sampler"
)

// fakeSampler instruments window bookkeeping.
type fakeSampler struct {
	refuse bool
	joules float64

	open      atomic.Int32
	maxOpen   atomic.Int32
	starts    atomic.Int32
	stops     atomic.Int32
	hasEnergy bool
}

func (f *fakeSampler) Start() bool {
	if f.refuse {
		return false
	}
	f.starts.Add(1)
	n := f.open.Add(1)
	for {
		prev := f.maxOpen.Load()
		if n <= prev || f.maxOpen.CompareAndSwap(prev, n) {
			break
		}
	}
	return true
}

func (f *fakeSampler) Stop() {
	f.stops.Add(1)
	f.open.Add(-1)
}

func (f *fakeSampler) Joules() (float64, bool) {
	return f.joules, f.hasEnergy
}

func TestGateExclusivity(t *testing.T) {
	fake := &fakeSampler{}
	gate := sampler.NewGate(fake)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				window, ok := gate.Acquire()
				if !ok {
					t.Error("sampler refused unexpectedly")
					return
				}
				window.Close()
			}
		}()
	}
	wg.Wait()

	if observed := fake.maxOpen.Load(); observed != 1 {
		t.Errorf("observed %d simultaneously open windows, want at most 1", observed)
	}
	if fake.starts.Load() != fake.stops.Load() {
		t.Errorf("start/stop mismatch: %d starts, %d stops", fake.starts.Load(), fake.stops.Load())
	}
}

func TestGateRefusedStart(t *testing.T) {
	fake := &fakeSampler{refuse: true}
	gate := sampler.NewGate(fake)

	window, ok := gate.Acquire()
	if ok {
		t.Fatal("expected refusal")
	}
	if window != nil {
		t.Fatal("expected nil window on refusal")
	}
	if fake.stops.Load() != 0 {
		t.Errorf("Stop called %d times after refused Start, want 0", fake.stops.Load())
	}

	// The gate must not stay locked after a refusal.
	fake.refuse = false
	window, ok = gate.Acquire()
	if !ok {
		t.Fatal("gate deadlocked after refusal")
	}
	window.Close()
}

func TestWindowCloseIdempotent(t *testing.T) {
	fake := &fakeSampler{}
	gate := sampler.NewGate(fake)

	window, ok := gate.Acquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	window.Close()
	window.Close()
	window.Close()

	if fake.stops.Load() != 1 {
		t.Errorf("Stop called %d times, want exactly 1", fake.stops.Load())
	}
}

func TestWindowEnergy(t *testing.T) {
	fake := &fakeSampler{joules: 12.5, hasEnergy: true}
	gate := sampler.NewGate(fake)

	window, _ := gate.Acquire()
	if _, ok := window.Energy(); ok {
		t.Error("energy should not be available before Close")
	}

	window.Close()
	j, ok := window.Energy()
	if !ok {
		t.Fatal("expected energy after Close")
	}
	if j != 12.5 {
		t.Errorf("expected 12.5 J, got %f", j)
	}
	if window.Failed() {
		t.Error("window with a reading must not report failure")
	}
}

func TestWindowEnergyUnavailable(t *testing.T) {
	fake := &fakeSampler{}
	gate := sampler.NewGate(fake)

	window, _ := gate.Acquire()
	window.Close()
	if _, ok := window.Energy(); ok {
		t.Error("expected no energy reading from a sampler without one")
	}
	// The fake is an EnergyReader that produced nothing: a mid-window
	// measurement failure.
	if !window.Failed() {
		t.Error("expected the window to report a measurement failure")
	}
}
