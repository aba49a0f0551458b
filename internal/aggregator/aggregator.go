// Package aggregator accumulates completed trials per spec and derives
// summary statistics. Recorded trials are never mutated; summaries are
// recomputed from the trial history on every snapshot.
package aggregator

import (
	"sync"

	"github.com/joulebench/joulebench/internal/models"
)

// Aggregator maintains one TrialSet per spec in insertion order.
type Aggregator struct {
	mu sync.Mutex

	// WarmupDiscard excludes the first K trials of each spec from the
	// energy statistics.
	warmupDiscard int
	// iqrMultiplier sets the outlier fences at Q1−m·IQR and Q3+m·IQR.
	iqrMultiplier float64

	sets  map[models.SpecKey]*models.TrialSet
	order []models.SpecKey
}

// New creates an aggregator with the given warm-up discard and IQR
// outlier multiplier.
func New(warmupDiscard int, iqrMultiplier float64) *Aggregator {
	if iqrMultiplier <= 0 {
		iqrMultiplier = 1.5
	}
	return &Aggregator{
		warmupDiscard: warmupDiscard,
		iqrMultiplier: iqrMultiplier,
		sets:          make(map[models.SpecKey]*models.TrialSet),
	}
}

// Record appends a completed trial to its spec's set.
func (a *Aggregator) Record(trial models.Trial) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.sets[trial.Spec]
	if !ok {
		set = &models.TrialSet{Spec: trial.Spec}
		a.sets[trial.Spec] = set
		a.order = append(a.order, trial.Spec)
	}
	set.Trials = append(set.Trials, trial)
}

// Snapshot recomputes the summary for one spec from its trial history.
func (a *Aggregator) Snapshot(key models.SpecKey) (models.MeasurementSummary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.sets[key]
	if !ok {
		return models.MeasurementSummary{}, false
	}
	return a.summarize(set), true
}

// Summaries returns one summary per spec, in first-recorded order.
func (a *Aggregator) Summaries() []models.MeasurementSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.MeasurementSummary, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.summarize(a.sets[key]))
	}
	return out
}

func (a *Aggregator) summarize(set *models.TrialSet) models.MeasurementSummary {
	summary := models.MeasurementSummary{
		Spec:        set.Spec,
		TotalTrials: len(set.Trials),
	}

	var passed int
	for _, t := range set.Trials {
		if t.Outcome == models.OutcomePass {
			passed++
		}
	}
	if len(set.Trials) > 0 {
		summary.PassRate = float64(passed) / float64(len(set.Trials))
	}

	// Energy statistics: drop the warm-up prefix, keep passing trials
	// with an energy reading, then reject outliers.
	eligible := set.Trials
	if a.warmupDiscard < len(eligible) {
		eligible = eligible[a.warmupDiscard:]
	} else {
		eligible = nil
	}

	var energies []float64
	var wallSum float64
	var wallCount int
	for _, t := range eligible {
		if t.Outcome != models.OutcomePass {
			continue
		}
		wallSum += t.EndedAt.Sub(t.StartedAt).Seconds()
		wallCount++
		if t.EnergyJoules != nil {
			energies = append(energies, *t.EnergyJoules)
		}
	}
	if wallCount > 0 {
		summary.MeanWallSeconds = wallSum / float64(wallCount)
	}

	kept := rejectOutliers(energies, a.iqrMultiplier)
	summary.SampleCount = len(kept)
	if len(kept) == 0 {
		return summary
	}

	summary.MeanJoules = mean(kept)
	summary.StddevJoules = sampleStddev(kept, summary.MeanJoules)
	summary.MinJoules, summary.MaxJoules = bounds(kept)
	summary.ConfidenceJoules = confidence95(summary.StddevJoules, len(kept))
	return summary
}
