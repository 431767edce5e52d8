// Package progress derives completion and remaining-time figures from a
// job's counters. The tracker is pure computation over its inputs.
package progress

import "time"

// Progress is a point-in-time view of a job's advancement.
type Progress struct {
	// Percent is completion from 0 to 100.
	Percent float64
	// EstimatedRemaining is the projected time to finish, valid only when
	// EstimateKnown is true.
	EstimatedRemaining time.Duration
	// EstimateKnown reports whether enough data exists for an estimate.
	// No estimate is possible before the first item completes.
	EstimateKnown bool
}

// Tracker computes progress figures.
type Tracker struct{}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Calculate derives progress from the counters. A job with no items is 100%
// complete. The remaining-time estimate extrapolates the observed per-item
// rate since startedAt over the unprocessed items.
func (t *Tracker) Calculate(processed, total int, startedAt, now time.Time) Progress {
	if total <= 0 {
		return Progress{Percent: 100}
	}

	percent := float64(processed) / float64(total) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	p := Progress{Percent: percent}
	if processed <= 0 || startedAt.IsZero() {
		return p
	}
	elapsed := now.Sub(startedAt)
	if elapsed <= 0 {
		return p
	}

	remaining := total - processed
	if remaining < 0 {
		remaining = 0
	}
	perItem := elapsed / time.Duration(processed)
	p.EstimatedRemaining = perItem * time.Duration(remaining)
	p.EstimateKnown = true
	return p
}
