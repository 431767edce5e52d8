package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	progress "github.com/attestia/jobcore/pkg/jobs/engine/progress"
)

func TestCalculatePercent(t *testing.T) {
	tracker := progress.NewTracker()
	start := time.Now()

	p := tracker.Calculate(25, 100, start, start.Add(time.Minute))
	assert.Equal(t, float64(25), p.Percent)
}

func TestCalculateZeroTotalIsComplete(t *testing.T) {
	tracker := progress.NewTracker()

	// A job with no items is 100% done, never a division by zero.
	p := tracker.Calculate(0, 0, time.Time{}, time.Now())
	assert.Equal(t, float64(100), p.Percent)
	assert.False(t, p.EstimateKnown)
}

func TestCalculateNoEstimateBeforeFirstItem(t *testing.T) {
	tracker := progress.NewTracker()
	start := time.Now()

	p := tracker.Calculate(0, 10, start, start.Add(time.Second))
	assert.Equal(t, float64(0), p.Percent)
	assert.False(t, p.EstimateKnown)
}

func TestCalculateNoEstimateWithoutStartTime(t *testing.T) {
	tracker := progress.NewTracker()

	p := tracker.Calculate(5, 10, time.Time{}, time.Now())
	assert.Equal(t, float64(50), p.Percent)
	assert.False(t, p.EstimateKnown)
}

func TestCalculateEstimateExtrapolatesRate(t *testing.T) {
	tracker := progress.NewTracker()
	start := time.Now()

	// 20 items in 10s means 500ms per item; 80 remain.
	p := tracker.Calculate(20, 100, start, start.Add(10*time.Second))
	assert.True(t, p.EstimateKnown)
	assert.Equal(t, 40*time.Second, p.EstimatedRemaining)
}

func TestCalculateFinishedJobHasNoRemaining(t *testing.T) {
	tracker := progress.NewTracker()
	start := time.Now()

	p := tracker.Calculate(10, 10, start, start.Add(time.Minute))
	assert.Equal(t, float64(100), p.Percent)
	assert.True(t, p.EstimateKnown)
	assert.Equal(t, time.Duration(0), p.EstimatedRemaining)
}

func TestCalculateClampsPercent(t *testing.T) {
	tracker := progress.NewTracker()

	p := tracker.Calculate(15, 10, time.Time{}, time.Now())
	assert.Equal(t, float64(100), p.Percent)
}
