package alert

import (
	"math"
	"testing"
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

func TestDiff_NoPriorPeak(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)
	maxPoint := types.ForecastPoint{
		Timestamp: now.Add(48 * time.Hour),
		Height:    4.69,
	}

	heightDiff, timeDiff := Diff(now, maxPoint, nil)
	if !math.IsInf(heightDiff, 1) || !math.IsInf(timeDiff, 1) {
		t.Errorf("Diff() with no prior peak = (%v, %v), want (+Inf, +Inf)", heightDiff, timeDiff)
	}
}

func TestDiff_StalePeak(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)
	maxPoint := types.ForecastPoint{Timestamp: now.Add(24 * time.Hour), Height: 4.0}

	// Peak whose alerted moment passed more than 6 hours ago.
	stale := &types.AlertRecord{
		UserID:    "usr_1",
		Timestamp: now.Add(-PeakFreshness - time.Minute),
		Height:    3.5,
		Kind:      types.AlertKindPeak,
	}

	heightDiff, timeDiff := Diff(now, maxPoint, stale)
	if !math.IsInf(heightDiff, 1) || !math.IsInf(timeDiff, 1) {
		t.Errorf("Diff() with stale peak = (%v, %v), want (+Inf, +Inf)", heightDiff, timeDiff)
	}
}

func TestDiff_FreshPeak(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)

	// Alerted an hour ago at 3.5 ft; new maximum 36 hours after the old peak.
	peak := &types.AlertRecord{
		UserID:    "usr_1",
		Timestamp: now.Add(-1 * time.Hour),
		Height:    3.5,
		Kind:      types.AlertKindPeak,
	}
	maxPoint := types.ForecastPoint{
		Timestamp: peak.Timestamp.Add(36 * time.Hour),
		Height:    4.69,
	}

	heightDiff, timeDiff := Diff(now, maxPoint, peak)

	if diff := heightDiff - 1.19; math.Abs(diff) > 1e-9 {
		t.Errorf("heightDiff = %v, want 1.19", heightDiff)
	}
	// 36 hours = 1.5 fractional days, no truncation.
	if diff := timeDiff - 1.5; math.Abs(diff) > 1e-9 {
		t.Errorf("timeDiff = %v, want 1.5", timeDiff)
	}
}

func TestDiff_FreshnessBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2022, 12, 18, 12, 0, 0, 0, time.UTC)
	maxPoint := types.ForecastPoint{Timestamp: now, Height: 4.0}

	// Exactly PeakFreshness old: still fresh (comparison is strict).
	peak := &types.AlertRecord{
		UserID:    "usr_1",
		Timestamp: now.Add(-PeakFreshness),
		Height:    4.0,
		Kind:      types.AlertKindPeak,
	}

	heightDiff, _ := Diff(now, maxPoint, peak)
	if math.IsInf(heightDiff, 1) {
		t.Error("a peak exactly PeakFreshness old must still be the comparison baseline")
	}
}
