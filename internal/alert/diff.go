package alert

import (
	"math"
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

// PeakFreshness is how long a recorded peak stays relevant as a comparison
// baseline. A peak recorded longer ago than this no longer suppresses new
// alerts: the diff calculator returns +Inf for both deltas to force a fresh
// eligibility decision.
const PeakFreshness = 6 * time.Hour

// hoursPerDay converts durations to the fractional-day units the threshold
// math is expressed in.
const hoursPerDay = 24

// Diff computes the height and time deltas between the current maximum
// forecast point and the user's last recorded peak.
//
// When latestPeak is nil, or was recorded more than PeakFreshness before now,
// both deltas are +Inf so the eligibility decision always considers an alert.
// Otherwise heightDiff is maxPoint.Height - latestPeak.Height in feet, and
// timeDiff is the elapsed time from the alerted peak's timestamp to the new
// maximum's timestamp, in fractional days. No truncation is applied anywhere
// in the delta arithmetic.
func Diff(now time.Time, maxPoint types.ForecastPoint, latestPeak *types.AlertRecord) (heightDiff, timeDiff float64) {
	if latestPeak == nil || now.Sub(latestPeak.Timestamp) > PeakFreshness {
		return math.Inf(1), math.Inf(1)
	}

	heightDiff = maxPoint.Height - latestPeak.Height
	timeDiff = fractionalDays(maxPoint.Timestamp.Sub(latestPeak.Timestamp))
	return heightDiff, timeDiff
}

// fractionalDays converts a duration to fractional days.
func fractionalDays(d time.Duration) float64 {
	return d.Hours() / hoursPerDay
}
