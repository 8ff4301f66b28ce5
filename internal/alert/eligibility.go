package alert

import (
	"math"
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

// MinHeightDiff returns the height delta the new maximum must reach before an
// alert re-fires, given how far the forecast already sits above the user's
// base height. The threshold starts at HeightDiffStart and shrinks by
// HeightSlope for every foot above HeightBase, floored at HeightDiffMin: a
// rising flood triggers alerts on smaller height deltas.
func MinHeightDiff(u types.User, maxPoint types.ForecastPoint) float64 {
	shrunk := u.HeightDiffStart - (maxPoint.Height-u.HeightBase)*u.HeightSlope
	return math.Max(shrunk, u.HeightDiffMin)
}

// MinTimeDiff returns the elapsed-time delta (fractional days) the new
// maximum must reach before an alert re-fires. It scales with how far in the
// future the forecast peak lies, floored at TimeDiffMin.
func MinTimeDiff(u types.User, now time.Time, maxPoint types.ForecastPoint) float64 {
	lead := fractionalDays(maxPoint.Timestamp.Sub(now)) * u.TimeSlope
	return math.Max(lead, u.TimeDiffMin)
}

// ShouldAlert decides whether a new alert fires for the user given the
// current maximum forecast point and the user's latest recorded peak.
//
// An alert is suppressed only when BOTH deltas are small: the height change
// and the elapsed time since the last alerted peak each fall below their
// dynamically-shrinking minimums. Everything else fires — including the
// no-prior-peak and stale-peak cases, where Diff reports +Inf for both
// deltas.
func ShouldAlert(u types.User, now time.Time, maxPoint types.ForecastPoint, latestPeak *types.AlertRecord) bool {
	heightDiff, timeDiff := Diff(now, maxPoint, latestPeak)
	return !(heightDiff < MinHeightDiff(u, maxPoint) && timeDiff < MinTimeDiff(u, now, maxPoint))
}
