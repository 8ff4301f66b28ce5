// Package alert implements the alert-eligibility evaluator: the pure
// functions deciding whether a newly observed forecast peak should fire an
// alert for a user, and the orchestrator that runs the per-user pipeline each
// refresh cycle. Everything here is deterministic given its inputs; all I/O
// lives behind the collaborator interfaces in internal/types.
package alert

import (
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

// OutsideActiveHours reports whether instant falls outside the user's
// configured local active-hours window.
//
// The instant is converted to the user's local time and reduced to a
// fractional hour (hour + minute/60; sub-minute precision is ignored).
// A window with StartHour <= EndHour covers [start, end] within one day; a
// window with StartHour > EndHour wraps past midnight and covers everything
// at or after the start OR at or before the end. Boundary values are inside
// the window in both branches.
func OutsideActiveHours(u types.User, instant time.Time) bool {
	local := instant.In(u.Location())
	localHour := float64(local.Hour()) + float64(local.Minute())/60

	if u.StartHour <= u.EndHour {
		return localHour < u.StartHour || localHour > u.EndHour
	}
	// Wraparound window, e.g. 20 -> 5.
	return localHour < u.StartHour && localHour > u.EndHour
}
