package types

import (
	"context"
	"time"
)

// Clock abstracts time.Now for deterministic testing of time-dependent logic.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock, in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// GaugeSource yields the current forecast table from the upstream gauge page.
// A fetch or parse failure aborts the refresh cycle before any stored state
// is mutated.
type GaugeSource interface {
	Fetch(ctx context.Context) (*GaugeSnapshot, error)
}

// ForecastStore holds the single current forecast data set. ReplaceAll
// atomically discards the previous full set; at most one current set exists
// at a time.
type ForecastStore interface {
	// ReplaceAll discards the stored forecast set and stores points in its
	// place, in one transaction.
	ReplaceAll(ctx context.Context, points []ForecastPoint) error

	// MaxHeightPoint returns the stored point with the greatest height, or
	// nil when no forecast set is stored. Ties resolve to the first point in
	// input order.
	MaxHeightPoint(ctx context.Context) (*ForecastPoint, error)
}

// UserDirectory lists the subscribed users. Read-only to the core; rows that
// fail boundary validation are skipped, not fatal.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]User, error)
}

// AlertStore reads and appends per-user alert records.
type AlertStore interface {
	// LatestPeak returns the user's maximum-height peak record, or nil when
	// the user has never been alerted.
	LatestPeak(ctx context.Context, userID string) (*AlertRecord, error)

	// RecordPeak appends a peak alert record for the user at the given
	// forecast point.
	RecordPeak(ctx context.Context, userID string, point ForecastPoint) (*AlertRecord, error)
}

// Notifier dispatches alert notifications to a user. Dispatch failures are
// isolated per user; the alert record is persisted before dispatch is
// attempted, so a failed send is at-least-attempted-once, never re-fired.
type Notifier interface {
	Send(ctx context.Context, user User, alerts []AlertRecord) error
}
