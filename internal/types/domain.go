// Package types defines the core domain records, error types, and collaborator
// interfaces shared across the riverWatch service. External data (gauge rows,
// user directory rows) is validated at the boundary where it enters the core;
// the pure decision functions in internal/alert operate on already-validated
// values.
package types

import (
	"fmt"
	"time"
)

// AlertKind categorizes an alert record. Only peak alerts exist today; the
// column is typed so flood-stage or clearance kinds can be added without a
// schema change.
type AlertKind string

const (
	// AlertKindPeak marks an alert fired for a forecast flow peak.
	AlertKindPeak AlertKind = "peak"
)

// Label returns the human-readable form of the kind used in SMS bodies.
func (k AlertKind) Label() string {
	switch k {
	case AlertKindPeak:
		return "Peak"
	default:
		return string(k)
	}
}

// ForecastPoint is a single predicted river stage: a UTC instant and the
// forecast gauge height in feet. Points are immutable once parsed and the
// whole set is replaced wholesale on each refresh cycle.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Height    float64   `json:"height_ft"`
}

// GaugeSnapshot is the result of one gauge page fetch: the parsed prediction
// table plus the raw page bytes, retained for the refresh-run log.
type GaugeSnapshot struct {
	Points    []ForecastPoint
	RawPage   []byte
	FetchedAt time.Time
}

// User is a subscriber record from the user directory. It is read-only to the
// core. StartHour/EndHour are fractional local hours (e.g. 5.5 = 05:30); a
// StartHour greater than EndHour describes a window that wraps past midnight.
//
// The threshold fields drive the decaying-sensitivity eligibility curve:
// HeightBase is the minimum height of interest, and the slope/start/min
// fields shape how the height and time thresholds tighten as the forecast
// rises above the base.
type User struct {
	ID          string  `json:"id"`
	PhoneNumber string  `json:"phone_number"`
	TimeZone    string  `json:"time_zone"`
	StartHour   float64 `json:"start_hour"`
	EndHour     float64 `json:"end_hour"`

	HeightBase      float64 `json:"height_base"`
	HeightDiffMin   float64 `json:"height_diff_min"`
	HeightDiffStart float64 `json:"height_diff_start"`
	HeightSlope     float64 `json:"height_slope"`
	TimeDiffMin     float64 `json:"time_diff_min"`
	TimeSlope       float64 `json:"time_slope"`
}

// Validate checks the fields the evaluator depends on. It is called at the
// user-directory boundary; a user failing validation is skipped for the cycle
// rather than failing the batch.
func (u *User) Validate() error {
	if u.ID == "" {
		return NewAppError(ErrCodeValidationMissingField, "user id is required", nil)
	}
	if u.PhoneNumber == "" {
		return NewAppError(ErrCodeValidationMissingField,
			fmt.Sprintf("user %s has no phone number", u.ID), nil)
	}
	if _, err := time.LoadLocation(u.TimeZone); err != nil {
		return NewAppError(ErrCodeValidationInvalidTimezone,
			fmt.Sprintf("user %s has invalid time zone %q", u.ID, u.TimeZone), err)
	}
	if u.StartHour < 0 || u.StartHour >= 24 || u.EndHour < 0 || u.EndHour >= 24 {
		return NewAppError(ErrCodeValidationInvalidHours,
			fmt.Sprintf("user %s active hours out of range: [%v, %v)", u.ID, u.StartHour, u.EndHour), nil)
	}
	return nil
}

// Location resolves the user's time zone, falling back to UTC when the
// identifier does not load. Boundary validation makes the fallback
// unreachable for users that entered through the directory.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AlertRecord is the append-only record of a fired alert. The most recent
// peak for a user is derived by scanning the user's peak records and taking
// the maximum height, not the latest timestamp.
type AlertRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Height    float64   `json:"height_ft"`
	Kind      AlertKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
