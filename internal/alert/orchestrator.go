package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k-devoe/riverWatch/internal/types"
)

// Orchestrator runs the per-cycle alert pipeline: global max forecast point,
// then per user the base-height filter, active-hours filter, eligibility
// decision, alert persistence, and notification dispatch.
//
// The orchestrator performs sequential I/O against an immutable snapshot of
// the forecast set and scopes writes to one user's own records, so it needs
// no locking; single-invocation-at-a-time discipline is enforced one level up
// by the refresh trigger.
type Orchestrator struct {
	forecasts types.ForecastStore
	users     types.UserDirectory
	alerts    types.AlertStore
	notifier  types.Notifier
	clock     types.Clock
	logger    *slog.Logger
}

// OrchestratorConfig holds the collaborators for creating an Orchestrator.
type OrchestratorConfig struct {
	Forecasts types.ForecastStore
	Users     types.UserDirectory
	Alerts    types.AlertStore
	Notifier  types.Notifier
	Clock     types.Clock
	Logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator with the given collaborators.
// Clock and Logger default to the system clock and slog.Default.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		forecasts: cfg.Forecasts,
		users:     cfg.Users,
		alerts:    cfg.Alerts,
		notifier:  cfg.Notifier,
		clock:     clock,
		logger:    logger,
	}
}

// EvaluateAndNotify evaluates every subscribed user against the current
// maximum forecast point and returns the alert records created this cycle.
//
// Failure isolation follows three tiers:
//   - Storage failures (forecast/user/alert store reads or writes) are fatal
//     to the cycle and propagate.
//   - A user failing boundary validation is skipped and logged; remaining
//     users are still evaluated.
//   - A notification dispatch failure is logged and the loop continues. The
//     alert record is persisted before dispatch, so a failed send still
//     counts as alerted on the next cycle.
func (o *Orchestrator) EvaluateAndNotify(ctx context.Context) ([]types.AlertRecord, error) {
	maxPoint, err := o.forecasts.MaxHeightPoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading max forecast point: %w", err)
	}
	if maxPoint == nil {
		o.logger.InfoContext(ctx, "no forecast data stored, nothing to evaluate")
		return nil, nil
	}

	users, err := o.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var dispatched []types.AlertRecord
	for _, user := range users {
		record, err := o.evaluateUser(ctx, user, *maxPoint)
		if err != nil {
			return dispatched, err
		}
		if record != nil {
			dispatched = append(dispatched, *record)
		}
	}

	o.logger.InfoContext(ctx, "alert evaluation complete",
		"users", len(users),
		"alerts_fired", len(dispatched),
		"max_height_ft", maxPoint.Height,
	)

	return dispatched, nil
}

// evaluateUser runs the filter chain for one user. It returns the created
// alert record when one fired, nil when the user was filtered out, and an
// error only for storage failures.
func (o *Orchestrator) evaluateUser(ctx context.Context, user types.User, maxPoint types.ForecastPoint) (*types.AlertRecord, error) {
	if err := user.Validate(); err != nil {
		o.logger.WarnContext(ctx, "skipping user with invalid configuration",
			"user_id", user.ID,
			"error", err,
		)
		return nil, nil
	}

	now := o.clock.Now()

	if maxPoint.Height < user.HeightBase {
		return nil, nil
	}
	if OutsideActiveHours(user, now) {
		return nil, nil
	}

	latestPeak, err := o.alerts.LatestPeak(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reading latest peak for user %s: %w", user.ID, err)
	}

	if !ShouldAlert(user, now, maxPoint, latestPeak) {
		return nil, nil
	}

	record, err := o.alerts.RecordPeak(ctx, user.ID, maxPoint)
	if err != nil {
		return nil, fmt.Errorf("recording peak for user %s: %w", user.ID, err)
	}

	o.logger.InfoContext(ctx, "alert fired",
		"user_id", user.ID,
		"height_ft", maxPoint.Height,
		"peak_at", maxPoint.Timestamp,
	)

	if err := o.notifier.Send(ctx, user, []types.AlertRecord{*record}); err != nil {
		// The record is already persisted; dispatch retries belong to the
		// notifier collaborator, not the core.
		o.logger.ErrorContext(ctx, "notification dispatch failed",
			"user_id", user.ID,
			"error", err,
		)
	}

	return record, nil
}
