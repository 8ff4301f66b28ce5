// Package scheduler coordinates the refresh cycle: fetch the gauge page,
// swap the stored forecast, and run the alert evaluation.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/k-devoe/riverWatch/internal/types"
)

// Evaluator is the slice of the alert orchestrator the refresher needs.
type Evaluator interface {
	EvaluateAndNotify(ctx context.Context) ([]types.AlertRecord, error)
}

// RunRecorder archives refresh runs for later replay.
type RunRecorder interface {
	RecordRun(ctx context.Context, ranAt time.Time, rawPage []byte) error
}

// RefreshSummary reports the outcome of one refresh cycle.
type RefreshSummary struct {
	Points           int       `json:"points"`
	AlertsDispatched int       `json:"alerts_dispatched"`
	RanAt            time.Time `json:"ran_at"`
}

// Refresher drives the fetch-store-evaluate cycle. Concurrent triggers
// coalesce onto a single in-flight cycle; both callers receive its result.
type Refresher struct {
	source    types.GaugeSource
	forecasts types.ForecastStore
	evaluator Evaluator
	runs      RunRecorder
	clock     types.Clock
	logger    *slog.Logger

	group singleflight.Group
}

// RefresherConfig holds the dependencies for a Refresher. Runs may be nil to
// disable run archiving.
type RefresherConfig struct {
	Source    types.GaugeSource
	Forecasts types.ForecastStore
	Evaluator Evaluator
	Runs      RunRecorder
	Clock     types.Clock
	Logger    *slog.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		source:    cfg.Source,
		forecasts: cfg.Forecasts,
		evaluator: cfg.Evaluator,
		runs:      cfg.Runs,
		clock:     clock,
		logger:    logger,
	}
}

// Refresh runs one cycle. A fetch or parse failure aborts before any stored
// state is touched, so the previous forecast stays live. Overlapping calls
// share the in-flight cycle instead of racing on the forecast swap.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshSummary, error) {
	result, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RefreshSummary), nil
}

func (r *Refresher) refresh(ctx context.Context) (*RefreshSummary, error) {
	ranAt := r.clock.Now()

	snapshot, err := r.source.Fetch(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "gauge fetch failed, keeping previous forecast", "error", err)
		return nil, err
	}

	if err := r.forecasts.ReplaceAll(ctx, snapshot.Points); err != nil {
		return nil, err
	}

	// Run archiving is best-effort; a failed archive must not block alerts.
	if r.runs != nil {
		if err := r.runs.RecordRun(ctx, ranAt, snapshot.RawPage); err != nil {
			r.logger.ErrorContext(ctx, "failed to archive refresh run", "error", err)
		}
	}

	dispatched, err := r.evaluator.EvaluateAndNotify(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{
		Points:           len(snapshot.Points),
		AlertsDispatched: len(dispatched),
		RanAt:            ranAt,
	}

	r.logger.InfoContext(ctx, "refresh cycle complete",
		"points", summary.Points,
		"alerts_dispatched", summary.AlertsDispatched,
	)
	return summary, nil
}
