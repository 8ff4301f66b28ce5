package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/k-devoe/riverWatch/internal/types"
)

// AlertRepository provides data access for the alerts table. It implements
// types.AlertStore.
type AlertRepository struct {
	db    DBTX
	clock types.Clock
}

// NewAlertRepository creates an AlertRepository backed by the given connection.
func NewAlertRepository(db DBTX, clock types.Clock) *AlertRepository {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &AlertRepository{db: db, clock: clock}
}

// LatestPeak returns the user's highest previously alerted peak, breaking
// height ties toward the oldest record. Returns (nil, nil) when the user has
// never been alerted.
func (r *AlertRepository) LatestPeak(ctx context.Context, userID string) (*types.AlertRecord, error) {
	var rec types.AlertRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, observed_at, height_ft, kind, created_at
		FROM alerts
		WHERE user_id = $1 AND kind = $2
		ORDER BY height_ft DESC, created_at ASC
		LIMIT 1`, userID, types.AlertKindPeak).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Timestamp,
		&rec.Height,
		&rec.Kind,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "querying latest peak alert", err)
	}
	return &rec, nil
}

// RecordPeak persists a new peak alert for the user and returns the record.
func (r *AlertRepository) RecordPeak(ctx context.Context, userID string, point types.ForecastPoint) (*types.AlertRecord, error) {
	rec := types.AlertRecord{
		ID:        "alr_" + uuid.NewString(),
		UserID:    userID,
		Timestamp: point.Timestamp,
		Height:    point.Height,
		Kind:      types.AlertKindPeak,
		CreatedAt: r.clock.Now(),
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO alerts (id, user_id, observed_at, height_ft, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.UserID, rec.Timestamp, rec.Height, rec.Kind, rec.CreatedAt,
	); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "inserting peak alert", err)
	}
	return &rec, nil
}
