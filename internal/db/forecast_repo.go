package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/k-devoe/riverWatch/internal/types"
)

// ForecastRepository provides data access for the forecast_points table.
// The table always holds exactly one forecast set: the latest successfully
// parsed gauge table. It implements types.ForecastStore.
type ForecastRepository struct {
	db TxBeginner
}

// NewForecastRepository creates a ForecastRepository backed by the given pool.
func NewForecastRepository(db TxBeginner) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// ReplaceAll atomically swaps the stored forecast set for the given points.
// Readers never observe a partially replaced set; on any failure the previous
// set remains intact.
func (r *ForecastRepository) ReplaceAll(ctx context.Context, points []types.ForecastPoint) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "beginning forecast swap", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM forecast_points`); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "clearing forecast points", err)
	}

	rows := make([][]any, 0, len(points))
	for _, p := range points {
		rows = append(rows, []any{p.Timestamp, p.Height})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"forecast_points"},
		[]string{"observed_at", "height_ft"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "inserting forecast points", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "committing forecast swap", err)
	}
	return nil
}

// MaxHeightPoint returns the stored forecast point with the greatest height.
// Ties resolve to the earliest-inserted row, i.e. the first row of the parsed
// table. Returns (nil, nil) when no forecast is stored.
func (r *ForecastRepository) MaxHeightPoint(ctx context.Context) (*types.ForecastPoint, error) {
	var p types.ForecastPoint
	err := r.db.QueryRow(ctx, `
		SELECT observed_at, height_ft
		FROM forecast_points
		ORDER BY height_ft DESC, id ASC
		LIMIT 1`).Scan(&p.Timestamp, &p.Height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "querying max forecast point", err)
	}
	return &p, nil
}

// List returns all stored forecast points in table order.
func (r *ForecastRepository) List(ctx context.Context) ([]types.ForecastPoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT observed_at, height_ft
		FROM forecast_points
		ORDER BY id ASC`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "listing forecast points", err)
	}
	defer rows.Close()

	var points []types.ForecastPoint
	for rows.Next() {
		var p types.ForecastPoint
		if err := rows.Scan(&p.Timestamp, &p.Height); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "scanning forecast point", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "iterating forecast points", err)
	}
	return points, nil
}
