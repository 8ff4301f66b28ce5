package db

import (
	"context"
	"log/slog"

	"github.com/k-devoe/riverWatch/internal/types"
)

// UserRepository provides data access for the users table. It implements
// types.UserDirectory.
type UserRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewUserRepository creates a UserRepository backed by the given connection.
func NewUserRepository(db DBTX, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, phone_number, timezone,
	start_hour, end_hour,
	height_base, height_diff_min, height_diff_start, height_slope,
	time_diff_min, time_slope`

// ListUsers returns every subscriber whose configuration validates. Rows that
// fail validation are logged and skipped so one bad record cannot stall the
// whole alert batch.
func (r *UserRepository) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "listing users", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(
			&u.ID,
			&u.PhoneNumber,
			&u.TimeZone,
			&u.StartHour,
			&u.EndHour,
			&u.HeightBase,
			&u.HeightDiffMin,
			&u.HeightDiffStart,
			&u.HeightSlope,
			&u.TimeDiffMin,
			&u.TimeSlope,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "scanning user row", err)
		}
		if err := u.Validate(); err != nil {
			r.logger.WarnContext(ctx, "skipping user with invalid configuration",
				"user_id", u.ID,
				"error", err,
			)
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "iterating user rows", err)
	}
	return users, nil
}
