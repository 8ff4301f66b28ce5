package db

import (
	"bytes"
	"context"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/k-devoe/riverWatch/internal/types"
)

// RunRepository records refresh runs together with a gzipped copy of the raw
// gauge page, so a parse regression can be replayed against the exact bytes
// that triggered it.
type RunRepository struct {
	db DBTX
}

// NewRunRepository creates a RunRepository backed by the given connection.
func NewRunRepository(db DBTX) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun stores one refresh run. rawPage may be nil when the fetch failed
// before a page was retrieved.
func (r *RunRepository) RecordRun(ctx context.Context, ranAt time.Time, rawPage []byte) error {
	var compressed []byte
	if len(rawPage) > 0 {
		var err error
		compressed, err = gzipBytes(rawPage)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected, "compressing gauge page", err)
		}
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO refresh_runs (ran_at, raw_page_gz)
		VALUES ($1, $2)`, ranAt, compressed,
	); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "inserting refresh run", err)
	}
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
