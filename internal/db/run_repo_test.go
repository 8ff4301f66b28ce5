package db

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_RecordRun(t *testing.T) {
	dbm := new(mockDBTX)
	repo := NewRunRepository(dbm)

	ranAt := time.Date(2022, 12, 18, 20, 0, 0, 0, time.UTC)
	page := []byte("<html><body>gauge page</body></html>")

	var inserted []any
	dbm.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]any)
		}).
		Return(pgconn.CommandTag{}, nil)

	err := repo.RecordRun(context.Background(), ranAt, page)
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, ranAt, inserted[0])

	// The stored page must round-trip through gzip.
	zr, err := gzip.NewReader(bytes.NewReader(inserted[1].([]byte)))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, page, decompressed)

	dbm.AssertExpectations(t)
}

func TestRunRepository_RecordRun_NoPage(t *testing.T) {
	dbm := new(mockDBTX)
	repo := NewRunRepository(dbm)

	var inserted []any
	dbm.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]any)
		}).
		Return(pgconn.CommandTag{}, nil)

	err := repo.RecordRun(context.Background(), time.Now().UTC(), nil)
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Nil(t, inserted[1])
}
