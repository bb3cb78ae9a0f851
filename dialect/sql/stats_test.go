package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/archgen/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var (
		buf  bytes.Buffer
		slow []string
	)
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewStatsDriver(NewDriver(dialect.Postgres, db),
		WithLogger(logger),
		WithSlowThreshold(time.Millisecond),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT pg_sleep").
		WillDelayFor(20 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))

	ctx := context.Background()
	rows, err := drv.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	rows, err = drv.QueryContext(ctx, "SELECT pg_sleep(0.02)")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	_, err = drv.QueryContext(ctx, "SELECT broken")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	stats := drv.QueryStats().Stats()
	assert.Equal(t, int64(3), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.Errors)
	assert.GreaterOrEqual(t, stats.SlowQueries, int64(1))
	assert.Contains(t, slow, "SELECT pg_sleep(0.02)")
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "catalog query")
	assert.Contains(t, stats.String(), "queries=3")
}

func TestStatsSnapshotAverage(t *testing.T) {
	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 4, TotalDuration: 8 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
}
