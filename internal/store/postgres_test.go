package store

import (
	"context"
	"testing"
	"time"

	"StockTrend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a disposable PostgreSQL container and opens a backend on it.
func setupPostgres(t *testing.T) *PostgresBackend {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("stocktrend"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	b, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPostgres_MergeFirstWriteWins(t *testing.T) {
	b := setupPostgres(t)
	s := New(b, nil)
	ctx := context.Background()

	orig := rec("ABC", "2025-03-03", 100)
	report, err := s.Merge(ctx, []model.PriceRecord{orig, rec("ABC", "2025-03-04", 101)})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)

	changed := orig
	changed.Close = 1
	report, err = s.Merge(ctx, []model.PriceRecord{changed})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 1, report.SkippedDuplicate)

	got, err := s.Records(ctx, "ABC")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, orig, got[0])

	syms, err := s.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC"}, syms)
}

func TestPostgres_MigrationsAreIdempotent(t *testing.T) {
	b := setupPostgres(t)
	require.NoError(t, b.migrate(context.Background()))
}
