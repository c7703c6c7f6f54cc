package app_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/app"
	"github.com/niklvrr/ReviewerRotation/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestPostgres те же сценарии поверх настоящей базы в контейнере
func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container is skipped in short mode")
	}

	ctx := context.Background()
	connStr, cleanup, err := testutil.SetupPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	c := newClient(t, app.PostgresRepositories(pool, zap.NewNop()))

	t.Run("rotation", func(t *testing.T) {
		runRotationFlow(t, c.with(t))
	})
	t.Run("tags and active assignments", func(t *testing.T) {
		runTagAndActiveFlow(t, c.with(t))
	})
	t.Run("errors", func(t *testing.T) {
		runErrorFlow(t, c.with(t))
	})
	t.Run("concurrent assignments", func(t *testing.T) {
		runConcurrentAssignments(t, c.with(t))
	})
}
