//go:build integration

package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "could not connect to docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=checkout",
			"POSTGRES_PASSWORD=checkout",
			"POSTGRES_DB=checkout",
		},
	})
	require.NoError(t, err, "could not start postgres")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge postgres: %v", err)
		}
	})

	dsn := fmt.Sprintf("postgres://checkout:checkout@%s/checkout?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var db *pgxpool.Pool
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		var err error
		db, err = pgxpool.New(context.Background(), dsn)
		if err != nil {
			return err
		}
		return db.Ping(context.Background())
	})
	require.NoError(t, err, "postgres never became ready")
	t.Cleanup(db.Close)

	return db
}

func TestPostgresJournal(t *testing.T) {
	ctx := context.Background()
	j := NewPostgresJournal(startPostgres(t))
	require.NoError(t, j.Migrate(ctx))
	// Migrate is idempotent
	require.NoError(t, j.Migrate(ctx))

	a := newAttempt("k1")
	require.NoError(t, j.Create(ctx, a))
	assert.False(t, a.CreatedAt.IsZero())
	assert.ErrorIs(t, j.Create(ctx, newAttempt("k1")), ErrAlreadyExists)

	a.Status = StatusInitiated
	a.PaymentID = "PAY1"
	require.NoError(t, j.Update(ctx, a))

	got, err := j.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, got.Status)
	assert.Equal(t, "PAY1", got.PaymentID)
	assert.Equal(t, 5400.0, got.Amount)

	open, err := j.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	a.Status = StatusCompleted
	a.TransactionID = "TXN1"
	require.NoError(t, j.Update(ctx, a))

	open, err = j.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = j.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, j.Update(ctx, newAttempt("missing")), ErrNotFound)
}
