// Package testutil provides shared helpers for the bin store's integration
// tests. Every helper skips the calling test when TEST_DATABASE_URL is unset,
// so `go test ./...` passes on a machine without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/travel-planner/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool returns a pgx pool on the integration database, closed when the
// test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	return pool
}

// NewTx begins a transaction on a fresh pool and rolls it back when the test
// ends. Repos built on it leave no rows behind.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql handle on the integration database for
// goose, which does not speak pgx natively.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustMigrate brings the bins schema at url up to date. It panics on failure
// and is meant for TestMain, where there is no *testing.T.
func MustMigrate(url string) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if _, err := migrations.Up(ctx, db); err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNEnv)
	if v == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return v
}
