package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/migrations"
	"github.com/pkordes/travel-planner/testutil"
)

// TestMigrations resets the schema, applies every migration, checks the bins
// table and its constraints, then rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)

	// Other packages' TestMain may have migrated the shared database already.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	require.NotEmpty(t, results)

	assert.True(t, tableExists(t, db, "bins"))

	inserts := map[string]struct {
		record  string
		wantErr bool
	}{
		"object":       {record: `{"tripTitle":"x"}`},
		"empty object": {record: `{}`},
		"array":        {record: `[]`, wantErr: true},
		"string":       {record: `"trip"`, wantErr: true},
		"null literal": {record: `null`, wantErr: true},
	}
	for name, tc := range inserts {
		t.Run(name, func(t *testing.T) {
			err := insertRecord(t, db, tc.record)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.False(t, tableExists(t, db, "bins"))
}

// insertRecord inserts one bin inside a transaction that is always rolled
// back, and returns the insert error.
func insertRecord(t *testing.T, db *sql.DB, record string) error {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	var id string
	return tx.QueryRowContext(ctx, `INSERT INTO bins (record) VALUES ($1::jsonb) RETURNING id`, record).Scan(&id)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	var exists bool
	err := db.QueryRowContext(context.Background(),
		`SELECT to_regclass('public.' || $1) IS NOT NULL`, table).Scan(&exists)
	require.NoError(t, err)
	return exists
}
