// Package repo contains all database access logic for the bin store.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here: only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BinRepo defines the persistence operations for shared trip bins.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type BinRepo interface {
	// Create inserts a new bin holding doc and returns the persisted record
	// (with DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, doc domain.Document) (domain.Bin, error)

	// GetByID retrieves a single bin by its UUID primary key.
	// Returns domain.ErrNotFound if no bin with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Bin, error)

	// Update overwrites the record of an existing bin and returns the updated
	// row. There is no version check. Returns domain.ErrNotFound if no bin
	// with that ID exists.
	Update(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error)

	// Delete removes a bin by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgBinRepo is the Postgres implementation of BinRepo.
type pgBinRepo struct {
	db db
}

// NewBinRepo constructs a BinRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBinRepo(db db) BinRepo {
	return &pgBinRepo{db: db}
}

// Create inserts a new bin row and returns the full persisted record.
func (r *pgBinRepo) Create(ctx context.Context, doc domain.Document) (domain.Bin, error) {
	const q = `
		INSERT INTO bins (record)
		VALUES (@record)
		RETURNING id, record, created_at, updated_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"record": doc}) // encoded as jsonb
	result, err := scanBin(row)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("repo.BinRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a bin by primary key.
func (r *pgBinRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Bin, error) {
	const q = `
		SELECT id, record, created_at, updated_at
		FROM bins
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBin(row)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("repo.BinRepo.GetByID: %w", err)
	}
	return result, nil
}

// Update replaces the stored record and bumps updated_at.
func (r *pgBinRepo) Update(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error) {
	const q = `
		UPDATE bins
		SET record     = @record,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, record, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":     id,
		"record": doc,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBin(row)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("repo.BinRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a bin by primary key.
func (r *pgBinRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM bins WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BinRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BinRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBin maps a single database row into a domain.Bin. The jsonb record is
// decoded by pgx straight into the document and then normalized so absent
// collections come back empty.
func scanBin(s scanner) (domain.Bin, error) {
	var (
		b  domain.Bin
		id pgtype.UUID
	)

	err := s.Scan(&id, &b.Record, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bin{}, domain.ErrNotFound
		}
		return domain.Bin{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.Record.Normalize()
	return b, nil
}
