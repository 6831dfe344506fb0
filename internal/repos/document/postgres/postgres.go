package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/infra/pgutils"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

var _ document.Store = (*documentRepo)(nil)

// documentRepo keeps one row of the documents table (see cmd/migrator).
type documentRepo struct {
	db   *sql.DB
	name string
}

func New(db *sql.DB, name string) *documentRepo {
	return &documentRepo{db: db, name: name}
}

func (r *documentRepo) Load(ctx context.Context) (domain.Document, document.Version, error) {
	var (
		body    []byte
		version int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT body::text, version
		FROM documents
		WHERE name = $1
	`, r.name).Scan(&body, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, 0, nil
		}

		return domain.Document{}, 0, fmt.Errorf("select document: %w", err)
	}

	doc, err := document.Unmarshal(body)
	if err != nil {
		return domain.Document{}, 0, err
	}

	return doc, document.Version(version), nil
}

// Save locks the row, checks its version and replaces the body in one
// transaction.
func (r *documentRepo) Save(ctx context.Context, doc domain.Document, expected document.Version) (document.Version, error) {
	body, err := document.Marshal(doc)
	if err != nil {
		return 0, err
	}

	next := expected + 1

	err = pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := lockVersion(ctx, tx, r.name)
		if err != nil {
			return err
		}

		if current != expected {
			return document.ErrVersionConflict
		}

		if expected == 0 {
			return insertDocument(ctx, tx, r.name, body)
		}

		return updateDocument(ctx, tx, r.name, body, next)
	})
	if err != nil {
		if errors.Is(err, document.ErrVersionConflict) {
			return 0, document.ErrVersionConflict
		}

		return 0, fmt.Errorf("save document: %w", err)
	}

	return next, nil
}

func (r *documentRepo) Close() error {
	return r.db.Close()
}

func lockVersion(ctx context.Context, tx *sql.Tx, name string) (document.Version, error) {
	var version int64

	err := tx.QueryRowContext(ctx, `
		SELECT version
		FROM documents
		WHERE name = $1
		FOR UPDATE
	`, name).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("lock/get version: %w", err)
	}

	return document.Version(version), nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, name string, body []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (name, body, version)
		VALUES ($1, $2::jsonb, 1)
	`, name, string(body))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return document.ErrVersionConflict
		}

		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

func updateDocument(ctx context.Context, tx *sql.Tx, name string, body []byte, version document.Version) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET body = $2::jsonb, version = $3, updated_at = NOW()
		WHERE name = $1
	`, name, string(body), int64(version))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}
