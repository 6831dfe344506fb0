package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// register sqlite driver
	_ "modernc.org/sqlite"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

var _ document.Store = (*Store)(nil)

// Store implements document.Store backed by a SQLite row per document name.
type Store struct {
	db   *sql.DB
	name string
}

// New opens (or creates) a SQLite database at path holding the document called name.
func New(path, name string) (*Store, error) {
	if name == "" {
		return nil, errors.New("document name required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// one writer at a time keeps SQLITE_BUSY out of the CAS path
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db, name: name}
	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	version INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

// Close releases underlying database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored document and its version.
func (s *Store) Load(ctx context.Context) (domain.Document, document.Version, error) {
	var (
		body    string
		version int64
	)

	err := s.db.QueryRowContext(ctx, `SELECT body, version FROM documents WHERE name = ?`, s.name).Scan(&body, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, 0, nil
		}

		return domain.Document{}, 0, fmt.Errorf("select document: %w", err)
	}

	doc, err := document.Unmarshal([]byte(body))
	if err != nil {
		return domain.Document{}, 0, err
	}

	return doc, document.Version(version), nil
}

// Save writes doc when the stored version equals expected.
func (s *Store) Save(ctx context.Context, doc domain.Document, expected document.Version) (document.Version, error) {
	body, err := document.Marshal(doc)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()

	var res sql.Result
	if expected == 0 {
		res, err = s.db.ExecContext(ctx, `
INSERT INTO documents(name, body, version, updated_at)
VALUES(?, ?, 1, ?)
ON CONFLICT(name) DO NOTHING`, s.name, string(body), now)
	} else {
		res, err = s.db.ExecContext(ctx, `
UPDATE documents
SET body = ?, version = version + 1, updated_at = ?
WHERE name = ? AND version = ?`, string(body), now, s.name, int64(expected))
	}

	if err != nil {
		return 0, fmt.Errorf("write document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return 0, document.ErrVersionConflict
	}

	return expected + 1, nil
}
