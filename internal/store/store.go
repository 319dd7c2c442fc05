package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version. The index is derived
// data that "solir build" can always recreate, so a database carrying any
// other version is refused instead of migrated.
const schemaVersion = 1

// ErrSchemaVersion is returned by Open for an index written with a
// different schema.
var ErrSchemaVersion = errors.New("unsupported index schema version")

// dsnParams are applied by the driver to every connection: WAL so reads
// proceed during a write, foreign keys for the per-file cascades.
const dsnParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"

// Store is the SQLite contract index.
type Store struct {
	db *sql.DB
}

// Open opens the index at path, creating it if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// initSchema creates a fresh index, or checks that an existing one has the
// current layout.
func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch version {
	case schemaVersion:
		return nil
	case 0:
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.Exec(schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("stamp schema version: %w", err)
		}
		return tx.Commit()
	default:
		return fmt.Errorf("%w: %d (want %d); delete the index and run solir build", ErrSchemaVersion, version, schemaVersion)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query runs an ad hoc read. Callers close the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// pragma reads one pragma value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
