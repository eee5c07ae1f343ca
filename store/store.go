// Package store is the versioned SQLite representation of dictionary
// hierarchies. One table per level, one per adjacent-level relationship,
// every row scoped by version id; the same vendor code value recurs across
// versions and is never joined cross-version.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
)

// Compile-time check to ensure Store implements TermStore interface
var _ interfaces.TermStore = (*Store)(nil)

// Store wraps the SQLite database handle and owns every query against it.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. The pool is capped at a single connection: modernc's SQLite is
// single-writer, and one shared connection sidesteps SQLITE_BUSY without a
// retry loop while keeping reads and writes strictly serialized.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// versionFor resolves the version a read should run against: the explicit
// override when non-zero, otherwise the active version of the dictionary.
// Returns ErrNoActiveVersion when neither exists.
func (s *Store) versionFor(d entities.Dictionary, override int64) (int64, error) {
	if override != 0 {
		return override, nil
	}
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM dictionary_versions WHERE dictionary = ? AND active = 1`, string(d),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNoActiveVersion
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve active version: %w", err)
	}
	return id, nil
}
