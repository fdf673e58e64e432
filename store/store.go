package store

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/malonaz/qachat/internal/file"
)

// Store implements a SQLite key/value store that survives process restarts.
type Store struct {
	db *sql.DB
}

// New store.
func New(dbPath string) (*Store, error) {
	dbPath, err := file.ExpandPath(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	if err := file.CreateParentDirectory(dbPath); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// A single connection serializes writers, sqlite would otherwise return SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Create kv table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			update_timestamp INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating kv table")
	}

	return &Store{
		db: db,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
