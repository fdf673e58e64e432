package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

// Get returns the value stored under key, and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "querying key %s", key)
	}
	return value, true, nil
}
