package cache

import (
	"database/sql"
	"errors"
)

// GetSession returns the stored value for key. ok is false on a miss.
func (d *DB) GetSession(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// PutSession stores value under key.
func (d *DB) PutSession(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, key, value)
	return err
}

// DeleteSession removes key.
func (d *DB) DeleteSession(key string) error {
	_, err := d.db.Exec(`DELETE FROM session WHERE key = ?`, key)
	return err
}
