package cache

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Deletion is one confirmed delete and how the server answered it.
type Deletion struct {
	ID        string
	Kind      string
	ItemID    string
	Label     string
	Actor     string
	OK        bool
	Error     string
	CreatedAt time.Time
}

// RecordDeletion appends d to the history. ID and CreatedAt are filled in
// when empty.
func (d *DB) RecordDeletion(del Deletion) error {
	if del.ID == "" {
		del.ID = uuid.NewString()
	}
	if del.CreatedAt.IsZero() {
		del.CreatedAt = time.Now()
	}
	var ok int
	if del.OK {
		ok = 1
	}
	_, err := d.db.Exec(`INSERT INTO deletions
		(id, kind, item_id, label, actor, ok, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		del.ID, del.Kind, del.ItemID, nullStr(del.Label), nullStr(del.Actor),
		ok, nullStr(del.Error), del.CreatedAt.UnixMilli())
	return err
}

// RecentDeletions returns up to limit entries, newest first.
func (d *DB) RecentDeletions(limit int) ([]Deletion, error) {
	rows, err := d.db.Query(`SELECT id, kind, item_id, label, actor, ok, error, created_at
		FROM deletions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Deletion
	for rows.Next() {
		var del Deletion
		var label, actor, errText sql.NullString
		var ok int
		var createdAt int64
		if err := rows.Scan(&del.ID, &del.Kind, &del.ItemID, &label, &actor, &ok, &errText, &createdAt); err != nil {
			return nil, err
		}
		del.Label = label.String
		del.Actor = actor.String
		del.Error = errText.String
		del.OK = ok != 0
		del.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, del)
	}
	return result, rows.Err()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
