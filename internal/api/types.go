package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Comment is a row of the comments panel. The post and author references
// arrive either populated or as bare ids.
type Comment struct {
	ID            string    `json:"_id"`
	Content       string    `json:"content"`
	NumberOfLikes int       `json:"numberOfLikes"`
	Post          Ref       `json:"postId"`
	User          Ref       `json:"userId"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// Ref is a reference to another document.
type Ref struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Username string `json:"username"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Ref{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding reference: %w", err)
	}
	*r = Ref(p)
	return nil
}

// Post is a row of the posts panel.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// CommentKey identifies a comment for reconciliation.
func CommentKey(c Comment) string { return c.ID }

// PostKey identifies a post for reconciliation.
func PostKey(p Post) int { return p.ID }

// Timestamp accepts the layouts both backends emit, with or without a zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
