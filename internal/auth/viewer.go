package auth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Viewer is the signed-in user as far as the dashboard cares.
type Viewer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// wireUser covers both user documents the backends return: Mongo style
// ({"_id", "isAdmin"}, optionally nested under "rest") and SQL style
// ({"id", "is_admin"}).
type wireUser struct {
	Rest         *wireUser       `json:"rest"`
	User         *wireUser       `json:"user"`
	MongoID      string          `json:"_id"`
	ID           json.RawMessage `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	IsAdmin      *bool           `json:"isAdmin"`
	IsAdminSnake *bool           `json:"is_admin"`
}

// DecodeViewer reads a user document in any of the supported shapes.
func DecodeViewer(data []byte) (Viewer, error) {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return Viewer{}, fmt.Errorf("decoding user: %w", err)
	}
	for w.Rest != nil || w.User != nil {
		if w.Rest != nil {
			w = *w.Rest
		} else {
			w = *w.User
		}
	}

	v := Viewer{
		ID:       w.MongoID,
		Username: w.Username,
		Email:    w.Email,
	}
	if v.ID == "" && len(w.ID) > 0 {
		v.ID = rawID(w.ID)
	}
	switch {
	case w.IsAdmin != nil:
		v.IsAdmin = *w.IsAdmin
	case w.IsAdminSnake != nil:
		v.IsAdmin = *w.IsAdminSnake
	}

	if v.ID == "" {
		return Viewer{}, errors.New("user document has no id")
	}
	return v, nil
}

// rawID accepts a JSON string or number.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
