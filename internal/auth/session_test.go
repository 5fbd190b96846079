package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/dashpanel/internal/config"
)

type memStore map[string]string

func (m memStore) GetSession(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memStore) PutSession(key, value string) error {
	m[key] = value
	return nil
}

func (m memStore) DeleteSession(key string) error {
	delete(m, key)
	return nil
}

func TestDecodeViewer(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Viewer
	}{
		{
			name: "nested rest",
			body: `{"rest":{"_id":"65a1","username":"ana","email":"a@x","isAdmin":true}}`,
			want: Viewer{ID: "65a1", Username: "ana", Email: "a@x", IsAdmin: true},
		},
		{
			name: "numeric id snake case",
			body: `{"id":42,"username":"bo","is_admin":true}`,
			want: Viewer{ID: "42", Username: "bo", IsAdmin: true},
		},
		{
			name: "string id not admin",
			body: `{"user":{"id":"u-7","username":"cy","is_admin":false}}`,
			want: Viewer{ID: "u-7", Username: "cy"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeViewer([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeViewer([]byte(`{"username":"nobody"}`))
	assert.Error(t, err)
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"success":false,"message":"Invalid password"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-1", Path: "/", HttpOnly: true})
		fmt.Fprint(w, `{"rest":{"_id":"u1","username":"ana","isAdmin":true}}`)
	})
	mux.HandleFunc("/api/comment/getcomments", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("access_token")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"cookie":%q}`, c.Value)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sessionConfig(base string) config.Config {
	cfg := config.Default()
	cfg.SigninURL = base + "/api/auth/signin"
	cfg.Comments.ListURL = base + "/api/comment/getcomments"
	cfg.Posts.ListURL = base + "/api/post/getposts"
	return cfg
}

func TestLogin_SaveLoadLogout(t *testing.T) {
	srv := newAuthServer(t)
	cfg := sessionConfig(srv.URL)
	store := memStore{}

	s := NewSession(cfg)
	_, ok := s.Viewer()
	assert.False(t, ok)

	v, err := s.Login(context.Background(), "a@x", "secret")
	require.NoError(t, err)
	assert.Equal(t, Viewer{ID: "u1", Username: "ana", IsAdmin: true}, v)
	require.NoError(t, s.Save(store))
	require.Contains(t, store, sessionKey)

	restored := NewSession(cfg)
	require.True(t, restored.Load(store))
	got, ok := restored.Viewer()
	require.True(t, ok)
	assert.Equal(t, v, got)

	resp, err := restored.HTTPClient().Get(srv.URL + "/api/comment/getcomments")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, restored.Logout(store))
	_, ok = restored.Viewer()
	assert.False(t, ok)
	assert.NotContains(t, store, sessionKey)

	resp, err = restored.HTTPClient().Get(srv.URL + "/api/comment/getcomments")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_ServerMessage(t *testing.T) {
	srv := newAuthServer(t)
	s := NewSession(sessionConfig(srv.URL))

	_, err := s.Login(context.Background(), "a@x", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid password")
	_, ok := s.Viewer()
	assert.False(t, ok)
}

func TestLoad_CorruptSessionIsDiscarded(t *testing.T) {
	store := memStore{sessionKey: "{not json"}
	s := NewSession(config.Default())
	assert.False(t, s.Load(store))
	assert.NotContains(t, store, sessionKey)
}

func TestSave_NoopWhenLoggedOut(t *testing.T) {
	store := memStore{}
	require.NoError(t, NewSession(config.Default()).Save(store))
	assert.Empty(t, store)
}
