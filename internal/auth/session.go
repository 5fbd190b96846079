package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/fragmede/dashpanel/internal/config"
)

const sessionKey = "session"

var ErrNotLoggedIn = errors.New("not logged in")

// Store persists the serialized session.
type Store interface {
	GetSession(key string) (string, bool, error)
	PutSession(key, value string) error
	DeleteSession(key string) error
}

// Session manages the cookie-based login shared by every API request.
type Session struct {
	client    *http.Client
	jar       *cookiejar.Jar
	signinURL string
	origins   []*url.URL

	mu       sync.RWMutex
	viewer   Viewer
	loggedIn bool
}

// NewSession creates a session whose cookie jar covers the sign-in host and
// every resource host in cfg.
func NewSession(cfg config.Config) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		client: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout,
		},
		jar:       jar,
		signinURL: cfg.SigninURL,
		origins:   originsOf(cfg.SigninURL, cfg.Comments.ListURL, cfg.Posts.ListURL),
	}
}

func originsOf(rawURLs ...string) []*url.URL {
	seen := make(map[string]bool)
	var out []*url.URL
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
		if seen[origin.String()] {
			continue
		}
		seen[origin.String()] = true
		out = append(out, origin)
	}
	return out
}

// HTTPClient returns the cookie-carrying client for API requests.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Viewer returns the signed-in user.
func (s *Session) Viewer() (Viewer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer, s.loggedIn
}

// Login signs in with email and password. The server sets the session
// cookie and answers with the user document.
func (s *Session) Login(ctx context.Context, email, password string) (Viewer, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Viewer{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signinURL, bytes.NewReader(payload))
	if err != nil {
		return Viewer{}, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Viewer{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Viewer{}, fmt.Errorf("reading login response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Viewer{}, fmt.Errorf("login failed: %s", failureMessage(resp.StatusCode, body))
	}

	v, err := DecodeViewer(body)
	if err != nil {
		return Viewer{}, fmt.Errorf("login failed: %w", err)
	}

	s.mu.Lock()
	s.viewer = v
	s.loggedIn = true
	s.mu.Unlock()
	log.Printf("signed in as %s (admin=%t)", v.Username, v.IsAdmin)
	return v, nil
}

// Logout forgets the viewer and the stored session. Cookies in the jar are
// expired so later requests go out anonymous.
func (s *Session) Logout(store Store) error {
	s.mu.Lock()
	s.viewer = Viewer{}
	s.loggedIn = false
	s.mu.Unlock()

	expired := time.Unix(0, 0)
	for _, origin := range s.origins {
		var dead []*http.Cookie
		for _, c := range s.jar.Cookies(origin) {
			dead = append(dead, &http.Cookie{Name: c.Name, Path: "/", Expires: expired, MaxAge: -1})
		}
		s.jar.SetCookies(origin, dead)
	}
	return store.DeleteSession(sessionKey)
}

type savedSession struct {
	Viewer  Viewer        `json:"viewer"`
	Cookies []savedCookie `json:"cookies"`
	SavedAt time.Time     `json:"saved_at"`
}

type savedCookie struct {
	Origin string `json:"origin"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// Save persists the viewer and session cookies.
func (s *Session) Save(store Store) error {
	v, ok := s.Viewer()
	if !ok {
		return nil
	}

	saved := savedSession{Viewer: v, SavedAt: time.Now()}
	for _, origin := range s.origins {
		for _, c := range s.jar.Cookies(origin) {
			saved.Cookies = append(saved.Cookies, savedCookie{
				Origin: origin.String(),
				Name:   c.Name,
				Value:  c.Value,
			})
		}
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return store.PutSession(sessionKey, string(data))
}

// Load restores a saved session. Returns true if a viewer was restored.
func (s *Session) Load(store Store) bool {
	data, ok, err := store.GetSession(sessionKey)
	if err != nil || !ok {
		return false
	}

	var saved savedSession
	if err := json.Unmarshal([]byte(data), &saved); err != nil {
		log.Printf("discarding unreadable session: %v", err)
		_ = store.DeleteSession(sessionKey)
		return false
	}
	if saved.Viewer.ID == "" || len(saved.Cookies) == 0 {
		return false
	}

	byOrigin := make(map[string][]*http.Cookie)
	for _, sc := range saved.Cookies {
		byOrigin[sc.Origin] = append(byOrigin[sc.Origin], &http.Cookie{
			Name:  sc.Name,
			Value: sc.Value,
			Path:  "/",
		})
	}
	for origin, cookies := range byOrigin {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		s.jar.SetCookies(u, cookies)
	}

	s.mu.Lock()
	s.viewer = saved.Viewer
	s.loggedIn = true
	s.mu.Unlock()
	return true
}

func failureMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "status " + strconv.Itoa(status)
}
