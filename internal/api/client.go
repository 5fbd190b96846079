package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fragmede/dashpanel/internal/config"
)

const userAgent = "dashpanel/1.0"

// Client talks to the blog's admin API. The underlying http.Client is
// expected to carry the session's cookie jar.
type Client struct {
	http     *http.Client
	comments config.Resource
	posts    config.Resource
}

// NewClient creates an API client for the endpoints in cfg. A nil hc gets a
// plain client with the configured timeout.
func NewClient(cfg config.Config, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Client{
		http:     hc,
		comments: cfg.Comments,
		posts:    cfg.Posts,
	}
}

// do sends a request and decodes a successful JSON body into dst when dst
// is non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("request %s: %s %s -> %d", reqID, method, rawURL, resp.StatusCode)
		return &ApplicationError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		log.Printf("request %s: decoding %s %s: %v", reqID, method, rawURL, err)
		return &ApplicationError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response from server",
		}
	}
	return nil
}

// errorMessage extracts {"message": "..."} from a failure body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(bytes.TrimSpace(body)))
}

// fetchPage GETs one page of a resource list and returns the array found
// under the resource's items field.
func fetchPage[T any](ctx context.Context, c *Client, r config.Resource, offset int, viewerID string) ([]T, error) {
	u, err := url.Parse(r.ListURL)
	if err != nil {
		return nil, fmt.Errorf("parsing list url: %w", err)
	}
	q := u.Query()
	q.Set("startIndex", strconv.Itoa(offset))
	if r.ScopeToViewer && viewerID != "" {
		q.Set("userId", viewerID)
	}
	u.RawQuery = q.Encode()

	var envelope map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, u.String(), &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[r.ItemsField]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("decoding %q from %s: %v", r.ItemsField, u, err)
		return nil, &ApplicationError{
			Method:     http.MethodGet,
			URL:        u.String(),
			StatusCode: http.StatusOK,
			Message:    "unexpected response from server",
		}
	}
	return items, nil
}

// deleteURL fills the {id} and {userId} placeholders of a delete template.
func deleteURL(tmpl, id, userID string) string {
	return strings.NewReplacer(
		"{id}", url.PathEscape(id),
		"{userId}", url.PathEscape(userID),
	).Replace(tmpl)
}
