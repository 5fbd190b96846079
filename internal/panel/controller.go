// Package panel implements the paginated list controller shared by every
// dashboard panel: incremental page loading, a confirmation gate in front of
// deletes, and local reconciliation once the server accepts a delete.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

// DefaultPageSize is the server's fixed page length. A shorter page means the
// list is exhausted.
const DefaultPageSize = 9

var (
	ErrUnauthorized = errors.New("viewer is not allowed to see this list")
	ErrLoadInFlight = errors.New("a page load is already in flight")
	ErrNoMorePages  = errors.New("no more pages")
	ErrGateIdle     = errors.New("no delete is awaiting confirmation")
	// ErrStale is returned when a response resolved after the controller was
	// restarted; the response is dropped.
	ErrStale = errors.New("response arrived after the list was reset")
)

// FetchFunc returns one page of items starting at offset.
type FetchFunc[T any] func(ctx context.Context, offset int) ([]T, error)

// DeleteFunc deletes the item identified by id on the server.
type DeleteFunc[K comparable] func(ctx context.Context, id K) error

// Options tunes a Controller. Zero values fall back to defaults.
type Options struct {
	Name     string
	PageSize int
	Logger   *log.Logger
}

// LoadResult describes a successful page load.
type LoadResult struct {
	Offset  int
	Added   int
	HasMore bool
}

// DeleteResult describes a delete the server accepted.
type DeleteResult[K comparable] struct {
	ID      K
	Removed int
}

// State is a point-in-time copy of the controller, safe to render.
type State[T any, K comparable] struct {
	Items      []T
	HasMore    bool
	Offset     int
	Loading    bool
	Authorized bool
	Confirming bool
	Target     K
}

// Controller owns one panel's list and confirmation gate. It is safe for use
// from the UI loop and from command goroutines at the same time.
type Controller[T any, K comparable] struct {
	fetch    FetchFunc[T]
	remove   DeleteFunc[K]
	key      func(T) K
	name     string
	pageSize int
	logger   *log.Logger

	mu         sync.Mutex
	items      []T
	hasMore    bool
	loading    bool
	authorized bool
	generation int
	viewer     string
	gate       Gate[K]
}

type viewerKey struct{}

// ViewerID returns the viewer a controller was started for. Fetch and delete
// functions read it from their context instead of from the live session, so
// a request started before an identity change keeps the identity it began
// with.
func ViewerID(ctx context.Context) string {
	id, _ := ctx.Value(viewerKey{}).(string)
	return id
}

// New creates a controller bound to the given fetch and delete functions.
// key extracts the identifier used to match items on deletion.
func New[T any, K comparable](fetch FetchFunc[T], remove DeleteFunc[K], key func(T) K, opts Options) *Controller[T, K] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Name == "" {
		opts.Name = "panel"
	}
	return &Controller[T, K]{
		fetch:    fetch,
		remove:   remove,
		key:      key,
		name:     opts.Name,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
		hasMore:  true,
	}
}

// Start resets the list and, when authorized, loads the first page. A failed
// first load leaves the list empty without marking it exhausted.
func (c *Controller[T, K]) Start(ctx context.Context, authorized bool) (LoadResult, error) {
	return c.StartAs(ctx, "", authorized)
}

// StartAs is Start for a specific viewer. Every request made until the next
// start carries viewerID, see ViewerID.
func (c *Controller[T, K]) StartAs(ctx context.Context, viewerID string, authorized bool) (LoadResult, error) {
	c.mu.Lock()
	c.generation++
	c.viewer = viewerID
	c.items = nil
	c.hasMore = true
	c.loading = false
	c.authorized = authorized
	c.gate.Close()
	c.mu.Unlock()

	if !authorized {
		return LoadResult{}, ErrUnauthorized
	}
	return c.load(ctx)
}

// LoadMore fetches the next page at offset len(items) and appends it.
// Concurrent calls are rejected with ErrLoadInFlight.
func (c *Controller[T, K]) LoadMore(ctx context.Context) (LoadResult, error) {
	c.mu.Lock()
	authorized, hasMore := c.authorized, c.hasMore
	c.mu.Unlock()

	if !authorized {
		return LoadResult{}, ErrUnauthorized
	}
	if !hasMore {
		return LoadResult{}, ErrNoMorePages
	}
	return c.load(ctx)
}

func (c *Controller[T, K]) load(ctx context.Context) (LoadResult, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return LoadResult{}, ErrLoadInFlight
	}
	c.loading = true
	gen := c.generation
	offset := len(c.items)
	ctx = context.WithValue(ctx, viewerKey{}, c.viewer)
	c.mu.Unlock()

	page, err := c.fetch(ctx, offset)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return LoadResult{}, ErrStale
	}
	c.loading = false
	if err != nil {
		c.logger.Printf("%s: fetch at offset %d: %v", c.name, offset, err)
		return LoadResult{}, fmt.Errorf("loading %s at offset %d: %w", c.name, offset, err)
	}

	c.items = append(c.items, page...)
	c.hasMore = len(page) >= c.pageSize
	return LoadResult{Offset: offset, Added: len(page), HasMore: c.hasMore}, nil
}

// RequestDelete opens the confirmation gate for id. Nothing is sent.
func (c *Controller[T, K]) RequestDelete(id K) {
	c.mu.Lock()
	c.gate.Open(id)
	c.mu.Unlock()
}

// CancelDelete closes the gate without sending anything.
func (c *Controller[T, K]) CancelDelete() {
	c.mu.Lock()
	c.gate.Close()
	c.mu.Unlock()
}

// ConfirmDelete closes the gate and deletes its target on the server. The
// request is sent even if the item is no longer in the local list. Items are
// only removed once the server accepts the delete.
func (c *Controller[T, K]) ConfirmDelete(ctx context.Context) (DeleteResult[K], error) {
	c.mu.Lock()
	id, ok := c.gate.Close()
	ctx = context.WithValue(ctx, viewerKey{}, c.viewer)
	c.mu.Unlock()
	if !ok {
		return DeleteResult[K]{}, ErrGateIdle
	}

	if err := c.remove(ctx, id); err != nil {
		c.logger.Printf("%s: delete %v: %v", c.name, id, err)
		return DeleteResult[K]{ID: id}, fmt.Errorf("deleting %s item %v: %w", c.name, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it T) bool { return c.key(it) == id })
	return DeleteResult[K]{ID: id, Removed: before - len(c.items)}, nil
}

// Peek fetches the first page without touching state and counts the items
// listed ahead of the newest one already loaded. Items that slide onto the
// first page after a local delete are older than that, so they do not count.
// With nothing loaded every item on the page is new.
func (c *Controller[T, K]) Peek(ctx context.Context) (int, error) {
	c.mu.Lock()
	authorized := c.authorized
	ctx = context.WithValue(ctx, viewerKey{}, c.viewer)
	c.mu.Unlock()
	if !authorized {
		return 0, ErrUnauthorized
	}

	page, err := c.fetch(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("peeking %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	known := make(map[K]struct{}, len(c.items))
	for _, it := range c.items {
		known[c.key(it)] = struct{}{}
	}
	for i, it := range page {
		if _, ok := known[c.key(it)]; ok {
			return i, nil
		}
	}
	return len(page), nil
}

// State returns a snapshot of the list and gate.
func (c *Controller[T, K]) State() State[T, K] {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, open := c.gate.Target()
	return State[T, K]{
		Items:      slices.Clone(c.items),
		HasMore:    c.hasMore,
		Offset:     len(c.items),
		Loading:    c.loading,
		Authorized: c.authorized,
		Confirming: open,
		Target:     target,
	}
}
