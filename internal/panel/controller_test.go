package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string
	Title string
}

func rowKey(r row) string { return r.ID }

func rows(prefix string, n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{ID: fmt.Sprintf("%s%d", prefix, i), Title: "title " + prefix}
	}
	return out
}

// fakeServer serves scripted pages and records every call.
type fakeServer struct {
	mu        sync.Mutex
	pages     [][]row
	fetchErrs map[int]error
	deleteErr error
	offsets   []int
	deleted   []string
}

func (s *fakeServer) fetch(_ context.Context, offset int) ([]row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := len(s.offsets)
	s.offsets = append(s.offsets, offset)
	if err := s.fetchErrs[call]; err != nil {
		return nil, err
	}
	if call >= len(s.pages) {
		return nil, nil
	}
	return s.pages[call], nil
}

func (s *fakeServer) remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func newController(s *fakeServer) *Controller[row, string] {
	return New(s.fetch, s.remove, rowKey, Options{
		Name:   "rows",
		Logger: log.New(io.Discard, "", 0),
	})
}

func TestStart_FullFirstPageThenShortPage(t *testing.T) {
	s := &fakeServer{pages: [][]row{rows("a", 9), rows("b", 4)}}
	c := newController(s)

	res, err := c.Start(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Offset: 0, Added: 9, HasMore: true}, res)
	assert.True(t, c.State().HasMore)

	res, err = c.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, res.Offset)

	st := c.State()
	assert.Len(t, st.Items, 13)
	assert.Equal(t, 13, st.Offset)
	assert.False(t, st.HasMore)
	assert.Equal(t, []int{0, 9}, s.offsets)
}

func TestStart_Unauthorized(t *testing.T) {
	s := &fakeServer{pages: [][]row{rows("a", 9)}}
	c := newController(s)

	_, err := c.Start(context.Background(), false)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.State().Items)
	assert.Empty(t, s.offsets)

	_, err = c.LoadMore(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, s.offsets)
}

func TestStart_FailureKeepsHasMore(t *testing.T) {
	boom := errors.New("connection refused")
	s := &fakeServer{fetchErrs: map[int]error{0: boom}}
	c := newController(s)

	_, err := c.Start(context.Background(), true)
	require.ErrorIs(t, err, boom)

	st := c.State()
	assert.Empty(t, st.Items)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)
}

func TestLoadMore_OffsetsTrackItemCount(t *testing.T) {
	s := &fakeServer{pages: [][]row{rows("a", 9), rows("b", 9), rows("c", 9), rows("d", 2)}}
	c := newController(s)

	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	total := 9
	for c.State().HasMore {
		before := len(c.State().Items)
		res, err := c.LoadMore(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, res.Offset)
		total += res.Added
		assert.Len(t, c.State().Items, total)
	}
	assert.Equal(t, []int{0, 9, 18, 27}, s.offsets)
	assert.Equal(t, 29, total)

	_, err = c.LoadMore(context.Background())
	require.ErrorIs(t, err, ErrNoMorePages)
}

func TestLoadMore_HasMoreFollowsLastPage(t *testing.T) {
	tests := []struct {
		name string
		size int
		want bool
	}{
		{name: "empty", size: 0, want: false},
		{name: "short", size: 8, want: false},
		{name: "exact", size: 9, want: true},
		{name: "long", size: 10, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeServer{pages: [][]row{rows("a", 9), rows("b", tt.size)}}
			c := newController(s)
			_, err := c.Start(context.Background(), true)
			require.NoError(t, err)

			res, err := c.LoadMore(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.HasMore)
			assert.Equal(t, tt.want, c.State().HasMore)
		})
	}
}

func TestLoadMore_FailureLeavesStateAndRetriesSameOffset(t *testing.T) {
	s := &fakeServer{
		pages:     [][]row{rows("a", 9), nil, rows("b", 3)},
		fetchErrs: map[int]error{1: errors.New("HTTP 500")},
	}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)
	before := c.State()

	_, err = c.LoadMore(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, c.State())

	_, err = c.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 9, 9}, s.offsets)
	assert.Len(t, c.State().Items, 12)
}

func TestLoadMore_RejectsConcurrentLoad(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	calls := 0
	fetch := func(_ context.Context, offset int) ([]row, error) {
		calls++
		if calls == 1 {
			return rows("a", 9), nil
		}
		close(entered)
		<-release
		return rows("b", 9), nil
	}
	c := New(fetch, func(context.Context, string) error { return nil }, rowKey, Options{Logger: log.New(io.Discard, "", 0)})
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.LoadMore(context.Background())
		done <- err
	}()
	<-entered

	assert.True(t, c.State().Loading)
	_, err = c.LoadMore(context.Background())
	require.ErrorIs(t, err, ErrLoadInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, c.State().Items, 18)
	assert.Equal(t, 2, calls)
}

func TestStart_DropsResponseFromPreviousGeneration(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	first := true
	fetch := func(_ context.Context, offset int) ([]row, error) {
		if first {
			first = false
			close(entered)
			<-release
			return rows("old", 9), nil
		}
		return rows("new", 2), nil
	}
	c := New(fetch, func(context.Context, string) error { return nil }, rowKey, Options{Logger: log.New(io.Discard, "", 0)})

	done := make(chan error, 1)
	go func() {
		_, err := c.Start(context.Background(), true)
		done <- err
	}()
	<-entered

	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	close(release)
	require.ErrorIs(t, <-done, ErrStale)

	st := c.State()
	require.Len(t, st.Items, 2)
	assert.Equal(t, "new0", st.Items[0].ID)
}

func TestConfirmDelete_RemovesOnlyTarget(t *testing.T) {
	s := &fakeServer{pages: [][]row{{{ID: "a"}, {ID: "b"}, {ID: "c"}}}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	c.RequestDelete("b")
	st := c.State()
	assert.True(t, st.Confirming)
	assert.Equal(t, "b", st.Target)
	assert.Empty(t, s.deleted)

	res, err := c.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DeleteResult[string]{ID: "b", Removed: 1}, res)

	st = c.State()
	assert.Equal(t, []row{{ID: "a"}, {ID: "c"}}, st.Items)
	assert.False(t, st.Confirming)
	assert.Equal(t, []string{"b"}, s.deleted)
}

func TestConfirmDelete_MissingItemStillSent(t *testing.T) {
	s := &fakeServer{pages: [][]row{{{ID: "a"}}}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	c.RequestDelete("gone")
	res, err := c.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Removed)
	assert.Equal(t, []string{"gone"}, s.deleted)
	assert.Len(t, c.State().Items, 1)
}

func TestCancelDelete_IsNoOp(t *testing.T) {
	s := &fakeServer{pages: [][]row{rows("a", 5)}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)
	before := c.State()

	c.RequestDelete("a2")
	c.CancelDelete()

	assert.Equal(t, before, c.State())
	assert.Empty(t, s.deleted)

	_, err = c.ConfirmDelete(context.Background())
	require.ErrorIs(t, err, ErrGateIdle)
	assert.Empty(t, s.deleted)
}

func TestConfirmDelete_FailureIsInert(t *testing.T) {
	s := &fakeServer{
		pages:     [][]row{rows("a", 3)},
		deleteErr: errors.New("You are not allowed to delete this comment"),
	}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)
	before := c.State().Items

	c.RequestDelete("a1")
	res, err := c.ConfirmDelete(context.Background())
	require.ErrorIs(t, err, s.deleteErr)
	assert.Equal(t, "a1", res.ID)

	st := c.State()
	assert.Equal(t, before, st.Items)
	assert.False(t, st.Confirming)
}

func TestPeek_CountsUnloadedItems(t *testing.T) {
	s := &fakeServer{pages: [][]row{
		{{ID: "a"}, {ID: "b"}},
		{{ID: "new"}, {ID: "a"}, {ID: "b"}},
	}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	fresh, err := c.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fresh)
	assert.Len(t, c.State().Items, 2)
}

func TestStart_ResetsGate(t *testing.T) {
	s := &fakeServer{pages: [][]row{rows("a", 1), rows("b", 1)}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	c.RequestDelete("a0")
	_, err = c.Start(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, c.State().Confirming)
}

func TestPeek_IgnoresItemsShiftedByLocalDelete(t *testing.T) {
	s := &fakeServer{pages: [][]row{
		{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		// After "b" is deleted the server's first page pulls "d" up.
		{{ID: "a"}, {ID: "c"}, {ID: "d"}},
	}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	c.RequestDelete("b")
	_, err = c.ConfirmDelete(context.Background())
	require.NoError(t, err)

	fresh, err := c.Peek(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fresh)
}

func TestPeek_EmptyListCountsWholePage(t *testing.T) {
	s := &fakeServer{pages: [][]row{nil, rows("n", 4)}}
	c := newController(s)
	_, err := c.Start(context.Background(), true)
	require.NoError(t, err)

	fresh, err := c.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, fresh)
}

func TestStartAs_CarriesViewerToRequests(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	record := func(ctx context.Context) {
		mu.Lock()
		seen = append(seen, ViewerID(ctx))
		mu.Unlock()
	}

	entered, release := make(chan struct{}), make(chan struct{})
	calls := 0
	fetch := func(ctx context.Context, _ int) ([]row, error) {
		record(ctx)
		calls++
		if calls == 2 {
			close(entered)
			<-release
		}
		return rows("a", 9), nil
	}
	remove := func(ctx context.Context, _ string) error {
		record(ctx)
		return nil
	}
	c := New(fetch, remove, rowKey, Options{Logger: log.New(io.Discard, "", 0)})

	_, err := c.StartAs(context.Background(), "u1", true)
	require.NoError(t, err)

	// A load already past the lock keeps the viewer it started with even if
	// the controller is restarted for someone else meanwhile.
	done := make(chan error, 1)
	go func() {
		_, err := c.LoadMore(context.Background())
		done <- err
	}()
	<-entered
	_, err = c.StartAs(context.Background(), "", false)
	require.ErrorIs(t, err, ErrUnauthorized)
	close(release)
	require.ErrorIs(t, <-done, ErrStale)

	_, err = c.StartAs(context.Background(), "u2", true)
	require.NoError(t, err)
	c.RequestDelete("a0")
	_, err = c.ConfirmDelete(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"u1", "u1", "u2", "u2"}, seen)
}
