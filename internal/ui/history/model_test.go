package history

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/fragmede/dashpanel/internal/cache"
)

type fakeSource struct {
	entries []cache.Deletion
	err     error
	limit   int
}

func (f *fakeSource) RecentDeletions(limit int) ([]cache.Deletion, error) {
	f.limit = limit
	return f.entries, f.err
}

func TestLoadAndRender(t *testing.T) {
	src := &fakeSource{entries: []cache.Deletion{
		{Kind: "comments", ItemID: "c1", Label: "spam spam", Actor: "ana", OK: true, CreatedAt: time.Now().Add(-time.Hour)},
		{Kind: "posts", ItemID: "7", Label: "Go", OK: false, Error: "forbidden", CreatedAt: time.Now().Add(-2 * time.Hour)},
	}}
	m := New(src, 50)
	m.Load()

	assert.Equal(t, 50, src.limit)
	assert.Len(t, m.entries, 2)
	out := m.View()
	assert.Contains(t, out, "comments")
	assert.Contains(t, out, "spam spam")
	assert.Contains(t, out, "by ana")
	assert.Contains(t, out, "forbidden")
	assert.Contains(t, out, "1 hour ago")
}

func TestNavigationStaysInBounds(t *testing.T) {
	src := &fakeSource{entries: make([]cache.Deletion, 3)}
	m := New(src, 50)
	m.Load()

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	for range 5 {
		m, _ = m.Update(down)
	}
	assert.Equal(t, 2, m.selectedIdx)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, m.selectedIdx)
}

func TestEmptyAndError(t *testing.T) {
	m := New(&fakeSource{}, 50)
	m.Load()
	assert.Contains(t, m.View(), "Nothing deleted yet.")

	m = New(&fakeSource{err: errors.New("disk I/O error")}, 50)
	m.Load()
	assert.Contains(t, m.View(), "disk I/O error")
}
