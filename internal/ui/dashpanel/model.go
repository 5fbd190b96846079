// Package dashpanel renders one paginated resource list as a table with
// show-more and confirmed delete.
package dashpanel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dashpanel/internal/api"
	"github.com/fragmede/dashpanel/internal/panel"
	"github.com/fragmede/dashpanel/internal/render"
	"github.com/fragmede/dashpanel/internal/ui/messages"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true).Padding(1, 1, 0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Padding(1, 2)
	moreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Padding(0, 2)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Padding(0, 2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Padding(0, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF5555")).
			Padding(1, 3).
			Align(lipgloss.Center)
	dangerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#DC2626")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
	cancelStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

// Column is one table column. A zero Width takes the space left over by
// the fixed columns.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Resource binds a panel to its resource kind.
type Resource[T any, K comparable] struct {
	// Name identifies the panel in messages and is recorded as the kind in
	// the deletion history.
	Name      string
	Title     string
	Noun      string
	EmptyText string
	Columns   []Column[T]
	Key       func(T) K
	Label     func(T) string
	Link      func(T) string
	EditLink  func(T) string
}

// Model is a Bubble Tea model over a panel.Controller.
type Model[T any, K comparable] struct {
	ctrl     *panel.Controller[T, K]
	res      Resource[T, K]
	table    table.Model
	state    panel.State[T, K]
	viewer   string
	authed   bool
	loading  bool
	deleting bool
	status   string
	isError  bool
	width    int
	height   int
}

// New creates a panel view for ctrl.
func New[T any, K comparable](ctrl *panel.Controller[T, K], res Resource[T, K]) Model[T, K] {
	if res.Noun == "" {
		res.Noun = "item"
	}
	t := table.New(table.WithFocused(true), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#0F766E")).
		Bold(false)
	t.SetStyles(styles)

	m := Model[T, K]{ctrl: ctrl, res: res, table: t}
	m.table.SetColumns(m.columns(80))
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model[T, K]) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetColumns(m.columns(w))
	m.table.SetWidth(w)
	// Title, "show more", status and help lines.
	m.table.SetHeight(max(h-6, 3))
}

// Confirming reports whether the confirmation modal is up. While it is,
// the panel consumes every key.
func (m Model[T, K]) Confirming() bool {
	return m.state.Confirming || m.deleting
}

// State returns the last rendered snapshot.
func (m Model[T, K]) State() panel.State[T, K] {
	return m.state
}

// Start resets the panel for viewerID and loads the first page.
func (m *Model[T, K]) Start(viewerID string, authorized bool) tea.Cmd {
	m.viewer = viewerID
	m.authed = authorized
	m.loading = authorized
	m.deleting = false
	m.status = ""
	ctrl, name := m.ctrl, m.res.Name
	return func() tea.Msg {
		res, err := ctrl.StartAs(context.Background(), viewerID, authorized)
		return messages.PageLoadedMsg{Panel: name, Added: res.Added, HasMore: res.HasMore, Err: err}
	}
}

func (m *Model[T, K]) loadMore() tea.Cmd {
	if m.loading || !m.state.Authorized || !m.state.HasMore {
		return nil
	}
	m.loading = true
	ctrl, name := m.ctrl, m.res.Name
	return func() tea.Msg {
		res, err := ctrl.LoadMore(context.Background())
		return messages.PageLoadedMsg{Panel: name, Added: res.Added, HasMore: res.HasMore, Err: err}
	}
}

func (m *Model[T, K]) confirm() tea.Cmd {
	label := ""
	if it, ok := m.find(m.state.Target); ok && m.res.Label != nil {
		label = m.res.Label(it)
	}
	m.deleting = true
	ctrl, name := m.ctrl, m.res.Name
	return func() tea.Msg {
		res, err := ctrl.ConfirmDelete(context.Background())
		return messages.DeletedMsg{
			Panel:   name,
			Kind:    name,
			ItemID:  fmt.Sprint(res.ID),
			Label:   label,
			Removed: res.Removed,
			Err:     err,
		}
	}
}

// Update handles messages.
func (m Model[T, K]) Update(msg tea.Msg) (Model[T, K], tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PageLoadedMsg:
		if msg.Panel != m.res.Name {
			return m, nil
		}
		switch {
		case errors.Is(msg.Err, panel.ErrStale):
			// A newer Start owns the loading flag.
			return m, nil
		case errors.Is(msg.Err, panel.ErrLoadInFlight):
			return m, nil
		}
		m.loading = false
		switch {
		case msg.Err == nil, errors.Is(msg.Err, panel.ErrUnauthorized), errors.Is(msg.Err, panel.ErrNoMorePages):
		default:
			m.setStatus(fmt.Sprintf("Could not load %ss: %s", m.res.Noun, api.Message(msg.Err)), true)
		}
		m.sync()
		return m, nil

	case messages.DeletedMsg:
		if msg.Panel != m.res.Name {
			return m, nil
		}
		m.deleting = false
		switch {
		case errors.Is(msg.Err, panel.ErrGateIdle):
		case msg.Err != nil:
			m.setStatus(fmt.Sprintf("Could not delete %s: %s", m.res.Noun, api.Message(msg.Err)), true)
		default:
			m.setStatus(fmt.Sprintf("Deleted %s %s", m.res.Noun, describe(msg.Label, msg.ItemID)), false)
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if m.deleting {
			return m, nil
		}
		if m.state.Confirming {
			switch {
			case key.Matches(msg, Keys.Confirm):
				return m, m.confirm()
			case key.Matches(msg, Keys.Cancel):
				m.ctrl.CancelDelete()
				m.sync()
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, Keys.More):
			return m, m.loadMore()
		case key.Matches(msg, Keys.Delete):
			if it, ok := m.selected(); ok {
				m.ctrl.RequestDelete(m.res.Key(it))
				m.status = ""
				m.sync()
			}
			return m, nil
		case key.Matches(msg, Keys.Open):
			return m, m.open(m.res.Link)
		case key.Matches(msg, Keys.Edit):
			return m, m.open(m.res.EditLink)
		case key.Matches(msg, Keys.Reload):
			return m, m.Start(m.viewer, m.authed)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model[T, K]) open(link func(T) string) tea.Cmd {
	if link == nil {
		return nil
	}
	it, ok := m.selected()
	if !ok {
		return nil
	}
	url := link(it)
	if url == "" {
		return nil
	}
	return func() tea.Msg { return messages.OpenURLMsg{URL: url} }
}

func (m *Model[T, K]) setStatus(text string, isError bool) {
	m.status = text
	m.isError = isError
}

// sync copies controller state into the table.
func (m *Model[T, K]) sync() {
	m.state = m.ctrl.State()
	rows := make([]table.Row, 0, len(m.state.Items))
	for _, it := range m.state.Items {
		row := make(table.Row, len(m.res.Columns))
		for i, c := range m.res.Columns {
			row[i] = c.Value(it)
		}
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
	if m.table.Cursor() < 0 && len(rows) > 0 {
		m.table.SetCursor(0)
	}
}

func (m Model[T, K]) selected() (T, bool) {
	var zero T
	i := m.table.Cursor()
	if i < 0 || i >= len(m.state.Items) {
		return zero, false
	}
	return m.state.Items[i], true
}

func (m Model[T, K]) find(id K) (T, bool) {
	for _, it := range m.state.Items {
		if m.res.Key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (m Model[T, K]) columns(width int) []table.Column {
	fixed, flex := 0, 0
	for _, c := range m.res.Columns {
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flex++
		}
	}
	// Each cell carries one column of padding on either side.
	spare := width - fixed - 2*len(m.res.Columns)
	flexWidth := 10
	if flex > 0 && spare/flex > flexWidth {
		flexWidth = spare / flex
	}

	cols := make([]table.Column, len(m.res.Columns))
	for i, c := range m.res.Columns {
		w := c.Width
		if w == 0 {
			w = flexWidth
		}
		cols[i] = table.Column{Title: c.Title, Width: w}
	}
	return cols
}

// View renders the panel.
func (m Model[T, K]) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.res.Title))
	sb.WriteString("\n")

	switch {
	case !m.authed:
		sb.WriteString(emptyStyle.Render(fmt.Sprintf("Sign in as an admin to manage %ss.", m.res.Noun)))
	case len(m.state.Items) == 0 && m.loading:
		sb.WriteString(emptyStyle.Render("Loading..."))
	case len(m.state.Items) == 0:
		sb.WriteString(emptyStyle.Render(m.res.EmptyText))
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		switch {
		case m.loading:
			sb.WriteString(moreStyle.Render("Loading more..."))
		case m.state.HasMore:
			sb.WriteString(moreStyle.Render("Show more (m)"))
		}
	}
	sb.WriteString("\n")

	if m.status != "" {
		if m.isError {
			sb.WriteString(errorStyle.Render(m.status))
		} else {
			sb.WriteString(statusStyle.Render(m.status))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("j/k move · m more · d delete · o open · e edit · r reload"))

	content := sb.String()
	if m.Confirming() {
		return m.overlay(content)
	}
	return content
}

func (m Model[T, K]) overlay(content string) string {
	label := ""
	if it, ok := m.find(m.state.Target); ok && m.res.Label != nil {
		label = render.Truncate(m.res.Label(it), 40)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Are you sure you want to delete this %s?", m.res.Noun))
	if label != "" {
		sb.WriteString("\n\n")
		sb.WriteString(label)
	}
	sb.WriteString("\n\n")
	if m.deleting {
		sb.WriteString("Deleting...")
	} else {
		sb.WriteString(dangerStyle.Render("y  Yes, I'm sure"))
		sb.WriteString("   ")
		sb.WriteString(cancelStyle.Render("n  No, cancel"))
	}
	modal := modalStyle.Render(sb.String())

	if m.width == 0 || m.height == 0 {
		return content + "\n" + modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func describe(label, id string) string {
	if label == "" {
		return id
	}
	return fmt.Sprintf("%q", render.Truncate(label, 40))
}
