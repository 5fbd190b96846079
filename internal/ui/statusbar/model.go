package statusbar

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#0F766E")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#555555")).
				Foreground(lipgloss.Color("#CCCCCC")).
				Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	adminStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

// Tab is one selectable panel.
type Tab struct {
	Name  string
	Label string
}

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	tabs       []Tab
	active     string
	username   string
	isAdmin    bool
	badges     map[string]int
	statusText string
	isError    bool
}

// New creates a status bar with the given panel tabs.
func New(tabs ...Tab) Model {
	m := Model{tabs: tabs, badges: make(map[string]int)}
	if len(tabs) > 0 {
		m.active = tabs[0].Name
	}
	return m
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveTab highlights the named panel. An unknown name clears the
// highlight.
func (m *Model) SetActiveTab(name string) {
	m.active = name
}

// SetUser sets the signed-in user. An empty name means signed out.
func (m *Model) SetUser(username string, isAdmin bool) {
	m.username = username
	m.isAdmin = isAdmin
}

// SetBadge sets the number of new items waiting on a panel.
func (m *Model) SetBadge(name string, count int) {
	if count <= 0 {
		delete(m.badges, name)
		return
	}
	m.badges[name] = count
}

// Badge returns the count shown on a panel tab.
func (m Model) Badge(name string) int {
	return m.badges[name]
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for _, t := range m.tabs {
		label := t.Label
		if n := m.badges[t.Name]; n > 0 {
			label += " " + badgeStyle.Render(fmt.Sprintf(" %d new ", n))
		}
		if t.Name == m.active {
			tabsStr += activeTabStyle.Render(label)
		} else {
			tabsStr += inactiveTabStyle.Render(label)
		}
	}

	var right string
	if m.statusText != "" {
		if m.isError {
			right += errorTextStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}
	if m.username != "" {
		name := m.username
		if m.isAdmin {
			name += adminStyle.Render(" (admin)")
		}
		right += userStyle.Render(name)
	} else {
		right += statusTextStyle.Render("L:sign in")
	}

	tabsWidth := lipgloss.Width(tabsStr)
	rightWidth := lipgloss.Width(right)
	gap := m.width - tabsWidth - rightWidth
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}
