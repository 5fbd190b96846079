package history

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dashpanel/internal/cache"
	"github.com/fragmede/dashpanel/internal/render"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true).Padding(1, 0)
	entryStyle    = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#333333")).Padding(0, 1)
	kindStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)

// Source lists recorded deletions, newest first.
type Source interface {
	RecentDeletions(limit int) ([]cache.Deletion, error)
}

// Model is the deletion history view.
type Model struct {
	entries     []cache.Deletion
	selectedIdx int
	src         Source
	limit       int
	err         string
	width       int
	height      int
}

// New creates a history view showing at most limit entries.
func New(src Source, limit int) Model {
	return Model{src: src, limit: limit}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Load refreshes the list from the database.
func (m *Model) Load() {
	entries, err := m.src.RecentDeletions(m.limit)
	if err != nil {
		log.Printf("loading deletion history: %v", err)
		m.err = "Could not read history: " + err.Error()
		return
	}
	m.err = ""
	m.entries = entries
	if m.selectedIdx >= len(entries) {
		m.selectedIdx = max(len(entries)-1, 0)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx < len(m.entries)-1 {
				m.selectedIdx++
			}
		case "k", "up":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "g", "home":
			m.selectedIdx = 0
		case "G", "end":
			m.selectedIdx = max(len(m.entries)-1, 0)
		case "r":
			m.Load()
		}
	}
	return m, nil
}

// View renders the deletion history.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Deletion history"))
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString("\n  " + failStyle.Render(m.err) + "\n")
		return sb.String()
	}
	if len(m.entries) == 0 {
		sb.WriteString("\n  Nothing deleted yet.\n")
		return sb.String()
	}

	// Two lines per entry; keep the selection on screen.
	visible := len(m.entries)
	if m.height > 4 {
		visible = max((m.height-3)/2, 1)
	}
	start := 0
	if m.selectedIdx >= visible {
		start = m.selectedIdx - visible + 1
	}
	end := min(start+visible, len(m.entries))

	for i := start; i < end; i++ {
		d := m.entries[i]
		var line strings.Builder

		if d.OK {
			line.WriteString(okStyle.Render("✓ "))
		} else {
			line.WriteString(failStyle.Render("✗ "))
		}
		line.WriteString(kindStyle.Render(d.Kind))
		line.WriteString(metaStyle.Render(" " + d.ItemID + " · " + render.TimeAgo(d.CreatedAt)))
		if d.Actor != "" {
			line.WriteString(metaStyle.Render(" by " + d.Actor))
		}
		line.WriteString("\n")

		detail := d.Label
		if !d.OK && d.Error != "" {
			detail = d.Error
		}
		if detail != "" {
			width := 80
			if m.width > 10 {
				width = m.width - 6
			}
			line.WriteString("  " + labelStyle.Render(render.Truncate(detail, width)))
		}

		entry := line.String()
		if i == m.selectedIdx {
			entry = selectedStyle.Render(entry)
		} else {
			entry = entryStyle.Render(entry)
		}
		sb.WriteString(entry + "\n")
	}

	return sb.String()
}
