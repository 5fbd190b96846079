package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#14B8A6")

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0F766E")).
			Padding(0, 1)

	AccentStyle = lipgloss.NewStyle().
			Foreground(accent)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)
