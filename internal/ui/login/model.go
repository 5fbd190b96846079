// Package login is the credentials form shown before any panel can load.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dashpanel/internal/auth"
	"github.com/fragmede/dashpanel/internal/ui/messages"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true).MarginBottom(1)
	fieldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true)
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0F766E")).
			Padding(1, 3)
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
	Submit: key.NewBinding(key.WithKeys("enter")),
}

// Authenticator signs a user in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Viewer, error)
}

// Model holds the email and password inputs.
type Model struct {
	fields  [fieldCount]textinput.Model
	focused int
	problem string
	pending bool
	auth    Authenticator
	width   int
	height  int
}

func New(a Authenticator) Model {
	var m Model
	m.auth = a
	for i := range m.fields {
		in := textinput.New()
		in.Width = 32
		in.Prompt = "› "
		m.fields[i] = in
	}
	m.fields[fieldEmail].Placeholder = "admin@example.com"
	m.fields[fieldPassword].Placeholder = "password"
	m.fields[fieldPassword].EchoMode = textinput.EchoPassword
	m.fields[fieldPassword].EchoCharacter = '•'
	m.fields[fieldEmail].Focus()
	return m
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *Model) focus(i int) {
	m.fields[m.focused].Blur()
	m.focused = (i + fieldCount) % fieldCount
	m.fields[m.focused].Focus()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.LoginResultMsg:
		m.pending = false
		if msg.Err != nil {
			m.problem = msg.Err.Error()
			m.fields[fieldPassword].Reset()
			m.focus(fieldPassword)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Next):
			m.focus(m.focused + 1)
			return m, nil
		case key.Matches(msg, keys.Prev):
			m.focus(m.focused - 1)
			return m, nil
		case key.Matches(msg, keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.fields[m.focused], cmd = m.fields[m.focused].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	password := m.fields[fieldPassword].Value()
	if email == "" || password == "" {
		m.problem = "Both email and password are required."
		return m, nil
	}

	m.pending = true
	m.problem = ""
	a := m.auth
	return m, func() tea.Msg {
		v, err := a.Login(context.Background(), email, password)
		return messages.LoginResultMsg{Viewer: v, Err: err}
	}
}

func (m Model) View() string {
	labels := [fieldCount]string{"Email", "Password"}
	lines := []string{headingStyle.Render("Admin sign-in")}
	for i, in := range m.fields {
		style := fieldStyle
		if i == m.focused {
			style = activeStyle
		}
		lines = append(lines, style.Render(labels[i]), in.View(), "")
	}

	if m.problem != "" {
		lines = append(lines, problemStyle.Render(m.problem), "")
	}
	if m.pending {
		lines = append(lines, hintStyle.Render("Checking credentials..."))
	} else {
		lines = append(lines, hintStyle.Render("tab switch field · enter submit · esc back"))
	}

	form := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
