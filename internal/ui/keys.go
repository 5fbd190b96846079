package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit     key.Binding
	Back     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Comments key.Binding
	Posts    key.Binding
	Login    key.Binding
	Logout   key.Binding
	History  key.Binding
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
	PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
	Comments: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "comments")),
	Posts:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "posts")),
	Login:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Logout:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "logout")),
	History:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "deletion history")),
}
