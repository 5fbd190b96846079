package dashpanel

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	More    key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Open    key.Binding
	Edit    key.Binding
	Reload  key.Binding
}

var Keys = KeyMap{
	More:    key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "show more")),
	Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Confirm: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "yes, I'm sure")),
	Cancel:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no, cancel")),
	Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Reload:  key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
}
