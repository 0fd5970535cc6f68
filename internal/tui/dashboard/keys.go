package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Delete    key.Binding
	Toggle    key.Binding
	Feature   key.Binding
	Retry     key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
	TabByNumb []key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Confirm: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Toggle:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle available")),
		Feature: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle featured")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry connection")),
		Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		TabByNumb: []key.Binding{
			key.NewBinding(key.WithKeys("1")),
			key.NewBinding(key.WithKeys("2")),
			key.NewBinding(key.WithKeys("3")),
			key.NewBinding(key.WithKeys("4")),
		},
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Retry, k.Logout, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		{k.Confirm, k.Cancel, k.Delete},
		{k.Toggle, k.Feature},
		{k.Retry, k.Logout, k.Help, k.Quit},
	}
}
