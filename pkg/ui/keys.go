package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the task form. Actions use control
// chords so they never collide with text typed into a field.
type KeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Up        key.Binding
	Down      key.Binding

	Add     key.Binding
	Delete  key.Binding
	Update  key.Binding
	ListAll key.Binding
	Filter  key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "prev field"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	Add: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "add"),
	),
	Delete: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "delete"),
	),
	Update: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "update"),
	),
	ListAll: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("C-l", "list all"),
	),
	Filter: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("C-f", "filter by due date"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("Esc", "quit"),
	),
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Add, k.Delete, k.Update, k.ListAll, k.Filter, k.Quit}
}
