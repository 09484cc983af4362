package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the wizard reacts to.
type KeyMap struct {
	Role1 key.Binding
	Role2 key.Binding
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Open  key.Binding
	Copy  key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Role1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1/2", "choose")),
		Role2: key.NewBinding(key.WithKeys("2")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "move")),
		Down:  key.NewBinding(key.WithKeys("down", "j")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Open:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Copy:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Back:  key.NewBinding(key.WithKeys("b", "esc", "backspace"), key.WithHelp("b", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// identityKeys is shown while the role options are visible.
type identityKeys KeyMap

func (k identityKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Role1, k.Up, k.Enter, k.Quit}
}

func (k identityKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// actionKeys is shown on the actions screen.
type actionKeys KeyMap

func (k actionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Open, k.Copy, k.Back, k.Quit}
}

func (k actionKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// idleKeys is shown while the greeting is still revealing.
type idleKeys KeyMap

func (k idleKeys) ShortHelp() []key.Binding { return []key.Binding{k.Quit} }

func (k idleKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
