package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the terminal interface.
type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding

	Connect key.Binding
	SSH     key.Binding
	Routes  key.Binding

	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Advertise key.Binding
	LAN       key.Binding

	Account key.Binding
	Receive key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Connect/disconnect"),
		),
		SSH: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle SSH"),
		),
		Routes: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle accept routes"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Use highlighted exit node"),
		),
		Advertise: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Toggle exit node advertisement"),
		),
		LAN: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle LAN access"),
		),

		Account: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Next account"),
		),
		Receive: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Receive Taildrop files"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Dismiss status"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Connect, k.SSH, k.Routes},
		{k.Up, k.Down, k.Select, k.Advertise, k.LAN},
		{k.Account, k.Receive, k.Refresh},
		{k.Dismiss, k.Help, k.Quit},
	}
}
