package tui

import "github.com/charmbracelet/bubbles/key"

// jump is how far J and K move the cursor.
const jump = 5

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	JumpUp     key.Binding
	JumpDown   key.Binding
	Open       key.Binding
	Back       key.Binding
	OpenLink   key.Binding
	ToggleRead key.Binding
	ReadAll    key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Mixed      key.Binding
	Search     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		JumpUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "jump up"),
		),
		JumpDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "jump down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter/l", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "left", "esc", "backspace"),
			key.WithHelp("h/esc", "back"),
		),
		OpenLink: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle read"),
		),
		ReadAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "mark all read"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh feed"),
		),
		RefreshAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh all"),
		),
		Mixed: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "all posts"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.ToggleRead, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.JumpUp, k.JumpDown},
		{k.Open, k.Back, k.OpenLink, k.Mixed, k.Search},
		{k.ToggleRead, k.ReadAll, k.Refresh, k.RefreshAll},
		{k.Help, k.Quit},
	}
}
