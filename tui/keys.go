package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the browser.
type keyMap struct {
	// Global
	Quit   key.Binding
	Search key.Binding
	Reload key.Binding

	// Route switching
	Home   key.Binding
	Browse key.Binding
	About  key.Binding

	// History
	Back    key.Binding
	Forward key.Binding

	// Lists
	Up   key.Binding
	Down key.Binding
	Open key.Binding

	// Search input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Home: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "home"),
		),
		Browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "browse"),
		),
		About: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "about"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "left"),
			key.WithHelp("←/esc", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "forward"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// shortHelp lists the bindings shown in the footer.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Forward, k.Search, k.Home, k.Browse, k.About, k.Reload, k.Quit}
}
