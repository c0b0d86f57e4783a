package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Movies    key.Binding
	Theaters  key.Binding
	Favorites key.Binding
	Enter     key.Binding
	Back      key.Binding

	// Actions
	Quit     key.Binding
	Filter   key.Binding
	Sort     key.Binding
	Refresh  key.Binding
	Favorite key.Binding
	Reviews  key.Binding
	Provider key.Binding
	Ratings  key.Binding
	Trailer  key.Binding
	Map      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-tab", "prev tab"),
		),
		Movies: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "movies"),
		),
		Theaters: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "theaters"),
		),
		Favorites: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "favorites"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Reviews: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "reviews"),
		),
		Provider: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "provider"),
		),
		Ratings: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "ratings"),
		),
		Trailer: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trailer"),
		),
		Map: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "map"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Enter, k.Filter, k.Sort, k.Favorite, k.Refresh, k.Provider, k.Ratings, k.Quit}
}
