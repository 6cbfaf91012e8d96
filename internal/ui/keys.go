package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Search     key.Binding
	Back       key.Binding
	Activate   key.Binding
	Next       key.Binding
	Prev       key.Binding
	ToggleMode key.Binding
	ToggleCase key.Binding
	Refresh    key.Binding
	Edit       key.Binding
	NextHit    key.Binding
	PrevHit    key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

var Keys = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Search:     key.NewBinding(key.WithKeys("/", "ctrl+s"), key.WithHelp("/", "search")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Activate:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Next:       key.NewBinding(key.WithKeys("ctrl+n", "down", "tab"), key.WithHelp("C-n", "next")),
	Prev:       key.NewBinding(key.WithKeys("ctrl+p", "up", "shift+tab"), key.WithHelp("C-p", "prev")),
	ToggleMode: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "mode")),
	ToggleCase: key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("M-c", "case")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "rescan")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editor")),
	NextHit:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	PrevHit:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	Top:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
	Bottom:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
}
