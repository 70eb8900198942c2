package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Restart key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k", "w"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j", "s"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h", "a"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l", "d"), key.WithHelp("→/l", "right")),
	Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick")),
	Restart: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "play again")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q", "quit")),
}
