package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Tabs    key.Binding
	Symbol  key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Filters key.Binding
	Next    key.Binding
	Prev    key.Binding
	Clear   key.Binding
	Add     key.Binding
	Toggle  key.Binding
	Reset   key.Binding
	Detail  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tabs:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "tabs")),
	Symbol:  key.NewBinding(key.WithKeys("/", "s"), key.WithHelp("/", "symbol")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Filters: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add bot")),
	Toggle:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "start/stop")),
	Reset:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset balance")),
	Detail:  key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "bot detail")),
}
