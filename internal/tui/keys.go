package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Select  key.Binding
	Focus   key.Binding
	Filter  key.Binding
	Sort    key.Binding
	Refresh key.Binding
	Scan    key.Binding
	Approve key.Binding
	Reject  key.Binding
	Quit    key.Binding
}

var defaultKeys = keyMap{
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "detail")),
	Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Sort:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Scan:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan")),
	Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
	Reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Select, k.Focus, k.Filter, k.Sort, k.Refresh, k.Scan, k.Approve, k.Reject, k.Quit}
}
