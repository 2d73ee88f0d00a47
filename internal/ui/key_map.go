package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	tab    key.Binding
	search key.Binding
	add    key.Binding
	remove key.Binding
	open   key.Binding
	home   key.Binding
	create key.Binding
	rename key.Binding
	cover  key.Binding
	delete key.Binding
	yes    key.Binding
	no     key.Binding
	help   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to playlist")),
		remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		home:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "home")),
		create: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new playlist")),
		rename: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		cover:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cover")),
		delete: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete playlist")),
		yes:    key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.add, k.open, k.tab, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.tab},
		{k.search, k.add, k.remove, k.open},
		{k.create, k.rename, k.cover, k.delete},
		{k.home, k.back, k.help, k.quit},
	}
}
