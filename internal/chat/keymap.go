package chat

import (
	"github.com/adamavenir/tern/internal/nav"
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds every binding. Which ones apply depends on the focus mode;
// see focusKeys.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Compose  key.Binding
	Reply    key.Binding
	Edit     key.Binding
	Delete   key.Binding
	React    key.Binding
	Reader   key.Binding
	Follow   key.Binding
	Copy     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Cancel   key.Binding

	// compose
	Submit    key.Binding
	Newline   key.Binding
	Backspace key.Binding
	DeleteFwd key.Binding
	Left      key.Binding
	Right     key.Binding
	Home      key.Binding
	End       key.Binding

	// reader
	NextChannel key.Binding
	PrevChannel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Expand:   key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/l", "expand")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Compose:  key.NewBinding(key.WithKeys("i", "c"), key.WithHelp("i", "write")),
		Reply:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		React:    key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "react")),
		Reader:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "read")),
		Follow:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow/unfollow")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:   key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("ctrl+j", "newline")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		DeleteFwd: key.NewBinding(key.WithKeys("delete", "ctrl+d")),
		Left:      key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right:     key.NewBinding(key.WithKeys("right", "ctrl+f")),
		Home:      key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:       key.NewBinding(key.WithKeys("end", "ctrl+e")),

		NextChannel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next channel")),
		PrevChannel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev channel")),
	}
}

// focusKeys adapts the key map to help.KeyMap for one focus mode.
type focusKeys struct {
	keys  keyMap
	focus nav.FocusMode
}

func (f focusKeys) ShortHelp() []key.Binding {
	k := f.keys
	switch f.focus {
	case nav.FocusCompose:
		return []key.Binding{k.Submit, k.Newline, k.Cancel}
	case nav.FocusReader:
		return []key.Binding{k.Up, k.Down, k.NextChannel, k.Reply, k.React, k.Cancel}
	default:
		return []key.Binding{k.Up, k.Down, k.Open, k.Compose, k.Reader, k.Help, k.Quit}
	}
}

func (f focusKeys) FullHelp() [][]key.Binding {
	k := f.keys
	switch f.focus {
	case nav.FocusCompose:
		return [][]key.Binding{{k.Submit, k.Newline, k.Cancel}}
	case nav.FocusReader:
		return [][]key.Binding{
			{k.Up, k.Down, k.PageUp, k.PageDown},
			{k.NextChannel, k.PrevChannel, k.Open},
			{k.Reply, k.React, k.Copy, k.Cancel},
		}
	default:
		return [][]key.Binding{
			{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
			{k.Open, k.Expand, k.Collapse, k.Reader, k.Follow, k.Refresh},
			{k.Compose, k.Reply, k.Edit, k.Delete, k.React, k.Copy},
			{k.Help, k.Cancel, k.Quit},
		}
	}
}
