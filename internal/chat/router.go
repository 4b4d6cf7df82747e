package chat

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
)

const attachPrefix = "/attach "

// handleKey routes a key press by (view, focus). Modals and the help view
// take every key while they are shown.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch {
	case m.state.Modal != nil:
		return m.handleModalKey(msg)
	case m.state.View == nav.ViewHelp:
		return m.handleHelpKey(msg)
	}
	switch m.state.Focus {
	case nav.FocusCompose:
		return m.handleComposeKey(msg)
	case nav.FocusReader:
		return m.handleReaderKey(msg)
	default:
		return m.handleNavigationKey(msg)
	}
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Copy):
		if body, ok := m.focusedBody(); ok {
			return copyCmd(body)
		}
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Quit):
		m.dispatch(nav.CloseModal{})
	}
	return nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Cancel, m.keys.Help, m.keys.Quit) {
		m.dispatch(nav.SetView{View: nav.ViewList})
	}
	return nil
}

func (m *Model) handleNavigationKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Cancel):
		m.dispatch(nav.Cancel{})
	case key.Matches(msg, k.Up):
		m.dispatch(nav.MoveBy{Delta: -1})
	case key.Matches(msg, k.Down):
		m.dispatch(nav.MoveBy{Delta: 1})
	case key.Matches(msg, k.PageUp):
		m.dispatch(nav.PageBy{Pages: -1})
	case key.Matches(msg, k.PageDown):
		m.dispatch(nav.PageBy{Pages: 1})
	case key.Matches(msg, k.Top):
		m.dispatch(nav.SelectIndex{Index: 0})
	case key.Matches(msg, k.Bottom):
		m.dispatch(nav.SelectIndex{Index: len(m.state.Items) - 1})
	case key.Matches(msg, k.Help):
		m.dispatch(nav.SetView{View: nav.ViewHelp})
	case key.Matches(msg, k.Open):
		return m.activate()
	case key.Matches(msg, k.Expand):
		return m.expandSelected()
	case key.Matches(msg, k.Collapse):
		if id, ok := m.selectedChannelKey(); ok {
			m.dispatch(nav.Collapse{ChannelID: id}, nav.SelectChannel{ChannelID: id})
			m.syncLoading()
		}
	case key.Matches(msg, k.Compose):
		return m.startCompose()
	case key.Matches(msg, k.Reply):
		if target, ok := m.state.SelectedMessage(); ok {
			m.dispatch(nav.EnterReply{ChannelID: target.ChannelKey, MessageID: target.ID})
		}
	case key.Matches(msg, k.React):
		if target, ok := m.state.SelectedMessage(); ok {
			m.dispatch(nav.EnterReact{ChannelID: target.ChannelKey, MessageID: target.ID})
		}
	case key.Matches(msg, k.Edit):
		m.startEdit()
	case key.Matches(msg, k.Delete):
		return m.deleteSelected()
	case key.Matches(msg, k.Reader):
		return m.enterReader()
	case key.Matches(msg, k.Follow):
		return m.toggleFollow()
	case key.Matches(msg, k.Copy):
		if target, ok := m.state.SelectedMessage(); ok {
			return copyCmd(target.Body)
		}
	case key.Matches(msg, k.Refresh):
		if m.state.Loading {
			return nil
		}
		return m.refreshCmd()
	}
	return nil
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.dispatch(nav.Cancel{})
	case key.Matches(msg, k.Newline):
		m.dispatch(nav.InsertText{Text: "\n"})
	case key.Matches(msg, k.Submit):
		return m.submit()
	case key.Matches(msg, k.Backspace):
		m.dispatch(nav.DeleteBackward{})
	case key.Matches(msg, k.DeleteFwd):
		m.dispatch(nav.DeleteForward{})
	case key.Matches(msg, k.Left):
		m.dispatch(nav.MoveCursor{Delta: -1})
	case key.Matches(msg, k.Right):
		m.dispatch(nav.MoveCursor{Delta: 1})
	case key.Matches(msg, k.Home):
		m.dispatch(nav.CursorHome{})
	case key.Matches(msg, k.End):
		m.dispatch(nav.CursorEnd{})
	case msg.Type == tea.KeySpace:
		m.dispatch(nav.InsertText{Text: " "})
	case msg.Type == tea.KeyRunes:
		m.dispatch(nav.InsertText{Text: string(msg.Runes)})
	}
	return nil
}

func (m *Model) handleReaderKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.dispatch(nav.Cancel{})
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Up):
		return m.readerScroll(-1)
	case key.Matches(msg, k.Down):
		return m.readerScroll(1)
	case key.Matches(msg, k.PageUp):
		return m.readerScroll(-m.state.VisibleCount)
	case key.Matches(msg, k.PageDown):
		return m.readerScroll(m.state.VisibleCount)
	case key.Matches(msg, k.NextChannel):
		m.dispatch(nav.ReaderFocusAdjacent{Delta: 1})
	case key.Matches(msg, k.PrevChannel):
		m.dispatch(nav.ReaderFocusAdjacent{Delta: -1})
	case key.Matches(msg, k.Open):
		if target, ok := m.state.ReaderMessage(); ok {
			m.dispatch(nav.ShowModal{Title: "@" + target.Author, Body: messageDetail(target, m.state.Cols)})
		}
	case key.Matches(msg, k.Reply):
		if target, ok := m.state.ReaderMessage(); ok {
			m.dispatch(nav.EnterReply{ChannelID: m.state.ReaderChannel, MessageID: target.ID})
		}
	case key.Matches(msg, k.React):
		if target, ok := m.state.ReaderMessage(); ok {
			m.dispatch(nav.EnterReact{ChannelID: m.state.ReaderChannel, MessageID: target.ID})
		}
	case key.Matches(msg, k.Copy):
		if target, ok := m.state.ReaderMessage(); ok {
			return copyCmd(target.Body)
		}
	}
	return nil
}

// readerScroll moves through the reader window and pages in older history
// when scrolling up from the oldest loaded message.
func (m *Model) readerScroll(delta int) tea.Cmd {
	id := m.state.ReaderChannel
	atOldest := m.state.ReaderAtOldest()
	m.dispatch(nav.ReaderScroll{Delta: delta})
	if delta >= 0 || !atOldest || m.state.Loading {
		return nil
	}
	data := m.state.Data[id]
	ch, ok := m.state.Channel(id)
	if !ok || !data.HasMore {
		return nil
	}
	m.dispatch(nav.SetStatus{Text: "Loading older messages…"})
	return m.loadOlderCmd(ch, data.Messages)
}

// activate is enter in navigation: toggle a section or channel, open a
// message, or start writing on an input row.
func (m *Model) activate() tea.Cmd {
	item, ok := m.state.SelectedItem()
	if !ok {
		return nil
	}
	switch item.Kind {
	case nav.ItemHeader:
		if m.state.Loading {
			return nil
		}
		return m.toggleSectionCmd(item.Label)
	case nav.ItemChannel:
		if m.state.IsExpanded(item.ChannelID) {
			m.dispatch(nav.Collapse{ChannelID: item.ChannelID})
			m.syncLoading()
			return nil
		}
		return m.expand(item.ChannelID)
	case nav.ItemMessage:
		if target, ok := m.state.SelectedMessage(); ok {
			m.dispatch(nav.ShowModal{Title: "@" + target.Author, Body: messageDetail(target, m.state.Cols)})
		}
	case nav.ItemInput:
		m.dispatch(nav.EnterCompose{ChannelID: item.ChannelID})
	}
	return nil
}

func (m *Model) expandSelected() tea.Cmd {
	id, ok := m.selectedChannelKey()
	if !ok || m.state.IsExpanded(id) {
		return nil
	}
	return m.expand(id)
}

// expand opens a channel and starts its load.
func (m *Model) expand(id string) tea.Cmd {
	ch, ok := m.state.Channel(id)
	if !ok {
		return nil
	}
	m.dispatch(nav.Expand{ChannelID: id})
	m.syncLoading()
	if !m.state.IsExpanded(id) {
		return nil
	}
	return m.loadCmd(ch, m.state.Data[id].Generation)
}

func (m *Model) startCompose() tea.Cmd {
	id, ok := m.selectedChannelKey()
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	if !m.state.IsExpanded(id) {
		cmd = m.expand(id)
	}
	m.dispatch(nav.EnterCompose{ChannelID: id})
	return cmd
}

func (m *Model) startEdit() {
	target, ok := m.state.SelectedMessage()
	if !ok {
		return
	}
	if target.Author != m.username {
		m.dispatch(nav.SetStatus{Text: "can only edit your own messages", IsError: true})
		return
	}
	m.dispatch(nav.EnterEdit{ChannelID: target.ChannelKey, MessageID: target.ID, Text: target.Body})
}

func (m *Model) deleteSelected() tea.Cmd {
	target, ok := m.state.SelectedMessage()
	if !ok {
		return nil
	}
	if target.Author != m.username {
		m.dispatch(nav.SetStatus{Text: "can only delete your own messages", IsError: true})
		return nil
	}
	ch, ok := m.state.Channel(target.ChannelKey)
	if !ok {
		return nil
	}
	return m.deleteCmd(ch, target.ID)
}

func (m *Model) enterReader() tea.Cmd {
	id, ok := m.selectedChannelKey()
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	if !m.state.IsExpanded(id) {
		cmd = m.expand(id)
	}
	m.dispatch(nav.EnterReader{ChannelID: id})
	return cmd
}

func (m *Model) toggleFollow() tea.Cmd {
	id, ok := m.selectedChannelKey()
	if !ok || m.state.Loading {
		return nil
	}
	ch, ok := m.state.Channel(id)
	if !ok {
		return nil
	}
	return m.followCmd(ch, ch.Unfollowed || !ch.Following)
}

// submit sends the compose buffer according to its target: an edit, a
// reaction, or a new message (optionally a reply).
func (m *Model) submit() tea.Cmd {
	compose := m.state.Compose
	ch, ok := m.state.Channel(compose.ChannelID)
	if !ok {
		m.dispatch(nav.Cancel{})
		return nil
	}
	text := strings.TrimSpace(compose.Text)

	if strings.HasPrefix(compose.Text, attachPrefix) {
		return m.attach(strings.TrimSpace(strings.TrimPrefix(compose.Text, attachPrefix)))
	}

	switch {
	case compose.EditTarget != "":
		if text == "" {
			return nil
		}
		m.dispatch(nav.Cancel{})
		return m.editCmd(ch, compose.EditTarget, text)
	case compose.ReactTarget != "":
		if text == "" {
			return nil
		}
		m.dispatch(nav.Cancel{})
		return m.reactCmd(ch, compose.ReactTarget, text)
	}

	if text == "" && len(compose.Attachments) == 0 {
		return nil
	}
	opts := platform.SendOptions{
		Channel:     ch,
		Body:        text,
		ReplyTo:     compose.ReplyTarget,
		Attachments: compose.Attachments,
	}
	m.dispatch(nav.ResetCompose{})
	if opts.ReplyTo != "" {
		m.dispatch(nav.Cancel{})
	}
	return m.sendCmd(opts)
}

// attach adds a file to the pending message and clears the typed command.
func (m *Model) attach(path string) tea.Cmd {
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		m.dispatch(nav.SetStatus{Text: "no such file: " + path, IsError: true})
		return nil
	}
	m.dispatch(
		nav.ClearText{},
		nav.AddAttachment{Attachment: types.Attachment{Name: filepath.Base(path), Path: path}},
		nav.SetStatus{Text: "Attached " + filepath.Base(path)},
	)
	return nil
}

// selectedChannelKey is the channel of the selected row, whatever its kind.
func (m *Model) selectedChannelKey() (string, bool) {
	item, ok := m.state.SelectedItem()
	if !ok || item.ChannelID == "" {
		return "", false
	}
	return item.ChannelID, true
}

// focusedBody is the body of the message the user is looking at.
func (m *Model) focusedBody() (string, bool) {
	if target, ok := m.state.ReaderMessage(); ok {
		return target.Body, true
	}
	if target, ok := m.state.SelectedMessage(); ok {
		return target.Body, true
	}
	return "", false
}
