package chat

import (
	"time"

	"github.com/adamavenir/tern/internal/nav"
	tea "github.com/charmbracelet/bubbletea"
)

const doubleClickWindow = 400 * time.Millisecond

// handleMouse selects the clicked row; a second click on the same row
// activates it like enter. The wheel moves the selection.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.mouse || m.state.Modal != nil || m.state.View != nav.ViewList {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.state.Focus == nav.FocusReader {
			return m.readerScroll(-1)
		}
		m.dispatch(nav.MoveBy{Delta: -1})
		return nil
	case tea.MouseButtonWheelDown:
		if m.state.Focus == nav.FocusReader {
			return m.readerScroll(1)
		}
		m.dispatch(nav.MoveBy{Delta: 1})
		return nil
	}
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return nil
	}
	if m.state.Focus != nav.FocusNavigation {
		return nil
	}

	start, end := m.state.VisibleRange()
	for idx := start; idx < end; idx++ {
		if !m.zones.Get(rowZone(idx)).InBounds(msg) {
			continue
		}
		return m.clickRow(idx, time.Now())
	}
	return nil
}

func (m *Model) clickRow(idx int, now time.Time) tea.Cmd {
	repeat := idx == m.lastClickIndex && now.Sub(m.lastClickAt) < doubleClickWindow
	m.lastClickIndex, m.lastClickAt = idx, now
	m.dispatch(nav.SelectIndex{Index: idx})
	if repeat {
		m.lastClickIndex = -1
		return m.activate()
	}
	return nil
}
