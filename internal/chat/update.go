package chat

import (
	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/types"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.dispatch(nav.Resize{Rows: msg.Height, Cols: msg.Width})
		m.help.Width = m.state.Cols
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case nav.LoadFailed:
		before := m.state.Data[msg.ChannelID].Generation
		m.dispatch(msg)
		if before == msg.Generation {
			m.dispatch(nav.SetStatus{Text: "load failed: " + msg.Err, IsError: true})
		}
		m.syncLoading()
		return m, nil

	case nav.Action:
		m.dispatch(msg)
		m.syncLoading()
		return m, nil

	case olderMsg:
		if m.bridge.Stale(msg.channelID, msg.seq) {
			return m, nil
		}
		m.dispatch(
			nav.ReplaceMessages{ChannelID: msg.channelID, Messages: msg.messages, HasMore: msg.hasMore},
			nav.ClearStatus{},
		)
		m.syncLoading()
		return m, nil

	case listingMsg:
		m.dispatch(nav.SetChannels{Channels: msg.listing.Channels, DisplayItems: msg.listing.DisplayItems})
		if msg.status != "" {
			m.dispatch(nav.SetStatus{Text: msg.status})
		}
		m.syncLoading()
		return m, nil

	case statusMsg:
		m.dispatch(nav.SetStatus{Text: string(msg)})
		return m, nil

	case errMsg:
		m.dispatch(nav.SetStatus{Text: msg.Error(), IsError: true})
		m.syncLoading()
		return m, nil

	case subscribedMsg:
		m.sub = msg.sub
		m.subscribed = true
		return m, tea.Batch(
			waitForEvent(m.sub.Created),
			waitForEvent(m.sub.Updated),
			waitForEvent(m.sub.Deleted),
			waitForChannels(m.sub.Channels),
		)

	case eventMsg:
		return m, tea.Batch(m.rearm(msg.event.Kind), m.bridge.Handle(msg.event, m.state.IsExpanded(msg.event.ChannelKey)))

	case syncedMsg:
		return m, m.applySynced(msg)

	case channelsChangedMsg:
		return m, tea.Batch(waitForChannels(m.sub.Channels), m.refreshCmd())

	case subscriptionClosedMsg:
		if m.subscribed {
			logging.Debug("chat", "subscription closed")
			m.subscribed = false
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) rearm(kind types.EventKind) tea.Cmd {
	switch kind {
	case types.EventUpdated:
		return waitForEvent(m.sub.Updated)
	case types.EventDeleted:
		return waitForEvent(m.sub.Deleted)
	default:
		return waitForEvent(m.sub.Created)
	}
}

// applySynced installs the bridge's list. A channel that is still loading,
// or whose cache had nothing to apply the event to, gets a fresh load
// instead, so the event cannot be lost to a load that started before it.
// Snapshots overtaken by a later cache write are dropped.
func (m *Model) applySynced(msg syncedMsg) tea.Cmd {
	if !m.state.IsExpanded(msg.channelID) {
		return nil
	}
	data := m.state.Data[msg.channelID]
	if msg.pending || data.Loading {
		return m.reload(msg.channelID)
	}
	if m.bridge.Stale(msg.channelID, msg.seq) {
		return nil
	}
	m.dispatch(nav.ReplaceMessages{ChannelID: msg.channelID, Messages: msg.messages, HasMore: data.HasMore})
	return nil
}

// reload starts a load under a new generation.
func (m *Model) reload(key string) tea.Cmd {
	ch, ok := m.state.Channel(key)
	if !ok || !m.state.IsExpanded(key) {
		return nil
	}
	m.dispatch(nav.LoadStarted{ChannelID: key})
	m.syncLoading()
	return m.loadCmd(ch, m.state.Data[key].Generation)
}

// syncLoading keeps the advisory loading flag in step with channel loads.
func (m *Model) syncLoading() {
	loading := false
	for key, data := range m.state.Data {
		if m.state.Expanded[key] && data.Loading {
			loading = true
			break
		}
	}
	if loading != m.state.Loading {
		m.dispatch(nav.SetLoading{Loading: loading})
	}
}
