package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

// subscribedMsg hands the merged subscription to the model.
type subscribedMsg struct {
	sub platform.Subscription
}

// eventMsg is one pushed message event.
type eventMsg struct {
	event types.MessageEvent
}

// channelsChangedMsg means the channel list should be re-listed.
type channelsChangedMsg struct{}

// subscriptionClosedMsg is returned once a subscription channel is closed.
type subscriptionClosedMsg struct{}

// syncedMsg is a channel's full cached message list after push events were
// applied to the cache. seq orders snapshots of the same channel. pending
// means there was nothing cached to apply the event to, so the channel has
// to be loaded again.
type syncedMsg struct {
	channelID string
	messages  []types.Message
	seq       uint64
	pending   bool
}

func subscribeCmd(ctx context.Context, source platform.EventSource) tea.Cmd {
	return func() tea.Msg {
		sub, err := source.Subscribe(ctx)
		if err != nil {
			return fail("subscribe", err)
		}
		return subscribedMsg{sub: sub}
	}
}

// waitForEvent blocks for the next event on one topic.
func waitForEvent(events <-chan types.MessageEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return subscriptionClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func waitForChannels(signals <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-signals; !ok {
			return subscriptionClosedMsg{}
		}
		return channelsChangedMsg{}
	}
}

// Bridge turns push events into engine actions. It never touches state: for
// an expanded channel it brings the cache up to date and returns the full
// list, which the model installs with nav.ReplaceMessages; for any other
// channel a new message only marks it unread.
//
// Every cache write goes through the bridge. Events are applied in the order
// Handle saw them, whichever command happens to run first.
type Bridge struct {
	cache    platform.Cache
	username string
	notify   bool

	mu     sync.Mutex
	queue  []types.MessageEvent
	seq    uint64
	latest map[string]uint64
	filled map[string]uint64
}

// NewBridge returns a bridge writing through cache. Mentions of username in
// channels that are not expanded raise a desktop notification when notify
// is set.
func NewBridge(cache platform.Cache, username string, notify bool) *Bridge {
	return &Bridge{
		cache:    cache,
		username: username,
		notify:   notify,
		latest:   map[string]uint64{},
		filled:   map[string]uint64{},
	}
}

// Handle returns the command that applies ev. expanded reports whether the
// event's channel is currently expanded. It must be called from Update so
// that the queue follows arrival order.
func (b *Bridge) Handle(ev types.MessageEvent, expanded bool) tea.Cmd {
	key := ev.ChannelKey
	if !expanded {
		if ev.Kind != types.EventCreated {
			return nil
		}
		cmds := []tea.Cmd{func() tea.Msg { return nav.MarkUnread{ChannelID: key} }}
		if b.notify && ev.Message.Author != b.username && core.Mentions(ev.Message.Body, b.username) {
			cmds = append(cmds, notifyCmd(key, ev.Message))
		}
		return tea.Batch(cmds...)
	}
	if b.cache == nil {
		return func() tea.Msg { return syncedMsg{channelID: key, pending: true} }
	}
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
	return func() tea.Msg {
		return b.sync(key)
	}
}

// sync applies every queued event and snapshots the channel.
func (b *Bridge) sync(key string) tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.applyQueuedLocked(); err != nil {
		return fail("cache event", err)
	}
	platformName, channelID := types.SplitChannelKey(key)
	msgs, ok, err := b.cache.GetCachedMessages(platformName, channelID)
	if err != nil {
		return fail("read cache", err)
	}
	if !ok {
		logging.Debug("bridge", "event for %s before its cache was filled", key)
		return syncedMsg{channelID: key, pending: true}
	}
	return syncedMsg{channelID: key, messages: msgs, seq: b.stampLocked(key)}
}

func (b *Bridge) applyQueuedLocked() error {
	var first error
	for _, ev := range b.queue {
		platformName, channelID := types.SplitChannelKey(ev.ChannelKey)
		var err error
		switch ev.Kind {
		case types.EventCreated, types.EventUpdated:
			err = b.cache.UpsertCachedMessage(platformName, channelID, ev.Message)
		case types.EventDeleted:
			err = b.cache.DeleteCachedMessage(platformName, channelID, ev.MessageID)
		}
		if err != nil {
			logging.Warn("bridge", "%s on %s: %v", ev.Kind, ev.ChannelKey, err)
			if first == nil {
				first = fmt.Errorf("%s %s: %w", ev.Kind, ev.ChannelKey, err)
			}
		}
	}
	b.queue = nil
	return first
}

func (b *Bridge) stampLocked(key string) uint64 {
	b.seq++
	b.latest[key] = b.seq
	return b.seq
}

// Fill replaces the cached messages of ch with the result of a load started
// under generation. A fill from a load that an earlier fill already
// superseded is skipped.
func (b *Bridge) Fill(ch types.Channel, generation uint64, msgs []types.Message) error {
	if b.cache == nil {
		return nil
	}
	key := ch.Key()
	b.mu.Lock()
	defer b.mu.Unlock()
	if generation < b.filled[key] {
		return nil
	}
	b.filled[key] = generation
	if err := b.cache.ReplaceCachedMessages(ch.Platform, ch.ID, msgs); err != nil {
		return err
	}
	b.stampLocked(key)
	return nil
}

// Merge puts an older page in front of the cached messages of ch, or of
// current when nothing is cached, and returns the merged list with its seq.
func (b *Bridge) Merge(ch types.Channel, older, current []types.Message) ([]types.Message, uint64, error) {
	if b.cache == nil {
		return mergeMessages(older, current), 0, nil
	}
	key := ch.Key()
	b.mu.Lock()
	defer b.mu.Unlock()
	known := current
	if cached, ok, err := b.cache.GetCachedMessages(ch.Platform, ch.ID); err == nil && ok {
		known = cached
	}
	merged := mergeMessages(older, known)
	if err := b.cache.ReplaceCachedMessages(ch.Platform, ch.ID, merged); err != nil {
		return merged, 0, err
	}
	return merged, b.stampLocked(key), nil
}

// Stale reports whether a snapshot of key with seq was overtaken by a later
// write to the same channel.
func (b *Bridge) Stale(key string, seq uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return seq < b.latest[key]
}
