// Package memory is an in-process platform used by tests and demo mode.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
)

// Adapter keeps channels and messages in memory and publishes every change
// to its subscribers.
type Adapter struct {
	name     string
	username string
	now      func() time.Time

	mu       sync.Mutex
	channels []types.Channel
	messages map[string][]types.Message
	seq      int
	subs     map[*subscriber]struct{}
}

type subscriber struct {
	created  chan types.MessageEvent
	updated  chan types.MessageEvent
	deleted  chan types.MessageEvent
	channels chan struct{}
	done     <-chan struct{}
}

// New returns an empty adapter. Messages sent through it are authored by
// username.
func New(name, username string) *Adapter {
	return &Adapter{
		name:     name,
		username: username,
		now:      time.Now,
		messages: map[string][]types.Message{},
		subs:     map[*subscriber]struct{}{},
	}
}

func (a *Adapter) Name() string { return a.name }

// AddChannel registers a channel and signals subscribers.
func (a *Adapter) AddChannel(ch types.Channel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch.Platform = a.name
	for i := range a.channels {
		if a.channels[i].ID == ch.ID {
			a.channels[i] = ch
			a.signalChannelsLocked()
			return
		}
	}
	a.channels = append(a.channels, ch)
	a.signalChannelsLocked()
}

// Seed appends messages without publishing events. Empty ids are filled in.
func (a *Adapter) Seed(channelID string, msgs ...types.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range msgs {
		a.messages[channelID] = append(a.messages[channelID], a.prepareLocked(channelID, m))
	}
}

// Push simulates a message arriving from elsewhere and publishes it.
func (a *Adapter) Push(channelID, author, body string) (types.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasChannelLocked(channelID) {
		return types.Message{}, fmt.Errorf("%s: %w", channelID, platform.ErrUnknownChannel)
	}
	msg := a.prepareLocked(channelID, types.Message{Author: author, Body: body})
	a.messages[channelID] = append(a.messages[channelID], msg)
	a.publishLocked(types.EventCreated, msg, msg.ID)
	return msg, nil
}

func (a *Adapter) prepareLocked(channelID string, m types.Message) types.Message {
	a.seq++
	if m.ID == "" {
		m.ID = fmt.Sprintf("%s-%d", a.name, a.seq)
	}
	if m.TS == 0 {
		m.TS = a.now().Unix()
	}
	m.ChannelKey = types.ChannelKey(a.name, channelID)
	return m
}

func (a *Adapter) hasChannelLocked(channelID string) bool {
	for _, ch := range a.channels {
		if ch.ID == channelID {
			return true
		}
	}
	return false
}

func (a *Adapter) Channels(ctx context.Context) ([]types.Channel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.Channel(nil), a.channels...), nil
}

func (a *Adapter) SetFollowing(ctx context.Context, channelID string, following bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.channels {
		if a.channels[i].ID == channelID {
			a.channels[i].Following = following
			a.channels[i].Unfollowed = !following
			if following {
				a.channels[i].New = false
			}
			a.signalChannelsLocked()
			return nil
		}
	}
	return fmt.Errorf("%s: %w", channelID, platform.ErrUnknownChannel)
}

func (a *Adapter) LoadMessages(ctx context.Context, ch types.Channel, limit int) ([]types.Message, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasChannelLocked(ch.ID) {
		return nil, false, fmt.Errorf("%s: %w", ch.ID, platform.ErrUnknownChannel)
	}
	all := a.messages[ch.ID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}
	return cloneMessages(all[start:]), start > 0, nil
}

func (a *Adapter) LoadOlderMessages(ctx context.Context, ch types.Channel, beforeID string, limit int) (platform.OlderPage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := a.messages[ch.ID]
	idx := indexOf(all, beforeID)
	if idx < 0 {
		return platform.OlderPage{}, fmt.Errorf("%s: %w", beforeID, platform.ErrUnknownMessage)
	}
	start := 0
	if limit > 0 && idx > limit {
		start = idx - limit
	}
	older := cloneMessages(all[start:idx])
	return platform.OlderPage{Messages: older, NewCount: len(older), HasMore: start > 0}, nil
}

func (a *Adapter) SendMessage(ctx context.Context, opts platform.SendOptions) (types.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasChannelLocked(opts.Channel.ID) {
		return types.Message{}, fmt.Errorf("%s: %w", opts.Channel.ID, platform.ErrUnknownChannel)
	}
	msg := types.Message{Author: a.username, Body: opts.Body, Attachments: opts.Attachments}
	if opts.ReplyTo != "" {
		replyTo := opts.ReplyTo
		msg.ReplyTo = &replyTo
	}
	msg = a.prepareLocked(opts.Channel.ID, msg)
	a.messages[opts.Channel.ID] = append(a.messages[opts.Channel.ID], msg)
	a.publishLocked(types.EventCreated, msg, msg.ID)
	return msg, nil
}

func (a *Adapter) EditMessage(ctx context.Context, ch types.Channel, messageID, body string) (types.Message, error) {
	return a.update(ch.ID, messageID, func(m *types.Message) {
		edited := a.now().Unix()
		m.Body = body
		m.EditedAt = &edited
	})
}

func (a *Adapter) AddReaction(ctx context.Context, ch types.Channel, messageID, emoji string) (types.Message, error) {
	return a.update(ch.ID, messageID, func(m *types.Message) {
		reactions := make([]types.Reaction, 0, len(m.Reactions)+1)
		found := false
		for _, r := range m.Reactions {
			users := append([]string(nil), r.Users...)
			if r.Emoji == emoji {
				found = true
				if !contains(users, a.username) {
					users = append(users, a.username)
				}
			}
			reactions = append(reactions, types.Reaction{Emoji: r.Emoji, Users: users})
		}
		if !found {
			reactions = append(reactions, types.Reaction{Emoji: emoji, Users: []string{a.username}})
		}
		m.Reactions = reactions
	})
}

func (a *Adapter) update(channelID, messageID string, fn func(*types.Message)) (types.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := a.messages[channelID]
	idx := indexOf(all, messageID)
	if idx < 0 {
		return types.Message{}, fmt.Errorf("%s: %w", messageID, platform.ErrUnknownMessage)
	}
	msg := all[idx]
	fn(&msg)
	next := cloneMessages(all)
	next[idx] = msg
	a.messages[channelID] = next
	a.publishLocked(types.EventUpdated, msg, msg.ID)
	return msg, nil
}

func (a *Adapter) DeleteMessage(ctx context.Context, ch types.Channel, messageID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := a.messages[ch.ID]
	idx := indexOf(all, messageID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", messageID, platform.ErrUnknownMessage)
	}
	next := make([]types.Message, 0, len(all)-1)
	next = append(next, all[:idx]...)
	a.messages[ch.ID] = append(next, all[idx+1:]...)
	a.publishLocked(types.EventDeleted, types.Message{ChannelKey: types.ChannelKey(a.name, ch.ID)}, messageID)
	return nil
}

// Subscribe registers a subscriber until ctx ends.
func (a *Adapter) Subscribe(ctx context.Context) (platform.Subscription, error) {
	sub := &subscriber{
		created:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		updated:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		deleted:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		channels: make(chan struct{}, 1),
		done:     ctx.Done(),
	}
	a.mu.Lock()
	a.subs[sub] = struct{}{}
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		delete(a.subs, sub)
		close(sub.created)
		close(sub.updated)
		close(sub.deleted)
		close(sub.channels)
		a.mu.Unlock()
	}()

	return platform.Subscription{
		Created:  sub.created,
		Updated:  sub.updated,
		Deleted:  sub.deleted,
		Channels: sub.channels,
	}, nil
}

// publishLocked sends under a.mu, so a subscriber cannot be closed mid-send.
func (a *Adapter) publishLocked(kind types.EventKind, msg types.Message, messageID string) {
	event := types.MessageEvent{Kind: kind, ChannelKey: msg.ChannelKey, MessageID: messageID}
	if kind != types.EventDeleted {
		event.Message = msg
	}
	for sub := range a.subs {
		out := sub.created
		switch kind {
		case types.EventUpdated:
			out = sub.updated
		case types.EventDeleted:
			out = sub.deleted
		}
		select {
		case out <- event:
		case <-sub.done:
		}
	}
}

func (a *Adapter) signalChannelsLocked() {
	for sub := range a.subs {
		select {
		case sub.channels <- struct{}{}:
		default:
		}
	}
}

func indexOf(msgs []types.Message, id string) int {
	for i, m := range msgs {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func cloneMessages(in []types.Message) []types.Message {
	return append([]types.Message(nil), in...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
