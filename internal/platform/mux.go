package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/types"
)

// Mux presents several adapters as one provider. Message operations are
// routed by Channel.Platform; listings are merged and sectioned by the
// Directory.
type Mux struct {
	adapters []Adapter
	byName   map[string]Adapter
	dir      *Directory
}

// NewMux builds a Mux. Adapter names must be unique.
func NewMux(dir *Directory, adapters ...Adapter) (*Mux, error) {
	if dir == nil {
		dir = &Directory{collapsed: map[string]bool{}}
	}
	m := &Mux{byName: map[string]Adapter{}, dir: dir}
	for _, a := range adapters {
		if _, dup := m.byName[a.Name()]; dup {
			return nil, fmt.Errorf("duplicate platform %q", a.Name())
		}
		m.byName[a.Name()] = a
		m.adapters = append(m.adapters, a)
	}
	return m, nil
}

func (m *Mux) adapterFor(ch types.Channel) (Adapter, error) {
	a, ok := m.byName[ch.Platform]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ch.Platform, ErrUnknownPlatform)
	}
	return a, nil
}

// ListChannels merges every adapter's channels in registration order.
func (m *Mux) ListChannels(ctx context.Context) (Listing, error) {
	var all []types.Channel
	for _, a := range m.adapters {
		channels, err := a.Channels(ctx)
		if err != nil {
			return Listing{}, fmt.Errorf("list %s channels: %w", a.Name(), err)
		}
		for _, ch := range channels {
			ch.Platform = a.Name()
			all = append(all, ch)
		}
	}
	return m.dir.Build(all), nil
}

// ToggleSection collapses or expands a directory section.
func (m *Mux) ToggleSection(ctx context.Context, name string) (Listing, error) {
	m.dir.Toggle(name)
	return m.ListChannels(ctx)
}

// Follow marks a channel as followed.
func (m *Mux) Follow(ctx context.Context, ch types.Channel) (Listing, error) {
	return m.setFollowing(ctx, ch, true)
}

// Unfollow marks a channel as not followed.
func (m *Mux) Unfollow(ctx context.Context, ch types.Channel) (Listing, error) {
	return m.setFollowing(ctx, ch, false)
}

func (m *Mux) setFollowing(ctx context.Context, ch types.Channel, following bool) (Listing, error) {
	a, err := m.adapterFor(ch)
	if err != nil {
		return Listing{}, err
	}
	if err := a.SetFollowing(ctx, ch.ID, following); err != nil {
		return Listing{}, err
	}
	return m.ListChannels(ctx)
}

func (m *Mux) LoadMessages(ctx context.Context, ch types.Channel, limit int) ([]types.Message, bool, error) {
	a, err := m.adapterFor(ch)
	if err != nil {
		return nil, false, err
	}
	return a.LoadMessages(ctx, ch, limit)
}

func (m *Mux) LoadOlderMessages(ctx context.Context, ch types.Channel, beforeID string, limit int) (OlderPage, error) {
	a, err := m.adapterFor(ch)
	if err != nil {
		return OlderPage{}, err
	}
	return a.LoadOlderMessages(ctx, ch, beforeID, limit)
}

func (m *Mux) SendMessage(ctx context.Context, opts SendOptions) (types.Message, error) {
	a, err := m.adapterFor(opts.Channel)
	if err != nil {
		return types.Message{}, err
	}
	return a.SendMessage(ctx, opts)
}

func (m *Mux) EditMessage(ctx context.Context, ch types.Channel, messageID, body string) (types.Message, error) {
	a, err := m.adapterFor(ch)
	if err != nil {
		return types.Message{}, err
	}
	return a.EditMessage(ctx, ch, messageID, body)
}

func (m *Mux) DeleteMessage(ctx context.Context, ch types.Channel, messageID string) error {
	a, err := m.adapterFor(ch)
	if err != nil {
		return err
	}
	return a.DeleteMessage(ctx, ch, messageID)
}

func (m *Mux) AddReaction(ctx context.Context, ch types.Channel, messageID, emoji string) (types.Message, error) {
	a, err := m.adapterFor(ch)
	if err != nil {
		return types.Message{}, err
	}
	return a.AddReaction(ctx, ch, messageID, emoji)
}

// Subscribe fans the subscriptions of every adapter into one. The merged
// channels close once ctx is done and every forwarder has stopped.
func (m *Mux) Subscribe(ctx context.Context) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	created := make(chan types.MessageEvent, SubscriptionBuffer)
	updated := make(chan types.MessageEvent, SubscriptionBuffer)
	deleted := make(chan types.MessageEvent, SubscriptionBuffer)
	channels := make(chan struct{}, SubscriptionBuffer)

	var wg sync.WaitGroup
	for _, a := range m.adapters {
		sub, err := a.Subscribe(ctx)
		if err != nil {
			cancel()
			wg.Wait()
			return Subscription{}, fmt.Errorf("subscribe %s: %w", a.Name(), err)
		}
		logging.Debug("mux", "subscribed to %s", a.Name())
		wg.Add(4)
		go forward(ctx, &wg, sub.Created, created)
		go forward(ctx, &wg, sub.Updated, updated)
		go forward(ctx, &wg, sub.Deleted, deleted)
		go forward(ctx, &wg, sub.Channels, channels)
	}

	go func() {
		<-ctx.Done()
		cancel()
		wg.Wait()
		close(created)
		close(updated)
		close(deleted)
		close(channels)
	}()

	return Subscription{Created: created, Updated: updated, Deleted: deleted, Channels: channels}, nil
}

func forward[T any](ctx context.Context, wg *sync.WaitGroup, in <-chan T, out chan<- T) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}
}
