package chat

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/platform/memory"
	"github.com/adamavenir/tern/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/goleak"
)

func TestBridgeFollowsLiveSubscription(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, ctx)
	m := f.model
	press(t, m, "enter")

	out := make(chan tea.Msg, 64)
	var wg sync.WaitGroup
	spawn(m.Init(), out, &wg)

	sub := await[subscribedMsg](t, out)
	_, cmd := m.Update(sub)
	spawn(cmd, out, &wg)

	if _, err := f.adapter.Push("general", "kim", "fresh"); err != nil {
		t.Fatalf("push: %v", err)
	}
	ev := await[eventMsg](t, out)
	if ev.event.ChannelKey != keyGeneral {
		t.Fatalf("event channel: got %q", ev.event.ChannelKey)
	}
	_, cmd = m.Update(ev)
	spawn(cmd, out, &wg)

	synced := await[syncedMsg](t, out)
	_, _ = m.Update(synced)
	msgs := m.State().Data[keyGeneral].Messages
	if len(msgs) != 7 || msgs[len(msgs)-1].Body != "fresh" {
		t.Fatalf("after push: got %v", bodies(msgs))
	}
	if !m.State().Data[keyGeneral].HasMore {
		t.Fatalf("push dropped the has-more flag")
	}

	if _, err := f.adapter.Push("random", "ola", "elsewhere"); err != nil {
		t.Fatalf("push: %v", err)
	}
	ev = await[eventMsg](t, out)
	_, cmd = m.Update(ev)
	spawn(cmd, out, &wg)
	mark := await[nav.MarkUnread](t, out)
	_, _ = m.Update(mark)
	if got := m.State().Unread[keyRandom]; got != 1 {
		t.Fatalf("unread: got %d want 1", got)
	}

	cancel()
	m.Close()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return
		case msg := <-out:
			if _, ok := msg.(subscriptionClosedMsg); ok {
				_, _ = m.Update(msg)
			}
		}
	}
}

func TestBridgeEventBeforeFirstFillAsksForReload(t *testing.T) {
	cache := memory.NewCache()
	b := NewBridge(cache, "sam", false)
	cmd := b.Handle(types.MessageEvent{Kind: types.EventDeleted, ChannelKey: keyGeneral, MessageID: "m1"}, true)
	if cmd == nil {
		t.Fatal("expanded channel should get a sync command")
	}
	synced, ok := cmd().(syncedMsg)
	if !ok || !synced.pending || synced.channelID != keyGeneral {
		t.Fatalf("unfilled cache: got %+v want a pending sync", synced)
	}
}

// gatedAdapter holds its first LoadMessages call after the fetch, before the
// caller gets to fill the cache.
type gatedAdapter struct {
	*memory.Adapter
	once    sync.Once
	fetched chan struct{}
	release chan struct{}
}

func (g *gatedAdapter) LoadMessages(ctx context.Context, ch types.Channel, limit int) ([]types.Message, bool, error) {
	msgs, more, err := g.Adapter.LoadMessages(ctx, ch, limit)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.fetched)
		<-g.release
	}
	return msgs, more, err
}

func TestPushBetweenFetchAndCacheFillIsKept(t *testing.T) {
	adapter := memory.New("mem", "sam")
	adapter.AddChannel(types.Channel{ID: "general", Name: "general", Following: true})
	for i := 0; i < 3; i++ {
		adapter.Seed("general", types.Message{Author: "kim", Body: fmt.Sprintf("g%d", i), TS: int64(100 + i)})
	}
	gate := &gatedAdapter{Adapter: adapter, fetched: make(chan struct{}), release: make(chan struct{})}
	dir, err := platform.NewDirectory(nil, nil)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	mux, err := platform.NewMux(dir, gate)
	if err != nil {
		t.Fatalf("mux: %v", err)
	}
	cache := memory.NewCache()
	m, err := NewModel(context.Background(), Options{Providers: mux, Cache: cache, Username: "sam", VisibleCount: 5, LoadLimit: 6})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(m.Close)

	out := make(chan tea.Msg, 64)
	var wg sync.WaitGroup
	_, cmd := m.Update(keyMsg("enter"))
	spawn(cmd, out, &wg)
	<-gate.fetched

	pushed, err := adapter.Push("general", "kim", "fresh")
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	synced, ok := m.bridge.Handle(types.MessageEvent{
		Kind: types.EventCreated, ChannelKey: keyGeneral, MessageID: pushed.ID, Message: pushed,
	}, true)().(syncedMsg)
	if !ok || !synced.pending {
		t.Fatalf("push before fill: got %+v want a pending sync", synced)
	}
	_, reload := m.Update(synced)
	run(t, m, reload)

	// The first load finishes last: its fill and its result are both stale.
	close(gate.release)
	loaded := await[nav.MessagesLoaded](t, out)
	_, _ = m.Update(loaded)
	wg.Wait()

	want := []string{"g0", "g1", "g2", "fresh"}
	if got := bodies(m.State().Data[keyGeneral].Messages); !reflect.DeepEqual(got, want) {
		t.Fatalf("messages: got %v want %v", got, want)
	}
	cached, _, _ := cache.GetCachedMessages("mem", "general")
	if got := bodies(cached); !reflect.DeepEqual(got, want) {
		t.Fatalf("cache: got %v want %v", got, want)
	}
}

func TestBridgeAppliesEventsInArrivalOrder(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model
	press(t, m, "enter")

	first := types.Message{ID: "x1", ChannelKey: keyGeneral, Author: "kim", Body: "first", TS: 200}
	second := types.Message{ID: "x2", ChannelKey: keyGeneral, Author: "kim", Body: "second", TS: 201}
	created1 := m.bridge.Handle(types.MessageEvent{Kind: types.EventCreated, ChannelKey: keyGeneral, MessageID: "x1", Message: first}, true)
	created2 := m.bridge.Handle(types.MessageEvent{Kind: types.EventCreated, ChannelKey: keyGeneral, MessageID: "x2", Message: second}, true)
	deleted := m.bridge.Handle(types.MessageEvent{Kind: types.EventDeleted, ChannelKey: keyGeneral, MessageID: "x1"}, true)

	// The commands run newest first, and their results land oldest first.
	late := deleted()
	mid := created2()
	early := created1()
	for _, msg := range []tea.Msg{early, mid, late} {
		_, _ = m.Update(msg)
	}

	got := bodies(m.State().Data[keyGeneral].Messages)
	if got[len(got)-1] != "second" {
		t.Fatalf("newest: got %v", got)
	}
	for _, body := range got {
		if body == "first" {
			t.Fatalf("deleted message came back: %v", got)
		}
	}
}

func TestStaleOlderPageIsDropped(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model
	press(t, m, "enter")

	ch, _ := m.State().Channel(keyGeneral)
	current := m.State().Data[keyGeneral].Messages
	merged, seq, err := m.bridge.Merge(ch, nil, current)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	pushed := types.Message{ID: "x1", ChannelKey: keyGeneral, Author: "kim", Body: "pushed", TS: 300}
	_, _ = m.Update(m.bridge.Handle(types.MessageEvent{Kind: types.EventCreated, ChannelKey: keyGeneral, MessageID: "x1", Message: pushed}, true)())

	_, _ = m.Update(olderMsg{channelID: keyGeneral, messages: merged, seq: seq})
	got := m.State().Data[keyGeneral].Messages
	if got[len(got)-1].Body != "pushed" {
		t.Fatalf("older page overwrote a later push: %v", bodies(got))
	}
}

func TestBridgeIgnoresEditsToCollapsedChannels(t *testing.T) {
	b := NewBridge(memory.NewCache(), "sam", true)
	ev := types.MessageEvent{Kind: types.EventUpdated, ChannelKey: keyRandom, MessageID: "m1"}
	if cmd := b.Handle(ev, false); cmd != nil {
		t.Fatalf("edit on a collapsed channel should do nothing")
	}
}

func TestBridgeDeleteRemovesFromCache(t *testing.T) {
	cache := memory.NewCache()
	seed := []types.Message{
		{ID: "a", ChannelKey: keyGeneral, Body: "one", TS: 1},
		{ID: "b", ChannelKey: keyGeneral, Body: "two", TS: 2},
	}
	if err := cache.ReplaceCachedMessages("mem", "general", seed); err != nil {
		t.Fatalf("fill: %v", err)
	}
	b := NewBridge(cache, "sam", false)
	msg := b.Handle(types.MessageEvent{Kind: types.EventDeleted, ChannelKey: keyGeneral, MessageID: "a"}, true)()
	synced, ok := msg.(syncedMsg)
	if !ok {
		t.Fatalf("got %T want syncedMsg", msg)
	}
	if len(synced.messages) != 1 || synced.messages[0].ID != "b" {
		t.Fatalf("after delete: got %v", bodies(synced.messages))
	}
}
