package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
)

func kinds(items []nav.FlatItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Kind.String()
	}
	return out
}

func TestNewModelStartsOnFirstChannel(t *testing.T) {
	f := newFixture(t, context.Background())
	s := f.model.State()
	if s.Rows != nav.DefaultRows || s.Cols != nav.DefaultCols {
		t.Fatalf("size: got %dx%d want fallback", s.Cols, s.Rows)
	}
	item, ok := s.SelectedItem()
	if !ok || item.ChannelID != keyGeneral {
		t.Fatalf("selection: got %+v", item)
	}
}

func TestEnterExpandsLoadsAndCaches(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	press(t, m, "enter")
	s := m.State()
	data := s.Data[keyGeneral]
	if data.Loading || len(data.Messages) != 6 || !data.HasMore {
		t.Fatalf("loaded data: got loading=%v len=%d hasMore=%v", data.Loading, len(data.Messages), data.HasMore)
	}
	want := []string{"header", "channel", "message", "message", "message", "message", "message", "input", "channel"}
	if got := kinds(s.Items); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("items: got %v want %v", got, want)
	}
	if s.Items[2].MessageID != data.Messages[5].ID {
		t.Fatalf("newest message should sit under the channel row")
	}
	if s.Loading {
		t.Fatalf("loading flag left on")
	}

	cached, ok, err := f.cache.GetCachedMessages("mem", "general")
	if err != nil || !ok || len(cached) != 6 {
		t.Fatalf("cache: got ok=%v len=%d err=%v", ok, len(cached), err)
	}

	press(t, m, "enter")
	if got := len(m.State().Items); got != 3 {
		t.Fatalf("after collapse: got %d items want 3", got)
	}
}

func TestComposeSendGoesThroughBridge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t, ctx)
	m := f.model

	sub, err := f.adapter.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	press(t, m, "enter", "i")
	if m.State().Focus != nav.FocusCompose {
		t.Fatalf("focus: got %v want compose", m.State().Focus)
	}
	typeText(t, m, "hello there")
	press(t, m, "enter")

	s := m.State()
	if s.Compose.Text != "" || s.Focus != nav.FocusCompose {
		t.Fatalf("after send: text %q focus %v", s.Compose.Text, s.Focus)
	}

	var ev types.MessageEvent
	select {
	case ev = <-sub.Created:
	case <-time.After(time.Second):
		t.Fatal("no created event")
	}
	if ev.Message.Author != "sam" || ev.Message.Body != "hello there" {
		t.Fatalf("event: got %+v", ev.Message)
	}

	run(t, m, m.bridge.Handle(ev, m.State().IsExpanded(ev.ChannelKey)))
	msgs := m.State().Data[keyGeneral].Messages
	if len(msgs) != 7 || msgs[len(msgs)-1].Body != "hello there" {
		t.Fatalf("after push: got %v", bodies(msgs))
	}
	if item, _ := m.State().SelectedItem(); item.Kind != nav.ItemInput {
		t.Fatalf("selection moved off the input row: %+v", item)
	}
}

func TestPushToCollapsedChannelMarksUnread(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	pushed, err := f.adapter.Push("random", "ola", "anyone?")
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	ev := types.MessageEvent{Kind: types.EventCreated, ChannelKey: keyRandom, MessageID: pushed.ID, Message: pushed}
	run(t, m, m.bridge.Handle(ev, m.State().IsExpanded(keyRandom)))

	if got := m.State().Unread[keyRandom]; got != 1 {
		t.Fatalf("unread: got %d want 1", got)
	}
	if view := m.View(); !strings.Contains(view, "#random (1)") {
		t.Fatalf("unread badge missing from view:\n%s", view)
	}
}

func TestPushForOtherChannelLeavesLoadingChannelAlone(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	m.dispatch(nav.Expand{ChannelID: keyGeneral})
	before := m.State().Data[keyGeneral]

	pushed, _ := f.adapter.Push("random", "ola", "ping")
	run(t, m, m.bridge.Handle(types.MessageEvent{
		Kind: types.EventCreated, ChannelKey: keyRandom, MessageID: pushed.ID, Message: pushed,
	}, false))

	after := m.State().Data[keyGeneral]
	if !after.Loading || after.Generation != before.Generation || len(after.Messages) != len(before.Messages) {
		t.Fatalf("loading channel changed: before %+v after %+v", before, after)
	}
}

func TestPushDuringLoadRestartsLoad(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	// A previous visit left the cache filled.
	old, _, _ := f.adapter.LoadMessages(context.Background(), types.Channel{ID: "general", Platform: "mem"}, 6)
	if err := f.cache.ReplaceCachedMessages("mem", "general", old); err != nil {
		t.Fatalf("fill cache: %v", err)
	}

	m.dispatch(nav.Expand{ChannelID: keyGeneral})
	staleGen := m.State().Data[keyGeneral].Generation

	pushed, _ := f.adapter.Push("general", "kim", "breaking")
	run(t, m, m.bridge.Handle(types.MessageEvent{
		Kind: types.EventCreated, ChannelKey: keyGeneral, MessageID: pushed.ID, Message: pushed,
	}, true))

	data := m.State().Data[keyGeneral]
	if data.Loading || data.Generation == staleGen {
		t.Fatalf("expected a completed reload, got %+v", data)
	}
	if last := data.Messages[len(data.Messages)-1]; last.Body != "breaking" {
		t.Fatalf("newest: got %q", last.Body)
	}

	// The load started before the push resolves late and is ignored.
	_, _ = m.Update(nav.MessagesLoaded{ChannelID: keyGeneral, Generation: staleGen, Messages: old})
	if got := m.State().Data[keyGeneral].Messages; got[len(got)-1].Body != "breaking" {
		t.Fatalf("stale load overwrote fresh data: %v", bodies(got))
	}
}

func TestReaderPagesInOlderHistory(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	press(t, m, "enter", "v")
	s := m.State()
	if s.Focus != nav.FocusReader || s.ReaderSelected != 4 {
		t.Fatalf("reader entry: focus %v selected %d", s.Focus, s.ReaderSelected)
	}

	// Four moves reach the window top, one slides to the oldest loaded
	// message, the next pages in history.
	press(t, m, "up", "up", "up", "up", "up", "up")
	s = m.State()
	data := s.Data[keyGeneral]
	if len(data.Messages) != 8 || data.HasMore {
		t.Fatalf("after paging: len %d hasMore %v", len(data.Messages), data.HasMore)
	}
	if msg, _ := s.ReaderMessage(); msg.Body != "general 2" {
		t.Fatalf("paging moved the reader: got %q", msg.Body)
	}
	if s.Status != "" {
		t.Fatalf("status not cleared: %q", s.Status)
	}

	press(t, m, "up", "up", "up")
	if msg, _ := m.State().ReaderMessage(); msg.Body != "general 0" {
		t.Fatalf("oldest: got %q", msg.Body)
	}

	press(t, m, "esc")
	if m.State().Focus != nav.FocusNavigation || m.State().ReaderOffsets[keyGeneral] != 3 {
		t.Fatalf("leaving reader: focus %v offsets %v", m.State().Focus, m.State().ReaderOffsets)
	}
}

func TestEditOnlyOwnMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)
	m := f.model

	press(t, m, "enter", "down")
	press(t, m, "e")
	if s := m.State(); !s.StatusIsError || s.Focus != nav.FocusNavigation {
		t.Fatalf("editing someone else's message: status %q focus %v", s.Status, s.Focus)
	}

	ch := types.Channel{ID: "general", Platform: "mem"}
	mine, err := f.adapter.SendMessage(ctx, platform.SendOptions{Channel: ch, Body: "tpyo"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	run(t, m, m.reload(keyGeneral))
	m.dispatch(nav.SelectIndex{Index: 2})
	if msg, _ := m.State().SelectedMessage(); msg.ID != mine.ID {
		t.Fatalf("selected: got %q want %q", msg.ID, mine.ID)
	}

	press(t, m, "e")
	if c := m.State().Compose; c.EditTarget != mine.ID || c.Text != "tpyo" {
		t.Fatalf("edit compose: got %+v", c)
	}
	press(t, m, "backspace", "backspace", "backspace")
	typeText(t, m, "ypo")
	press(t, m, "enter")

	if s := m.State(); s.Focus != nav.FocusNavigation || s.Status != "Edited." {
		t.Fatalf("after edit: focus %v status %q", s.Focus, s.Status)
	}
	msgs, _, _ := f.adapter.LoadMessages(ctx, ch, 1)
	if msgs[0].Body != "typo" || !msgs[0].Edited() {
		t.Fatalf("stored edit: got %+v", msgs[0])
	}
}

func TestAttachThenSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t, ctx)
	m := f.model

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	press(t, m, "i")
	typeText(t, m, "/attach "+path)
	press(t, m, "enter")
	c := m.State().Compose
	if c.Text != "" || len(c.Attachments) != 1 || c.Attachments[0].Name != "notes.txt" {
		t.Fatalf("after attach: %+v", c)
	}

	typeText(t, m, "see file")
	press(t, m, "enter")
	msgs, _, _ := f.adapter.LoadMessages(ctx, types.Channel{ID: "general", Platform: "mem"}, 1)
	if msgs[0].Body != "see file" || len(msgs[0].Attachments) != 1 {
		t.Fatalf("sent: %+v", msgs[0])
	}
	if c := m.State().Compose; len(c.Attachments) != 0 {
		t.Fatalf("attachments survived the send: %+v", c)
	}
}

func TestAttachExpandsHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	if err := os.WriteFile(filepath.Join(home, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, context.Background())
	m := f.model
	press(t, m, "i")
	typeText(t, m, "/attach ~/notes.txt")
	press(t, m, "enter")

	c := m.State().Compose
	if c.Text != "" || c.Cursor != 0 || len(c.Attachments) != 1 {
		t.Fatalf("after attach: %+v", c)
	}
	if want := filepath.Join(home, "notes.txt"); c.Attachments[0].Path != want {
		t.Fatalf("path: got %q want %q", c.Attachments[0].Path, want)
	}
}

func TestHeaderTogglesSection(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	press(t, m, "up", "enter")
	s := m.State()
	if len(s.Items) != 1 || s.Items[0].Kind != nav.ItemHeader {
		t.Fatalf("collapsed section: got %v", kinds(s.Items))
	}
	if view := m.View(); !strings.Contains(view, "▸ Channels") {
		t.Fatalf("collapsed marker missing:\n%s", view)
	}
	press(t, m, "enter")
	if got := len(m.State().Items); got != 3 {
		t.Fatalf("reopened section: got %d items", got)
	}
}

func TestFollowToggleMovesChannel(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	press(t, m, "f")
	s := m.State()
	if s.Status != "Unfollowed #general." {
		t.Fatalf("status: got %q", s.Status)
	}
	var labels []string
	for _, item := range s.Items {
		if item.Kind == nav.ItemHeader {
			labels = append(labels, item.Label)
		}
	}
	if strings.Join(labels, ",") != "Channels,Unfollowed" {
		t.Fatalf("sections: got %v", labels)
	}
	if item, _ := s.SelectedItem(); item.ChannelID != keyGeneral {
		t.Fatalf("selection should follow the channel: %+v", item)
	}
}

func TestDoubleClickActivatesRow(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model
	now := time.Unix(100, 0)

	run(t, m, m.clickRow(2, now))
	if m.State().Selected != 2 || m.State().IsExpanded(keyRandom) {
		t.Fatalf("single click: selected %d", m.State().Selected)
	}
	run(t, m, m.clickRow(2, now.Add(100*time.Millisecond)))
	if !m.State().IsExpanded(keyRandom) {
		t.Fatalf("double click should expand #random")
	}
	run(t, m, m.clickRow(2, now.Add(time.Second)))
	if !m.State().IsExpanded(keyRandom) {
		t.Fatalf("slow second click should only select")
	}
}

func TestErrorsShowMarker(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	_, _ = m.Update(errMsg{op: "send", err: errors.New("network down")})
	if view := m.View(); !strings.Contains(view, "✗ send: network down") {
		t.Fatalf("error status missing:\n%s", view)
	}
	press(t, m, "esc")
	if m.State().Status != "" {
		t.Fatalf("esc should clear the status")
	}
}

func TestLoadFailureKeepsRunning(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model

	m.dispatch(nav.Expand{ChannelID: keyGeneral})
	gen := m.State().Data[keyGeneral].Generation
	_, _ = m.Update(nav.LoadFailed{ChannelID: keyGeneral, Generation: gen, Err: "timeout"})

	s := m.State()
	if !s.StatusIsError || s.Status != "load failed: timeout" || s.Loading {
		t.Fatalf("after failure: status %q error %v loading %v", s.Status, s.StatusIsError, s.Loading)
	}
	if view := m.View(); !strings.Contains(view, "✗ timeout") {
		t.Fatalf("channel row should show the failure:\n%s", view)
	}
}

func TestViewFitsTerminal(t *testing.T) {
	f := newFixture(t, context.Background())
	m := f.model
	_, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 12})
	press(t, m, "enter")

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 12 {
		t.Fatalf("view height: got %d lines want 12", len(lines))
	}
}
