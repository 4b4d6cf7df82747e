package nav

import (
	"fmt"
	"testing"

	"github.com/adamavenir/tern/internal/types"
)

const (
	keyGeneral = "local:general"
	keyRandom  = "local:random"
	keyOps     = "local:ops"
)

func fixtureChannels() ([]types.Channel, []types.DisplayItem) {
	channels := []types.Channel{
		{ID: "general", Platform: "local", Name: "general", Following: true},
		{ID: "random", Platform: "local", Name: "random", Following: true},
		{ID: "ops", Platform: "local", Name: "ops", New: true},
	}
	display := []types.DisplayItem{
		{Kind: types.DisplayHeader, Label: "Channels"},
		{Kind: types.DisplayChannel, Label: "#general", ChannelIndex: 0},
		{Kind: types.DisplayChannel, Label: "#random", ChannelIndex: 1},
		{Kind: types.DisplayHeader, Label: "New"},
		{Kind: types.DisplayChannel, Label: "#ops", ChannelIndex: 2},
	}
	return channels, display
}

func newTestState(t *testing.T) AppState {
	t.Helper()
	channels, display := fixtureChannels()
	return New(channels, display, Options{Rows: 40, Cols: 100})
}

func makeMessages(key string, n int) []types.Message {
	out := make([]types.Message, n)
	for i := range out {
		out[i] = types.Message{
			ID:         fmt.Sprintf("%s-m%d", key, i),
			ChannelKey: key,
			Author:     "alice",
			Body:       fmt.Sprintf("message %d", i),
			TS:         int64(1000 + i),
		}
	}
	return out
}

// expandLoaded expands key and completes its load with n messages.
func expandLoaded(t *testing.T, s AppState, key string, n int) AppState {
	t.Helper()
	s = Transition(s, Expand{ChannelID: key})
	data, ok := s.Data[key]
	if !ok || !data.Loading {
		t.Fatalf("expand %s: expected loading entry, got %+v", key, data)
	}
	return Transition(s, MessagesLoaded{
		ChannelID:  key,
		Generation: data.Generation,
		Messages:   makeMessages(key, n),
	})
}

func kinds(items []FlatItem) []ItemKind {
	out := make([]ItemKind, len(items))
	for i, item := range items {
		out[i] = item.Kind
	}
	return out
}

func itemsFor(items []FlatItem, key string) []FlatItem {
	var out []FlatItem
	for _, item := range items {
		if item.ChannelID == key {
			out = append(out, item)
		}
	}
	return out
}

func checkInvariants(t *testing.T, s AppState, step string) {
	t.Helper()
	if len(s.Items) == 0 {
		return
	}
	if s.Selected < 0 || s.Selected >= len(s.Items) {
		t.Fatalf("%s: selected %d out of range [0,%d)", step, s.Selected, len(s.Items))
	}
	h := s.VisibleHeight()
	if s.ViewportOffset < 0 {
		t.Fatalf("%s: negative viewport offset %d", step, s.ViewportOffset)
	}
	if s.Selected < s.ViewportOffset || s.Selected >= s.ViewportOffset+h {
		t.Fatalf("%s: selected %d outside viewport [%d,%d)", step, s.Selected, s.ViewportOffset, s.ViewportOffset+h)
	}
}
