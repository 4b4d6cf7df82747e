package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/platform/memory"
	"github.com/adamavenir/tern/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newMux(t *testing.T) (*platform.Mux, *memory.Adapter, *memory.Adapter) {
	t.Helper()
	work := memory.New("work", "sam")
	work.AddChannel(types.Channel{ID: "general", Name: "general", Following: true})
	home := memory.New("home", "sam")
	home.AddChannel(types.Channel{ID: "family", Name: "family", Following: true})

	dir, err := platform.NewDirectory(nil, nil)
	require.NoError(t, err)
	mux, err := platform.NewMux(dir, work, home)
	require.NoError(t, err)
	return mux, work, home
}

func TestMuxRejectsDuplicateNames(t *testing.T) {
	_, err := platform.NewMux(nil, memory.New("a", "sam"), memory.New("a", "sam"))
	assert.Error(t, err)
}

func TestMuxListsAndRoutes(t *testing.T) {
	mux, _, home := newMux(t)
	ctx := context.Background()

	listing, err := mux.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Channels, 2)
	assert.Equal(t, "work:general", listing.Channels[0].Key())
	assert.Equal(t, "home:family", listing.Channels[1].Key())

	family := listing.Channels[1]
	sent, err := mux.SendMessage(ctx, platform.SendOptions{Channel: family, Body: "dinner?"})
	require.NoError(t, err)
	assert.Equal(t, "home:family", sent.ChannelKey)

	msgs, _, err := home.LoadMessages(ctx, family, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, _, err = mux.LoadMessages(ctx, types.Channel{ID: "x", Platform: "irc"}, 10)
	assert.ErrorIs(t, err, platform.ErrUnknownPlatform)
}

func TestMuxFollowAndToggle(t *testing.T) {
	mux, _, _ := newMux(t)
	ctx := context.Background()
	listing, err := mux.ListChannels(ctx)
	require.NoError(t, err)

	listing, err = mux.Unfollow(ctx, listing.Channels[0])
	require.NoError(t, err)
	last := listing.Channels[len(listing.Channels)-1]
	assert.Equal(t, "work:general", last.Key())
	assert.True(t, last.Unfollowed)

	listing, err = mux.ToggleSection(ctx, platform.SectionUnfollowed)
	require.NoError(t, err)
	assert.Len(t, listing.Channels, 1)
}

func TestMuxSubscribeFansIn(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux, work, home := newMux(t)
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := mux.Subscribe(ctx)
	require.NoError(t, err)

	_, err = work.Push("general", "kim", "from work")
	require.NoError(t, err)
	_, err = home.Push("family", "mum", "from home")
	require.NoError(t, err)

	got := map[string]string{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub.Created:
			got[ev.ChannelKey] = ev.Message.Body
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, map[string]string{"work:general": "from work", "home:family": "from home"}, got)

	cancel()
	for range sub.Created {
	}
	for range sub.Updated {
	}
	for range sub.Deleted {
	}
	for range sub.Channels {
	}
}
