package db

import (
	"testing"

	"github.com/adamavenir/tern/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannels(t *testing.T) {
	db := openTestDB(t)
	createTestChannel(t, db, "random")
	_, err := CreateChannel(db, types.Channel{Name: "alerts", Group: "Ops"})
	require.NoError(t, err)
	createTestChannel(t, db, "general")

	_, err = CreateChannel(db, types.Channel{Name: "general"})
	assert.ErrorIs(t, err, ErrChannelExists)

	channels, err := GetChannels(db)
	require.NoError(t, err)
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}
	assert.Equal(t, []string{"general", "random", "alerts"}, names)

	require.NoError(t, SetFollowing(db, "general", false))
	ch, err := GetChannel(db, "general")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.False(t, ch.Following)

	missing, err := GetChannel(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetMessagesNewestWindow(t *testing.T) {
	db := openTestDB(t)
	ch := createTestChannel(t, db, "general")
	for i, body := range []string{"one", "two", "three", "four"} {
		postTestMessage(t, db, ch.ID, body, int64(100+i))
	}

	messages, err := GetMessages(db, ch.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three", "four"}, bodies(messages))
	assert.Equal(t, ch.ID, messages[0].ChannelKey)

	all, err := GetMessages(db, ch.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetMessagesBefore(t *testing.T) {
	db := openTestDB(t)
	ch := createTestChannel(t, db, "general")
	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, postTestMessage(t, db, ch.ID, string(rune('a'+i)), int64(100+i)).ID)
	}

	older, hasMore, err := GetMessagesBefore(db, ch.ID, ids[4], 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, bodies(older))
	assert.True(t, hasMore)

	older, hasMore, err = GetMessagesBefore(db, ch.ID, ids[2], 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, bodies(older))
	assert.False(t, hasMore)

	_, _, err = GetMessagesBefore(db, ch.ID, "msg-missing", 5)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestEditDeleteAndReact(t *testing.T) {
	db := openTestDB(t)
	ch := createTestChannel(t, db, "general")
	msg := postTestMessage(t, db, ch.ID, "hello", 100)

	edited, err := EditMessage(db, msg.ID, "hello, world")
	require.NoError(t, err)
	assert.Equal(t, "hello, world", edited.Body)
	assert.True(t, edited.Edited())

	_, err = AddReaction(db, msg.ID, "sam", "👍")
	require.NoError(t, err)
	_, err = AddReaction(db, msg.ID, "kim", "👍")
	require.NoError(t, err)
	reacted, err := AddReaction(db, msg.ID, "sam", "👍")
	require.NoError(t, err)
	require.Len(t, reacted.Reactions, 1)
	assert.ElementsMatch(t, []string{"sam", "kim"}, reacted.Reactions[0].Users)

	require.NoError(t, DeleteMessage(db, msg.ID))
	assert.ErrorIs(t, DeleteMessage(db, msg.ID), ErrMessageNotFound)
	_, err = EditMessage(db, msg.ID, "gone")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestAttachmentsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ch := createTestChannel(t, db, "general")
	msg, err := CreateMessage(db, ch.ID, types.Message{
		Author:      "sam",
		Body:        "see file",
		Attachments: []types.Attachment{{Name: "notes.txt", Path: "/tmp/notes.txt"}},
	})
	require.NoError(t, err)

	got, err := GetMessage(db, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.Attachments, got.Attachments)
	assert.NotZero(t, got.TS)
}

func TestConfigValues(t *testing.T) {
	db := openTestDB(t)
	v, err := GetConfig(db, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, SetConfig(db, "username", "sam"))
	v, err = GetConfig(db, "username")
	require.NoError(t, err)
	assert.Equal(t, "sam", v)
}
