package command

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkspace points the user config at a temp file and initializes a
// workspace named "work".
func setupWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv(core.ConfigEnv, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("TERN_USER", "sam")

	dir := filepath.Join(t.TempDir(), "proj")
	out, err := runTern(t, "init", dir, "--name", "work")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized workspace work")
	return dir
}

func runTern(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommand(NewRootCmd("test"), args...)
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func findMessage(t *testing.T, msgs []types.Message, id string) types.Message {
	t.Helper()
	for _, msg := range msgs {
		if msg.ID == id {
			return msg
		}
	}
	t.Fatalf("message %s not in %d messages", id, len(msgs))
	return types.Message{}
}

type historyJSON struct {
	Channel  string          `json:"channel"`
	Messages []types.Message `json:"messages"`
	HasMore  bool            `json:"has_more"`
}

func TestInitRegistersWorkspace(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runTern(t, "workspaces", "--json")
	require.NoError(t, err)
	got := decode[struct {
		Workspaces []core.Workspace `json:"workspaces"`
	}](t, out)
	require.Len(t, got.Workspaces, 1)
	assert.Equal(t, "work", got.Workspaces[0].Name)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, got.Workspaces[0].Path)

	_, err = runTern(t, "init", dir)
	assert.Error(t, err, "second init without --force")
}

func TestChannelAddListFollow(t *testing.T) {
	setupWorkspace(t)

	_, err := runTern(t, "channel", "add", "#design", "--topic", "ui things", "--project", "work")
	require.NoError(t, err)

	out, err := runTern(t, "channel", "ls", "--project", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "#design")
	assert.Contains(t, out, "#general")
	assert.Contains(t, out, "ui things")

	out, err = runTern(t, "unfollow", "design", "--project", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Unfollowed #design")

	out, err = runTern(t, "channel", "ls", "--project", "work", "--json")
	require.NoError(t, err)
	listing := decode[struct {
		Channels []types.Channel `json:"channels"`
	}](t, out)
	following := map[string]bool{}
	for _, ch := range listing.Channels {
		following[ch.Name] = ch.Following
	}
	assert.Equal(t, map[string]bool{"design": false, "general": true}, following)

	_, err = runTern(t, "follow", "nope", "--project", "work")
	assert.True(t, errors.Is(err, platform.ErrUnknownChannel), "got %v", err)
}

func TestMessageLifecycle(t *testing.T) {
	setupWorkspace(t)

	out, err := runTern(t, "post", "general", "hello", "--project", "work", "--json")
	require.NoError(t, err)
	posted := decode[types.Message](t, out)
	assert.Equal(t, "sam", posted.Author)
	assert.Equal(t, "work:general", posted.ChannelKey)

	out, err = runTern(t, "post", "general", "a reply", "--reply-to", posted.ID, "--project", "work", "--json")
	require.NoError(t, err)
	reply := decode[types.Message](t, out)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, posted.ID, *reply.ReplyTo)

	out, err = runTern(t, "history", "general", "--project", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "@sam")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "reply to "+posted.ID)

	_, err = runTern(t, "edit", posted.ID, "hello again", "--project", "work")
	require.NoError(t, err)
	out, err = runTern(t, "react", posted.ID, "👍", "--project", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "👍 sam")

	out, err = runTern(t, "history", "general", "--project", "work", "--json")
	require.NoError(t, err)
	history := decode[historyJSON](t, out)
	require.Len(t, history.Messages, 2)
	edited := findMessage(t, history.Messages, posted.ID)
	assert.Equal(t, "hello again", edited.Body)
	assert.True(t, edited.Edited())
	require.Len(t, edited.Reactions, 1)

	out, err = runTern(t, "history", "general", "--last", "1", "--project", "work", "--json")
	require.NoError(t, err)
	newest := decode[historyJSON](t, out)
	require.Len(t, newest.Messages, 1)
	assert.True(t, newest.HasMore)

	out, err = runTern(t, "history", "general", "--before", newest.Messages[0].ID, "--project", "work", "--json")
	require.NoError(t, err)
	older := decode[historyJSON](t, out)
	require.Len(t, older.Messages, 1)
	assert.NotEqual(t, newest.Messages[0].ID, older.Messages[0].ID)
	assert.False(t, older.HasMore)

	_, err = runTern(t, "rm", posted.ID, "--project", "work")
	require.NoError(t, err)
	_, err = runTern(t, "rm", posted.ID, "--project", "work")
	assert.True(t, errors.Is(err, platform.ErrUnknownMessage), "got %v", err)
}

func TestOnlyOwnMessagesChange(t *testing.T) {
	setupWorkspace(t)

	out, err := runTern(t, "post", "general", "mine", "--project", "work", "--json")
	require.NoError(t, err)
	posted := decode[types.Message](t, out)

	t.Setenv("TERN_USER", "kim")
	out, err = runTern(t, "edit", posted.ID, "theirs now", "--project", "work")
	require.Error(t, err)
	assert.Contains(t, out, "can only edit your own messages")

	_, err = runTern(t, "rm", posted.ID, "--project", "work")
	require.Error(t, err)

	out, err = runTern(t, "react", posted.ID, "🎉", "--project", "work", "--json")
	require.NoError(t, err)
	reacted := decode[types.Message](t, out)
	require.Len(t, reacted.Reactions, 1)
	assert.Equal(t, []string{"kim"}, reacted.Reactions[0].Users)
}

func TestRebuildKeepsJournaledState(t *testing.T) {
	setupWorkspace(t)

	_, err := runTern(t, "post", "general", "survives", "--project", "work")
	require.NoError(t, err)
	out, err := runTern(t, "rebuild", "--project", "work", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"channels":1`)

	out, err = runTern(t, "history", "general", "--project", "work", "--json")
	require.NoError(t, err)
	history := decode[historyJSON](t, out)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "survives", history.Messages[0].Body)
}

func TestChatWorkspacesOrderAndFilter(t *testing.T) {
	config := core.Config{Workspaces: []core.Workspace{
		{Name: "api", Path: "/src/api"},
		{Name: "web", Path: "/src/web"},
	}}
	project := core.Project{Root: "/src/web"}

	all := chatWorkspaces(config, project, true, nil)
	require.Len(t, all, 2)
	assert.Equal(t, "web", all[0].Name)
	assert.Equal(t, "api", all[1].Name)

	only := chatWorkspaces(config, core.Project{}, false, []string{"api"})
	require.Len(t, only, 1)
	assert.Equal(t, "api", only[0].Name)
}
