package mcp

import (
	"context"
	"testing"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/platform/local"
	"github.com/adamavenir/tern/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) *local.Adapter {
	t.Helper()
	project, err := core.InitProject(t.TempDir(), false)
	require.NoError(t, err)
	ws, err := local.Open(project, "work", "sam")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	ctx := context.Background()
	_, err = ws.CreateChannel(ctx, types.Channel{Name: "general", Topic: "everything"})
	require.NoError(t, err)
	_, err = ws.CreateChannel(ctx, types.Channel{Name: "old"})
	require.NoError(t, err)
	require.NoError(t, ws.SetFollowing(ctx, "old", false))
	return ws
}

func connect(t *testing.T, ws Workspace) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := NewServer(ws, "test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	session := connect(t, newTestWorkspace(t))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"tern_channels", "tern_history", "tern_post", "tern_react"}, names)
}

func TestChannelsTool(t *testing.T) {
	session := connect(t, newTestWorkspace(t))

	text, isErr := callText(t, session, "tern_channels", map[string]any{})
	assert.False(t, isErr)
	assert.Contains(t, text, "#general - everything")
	assert.NotContains(t, text, "#old")

	text, _ = callText(t, session, "tern_channels", map[string]any{"all": true})
	assert.Contains(t, text, "#old (unfollowed)")
}

func TestPostHistoryReact(t *testing.T) {
	ws := newTestWorkspace(t)
	session := connect(t, ws)

	text, isErr := callText(t, session, "tern_history", map[string]any{"channel": "#general"})
	assert.False(t, isErr)
	assert.Contains(t, text, "No messages in #general")

	text, isErr = callText(t, session, "tern_post", map[string]any{"channel": "general", "body": "  hi from mcp  "})
	require.False(t, isErr, text)
	assert.Contains(t, text, "to #general")

	msgs, _, err := ws.LoadMessages(context.Background(), types.Channel{ID: "general"}, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi from mcp", msgs[0].Body)

	text, isErr = callText(t, session, "tern_react", map[string]any{
		"channel": "general", "message_id": "#" + msgs[0].ID, "emoji": "👍",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "👍 sam")

	text, _ = callText(t, session, "tern_history", map[string]any{"channel": "general"})
	assert.Contains(t, text, "@sam")
	assert.Contains(t, text, "hi from mcp")
}

func TestToolErrors(t *testing.T) {
	session := connect(t, newTestWorkspace(t))

	text, isErr := callText(t, session, "tern_post", map[string]any{"channel": "general", "body": "   "})
	assert.True(t, isErr)
	assert.Contains(t, text, "cannot be empty")

	text, isErr = callText(t, session, "tern_history", map[string]any{"channel": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown channel")

	_, isErr = callText(t, session, "tern_react", map[string]any{"channel": "general", "message_id": "msg-missing", "emoji": "👍"})
	assert.True(t, isErr)
}
