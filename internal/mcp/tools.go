package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/dustin/go-humanize"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultHistoryLimit = 20

type channelsArgs struct {
	All bool `json:"all,omitempty" jsonschema:"Include unfollowed channels"`
}

type historyArgs struct {
	Channel string `json:"channel" jsonschema:"Channel name or id"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of messages to return (default: 20)"`
	Before  string `json:"before,omitempty" jsonschema:"Page back from this message id"`
}

type postArgs struct {
	Channel string `json:"channel" jsonschema:"Channel name or id"`
	Body    string `json:"body" jsonschema:"Message body. Supports @mentions."`
	ReplyTo string `json:"reply_to,omitempty" jsonschema:"Message id this replies to"`
}

type reactArgs struct {
	Channel   string `json:"channel" jsonschema:"Channel name or id"`
	MessageID string `json:"message_id" jsonschema:"Message to react to"`
	Emoji     string `json:"emoji" jsonschema:"Reaction, e.g. 👍"`
}

// RegisterTools registers the tern tools on server.
func RegisterTools(server *mcp.Server, ws Workspace) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tern_channels",
		Description: "List the channels of the workspace with their topics.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args channelsArgs) (*mcp.CallToolResult, any, error) {
		return handleChannels(ctx, ws, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tern_history",
		Description: "Read recent messages of a channel, oldest first.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args historyArgs) (*mcp.CallToolResult, any, error) {
		return handleHistory(ctx, ws, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tern_post",
		Description: "Post a message to a channel.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args postArgs) (*mcp.CallToolResult, any, error) {
		return handlePost(ctx, ws, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tern_react",
		Description: "Add a reaction to a message.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args reactArgs) (*mcp.CallToolResult, any, error) {
		return handleReact(ctx, ws, args), nil, nil
	})
}

func handleChannels(ctx context.Context, ws Workspace, args channelsArgs) *mcp.CallToolResult {
	channels, err := ws.Channels(ctx)
	if err != nil {
		return toolError(err.Error())
	}
	lines := make([]string, 0, len(channels))
	for _, ch := range channels {
		if !ch.Following && !args.All {
			continue
		}
		line := ch.Label()
		if ch.Group != "" {
			line += " [" + ch.Group + "]"
		}
		if !ch.Following {
			line += " (unfollowed)"
		}
		if ch.Topic != "" {
			line += " - " + ch.Topic
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return toolResult("No channels", false)
	}
	return toolResult(fmt.Sprintf("Channels in %s (%d):\n\n%s", ws.Name(), len(lines), strings.Join(lines, "\n")), false)
}

func handleHistory(ctx context.Context, ws Workspace, args historyArgs) *mcp.CallToolResult {
	ch, errResult := resolveChannel(ctx, ws, args.Channel)
	if errResult != nil {
		return errResult
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var messages []types.Message
	var hasMore bool
	var err error
	if before := sanitizeMessageID(args.Before); before != "" {
		var page platform.OlderPage
		page, err = ws.LoadOlderMessages(ctx, ch, before, limit)
		messages, hasMore = page.Messages, page.HasMore
	} else {
		messages, hasMore, err = ws.LoadMessages(ctx, ch, limit)
	}
	if err != nil {
		return toolError(err.Error())
	}
	if len(messages) == 0 {
		return toolResult(fmt.Sprintf("No messages in %s", ch.Label()), false)
	}

	header := fmt.Sprintf("Messages in %s (%d):", ch.Label(), len(messages))
	if hasMore {
		header += fmt.Sprintf(" older messages exist before #%s", messages[0].ID)
	}
	return toolResult(header+"\n\n"+formatMessages(messages), false)
}

func handlePost(ctx context.Context, ws Workspace, args postArgs) *mcp.CallToolResult {
	body := strings.TrimSpace(args.Body)
	if body == "" {
		return toolError("Error: Message body cannot be empty")
	}
	ch, errResult := resolveChannel(ctx, ws, args.Channel)
	if errResult != nil {
		return errResult
	}
	created, err := ws.SendMessage(ctx, platform.SendOptions{
		Channel: ch,
		Body:    body,
		ReplyTo: sanitizeMessageID(args.ReplyTo),
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(fmt.Sprintf("Posted message #%s to %s", created.ID, ch.Label()), false)
}

func handleReact(ctx context.Context, ws Workspace, args reactArgs) *mcp.CallToolResult {
	emoji := strings.TrimSpace(args.Emoji)
	if emoji == "" {
		return toolError("Error: Reaction cannot be empty")
	}
	ch, errResult := resolveChannel(ctx, ws, args.Channel)
	if errResult != nil {
		return errResult
	}
	reacted, err := ws.AddReaction(ctx, ch, sanitizeMessageID(args.MessageID), emoji)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(formatMessages([]types.Message{reacted}), false)
}

func resolveChannel(ctx context.Context, ws Workspace, ref string) (types.Channel, *mcp.CallToolResult) {
	ref = sanitizeMessageID(ref)
	if ref == "" {
		return types.Channel{}, toolError("Error: channel is required")
	}
	ch, err := ws.ResolveChannel(ctx, ref)
	if err != nil {
		return types.Channel{}, toolError(err.Error())
	}
	return ch, nil
}

func formatMessages(messages []types.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		line := fmt.Sprintf("[#%s] @%s (%s): %s", msg.ID, msg.Author, humanize.Time(time.Unix(msg.TS, 0)), msg.Body)
		if msg.ReplyTo != nil {
			line += fmt.Sprintf(" [reply to #%s]", *msg.ReplyTo)
		}
		if len(msg.Reactions) > 0 {
			parts := make([]string, 0, len(msg.Reactions))
			for _, r := range msg.Reactions {
				parts = append(parts, fmt.Sprintf("%s %s", r.Emoji, strings.Join(r.Users, ",")))
			}
			line += " [" + strings.Join(parts, "; ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}

// sanitizeMessageID strips the '@' and '#' prefixes people paste along with
// ids and channel names.
func sanitizeMessageID(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "@")
	trimmed = strings.TrimPrefix(trimmed, "#")
	return trimmed
}
