package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/db"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/platform/local"
	"github.com/adamavenir/tern/internal/types"
	"github.com/spf13/cobra"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Project   core.Project
	Config    core.Config
	Workspace string
	Adapter   *local.Adapter
	JSONMode  bool
}

// GetContext resolves the workspace a command operates on and opens it.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	projectRef, _ := cmd.Flags().GetString("project")
	jsonMode, _ := cmd.Flags().GetBool("json")

	project, name, err := resolveProject(projectRef)
	if err != nil {
		return nil, err
	}
	config, err := core.LoadConfig(project.Root)
	if err != nil {
		return nil, err
	}
	adapter, err := local.Open(project, name, config.Username)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Project:   project,
		Config:    config,
		Workspace: adapter.Name(),
		Adapter:   adapter,
		JSONMode:  jsonMode,
	}, nil
}

// resolveProject finds the project by registered workspace name, by path,
// or by walking up from the working directory.
func resolveProject(ref string) (core.Project, string, error) {
	if ref == "" {
		project, err := core.DiscoverProject("")
		if err != nil {
			return core.Project{}, "", err
		}
		return project, workspaceName(project), nil
	}

	userConfig, err := core.LoadConfig("")
	if err != nil {
		return core.Project{}, "", err
	}
	if ws, ok := core.FindWorkspace(ref, userConfig); ok {
		project, err := core.OpenProject(ws.Path)
		if err != nil {
			return core.Project{}, "", fmt.Errorf("workspace %s: %w", ws.Name, err)
		}
		return project, ws.Name, nil
	}
	project, err := core.OpenProject(ref)
	if err != nil {
		return core.Project{}, "", err
	}
	return project, workspaceName(project), nil
}

// workspaceName is the registered name of a project. Empty lets the
// adapter fall back to the name stored in the workspace itself.
func workspaceName(project core.Project) string {
	config, err := core.LoadConfig("")
	if err == nil {
		if ws, ok := core.FindWorkspace(project.Root, config); ok {
			return ws.Name
		}
	}
	return ""
}

func (c *CommandContext) Close() error {
	return c.Adapter.Close()
}

// ResolveChannel accepts a channel id or name, with or without '#'.
func (c *CommandContext) ResolveChannel(ctx context.Context, ref string) (types.Channel, error) {
	return c.Adapter.ResolveChannel(ctx, strings.TrimPrefix(strings.TrimSpace(ref), "#"))
}

// ResolveMessage finds a message and the channel it was posted in.
func (c *CommandContext) ResolveMessage(ctx context.Context, id string) (types.Message, types.Channel, error) {
	id = strings.TrimPrefix(strings.TrimSpace(id), "#")
	msg, err := db.GetMessage(c.Adapter.DB(), id)
	if err != nil {
		return types.Message{}, types.Channel{}, err
	}
	if msg == nil {
		return types.Message{}, types.Channel{}, fmt.Errorf("%s: %w", id, platform.ErrUnknownMessage)
	}
	ch, err := c.ResolveChannel(ctx, msg.ChannelKey)
	if err != nil {
		return types.Message{}, types.Channel{}, err
	}
	return *msg, ch, nil
}

// requireOwn rejects changes to messages posted by someone else.
func (c *CommandContext) requireOwn(msg types.Message, verb string) error {
	if msg.Author != c.Config.Username {
		return fmt.Errorf("can only %s your own messages (%s was posted by @%s)", verb, msg.ID, msg.Author)
	}
	return nil
}
