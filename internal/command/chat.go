package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/chat"
	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/db"
	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/platform/local"
	"github.com/adamavenir/tern/internal/platform/memory"
	"github.com/spf13/cobra"
)

const demoChatterInterval = 4 * time.Second

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Browse every workspace in the terminal UI",
		Long: `Open the chat browser over all registered workspaces plus the one
in the current directory.

Examples:
  tern chat
  tern chat --workspace api --workspace web
  tern chat --demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for interactive chat"))
			}
			demo, _ := cmd.Flags().GetBool("demo")
			only, _ := cmd.Flags().GetStringSlice("workspace")

			project, err := core.DiscoverProject("")
			hasProject := err == nil
			if err != nil && !errors.Is(err, core.ErrNotInitialized) {
				return writeCommandError(cmd, err)
			}
			config, err := core.LoadConfig(project.Root)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			logPath := filepath.Join(os.TempDir(), "tern.log")
			if hasProject {
				logPath = project.LogPath()
			}
			if err := logging.InitForTUI(logging.ParseLevel(config.LogLevel), logPath); err != nil {
				return writeCommandError(cmd, err)
			}
			defer logging.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			opts := chat.Options{
				Username:     config.Username,
				VisibleCount: config.VisibleCount,
				LoadLimit:    config.LoadLimit,
				Notify:       config.NotifyEnabled(),
				Mouse:        config.MouseEnabled(),
			}
			dir, err := platform.NewDirectory(config.Hide, config.CollapsedSections)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if demo {
				adapter := memory.NewDemo(config.Username)
				go adapter.Chatter(ctx, demoChatterInterval)
				opts.Providers, err = platform.NewMux(dir, adapter)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				opts.Cache = memory.NewCache()
				opts.Title = "demo"
				return runChat(cmd, ctx, opts)
			}

			workspaces := chatWorkspaces(config, project, hasProject, only)
			if len(workspaces) == 0 {
				return writeCommandError(cmd, core.ErrNotInitialized)
			}
			adapters, err := openWorkspaces(workspaces, config.Username)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer func() {
				for _, a := range adapters {
					_ = a.Close()
				}
			}()

			providers := make([]platform.Adapter, 0, len(adapters))
			names := make([]string, 0, len(adapters))
			for _, a := range adapters {
				providers = append(providers, a)
				names = append(names, a.Name())
			}
			opts.Providers, err = platform.NewMux(dir, providers...)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			// Cached messages are kept in the first workspace's database.
			opts.Cache = db.NewCache(adapters[0].DB())
			opts.Title = strings.Join(names, ", ")
			return runChat(cmd, ctx, opts)
		},
	}

	cmd.Flags().Bool("demo", false, "browse a generated workspace that keeps posting")
	cmd.Flags().StringSlice("workspace", nil, "only open these workspaces (repeatable)")
	return cmd
}

func runChat(cmd *cobra.Command, ctx context.Context, opts chat.Options) error {
	if err := chat.Run(ctx, opts); err != nil {
		logging.Error("chat", err, "chat exited")
		return writeCommandError(cmd, err)
	}
	return nil
}

// chatWorkspaces is the current project first, then the registered
// workspaces, optionally filtered by name.
func chatWorkspaces(config core.Config, project core.Project, hasProject bool, only []string) []core.Workspace {
	var out []core.Workspace
	seen := map[string]bool{}
	add := func(ws core.Workspace) {
		if seen[ws.Path] {
			return
		}
		seen[ws.Path] = true
		out = append(out, ws)
	}

	if hasProject {
		ws, ok := core.FindWorkspace(project.Root, config)
		if !ok {
			ws = core.Workspace{Name: project.Name(), Path: project.Root}
		}
		add(ws)
	}
	for _, ws := range config.Workspaces {
		add(ws)
	}

	if len(only) == 0 {
		return out
	}
	wanted := map[string]bool{}
	for _, name := range only {
		wanted[name] = true
	}
	filtered := out[:0]
	for _, ws := range out {
		if wanted[ws.Name] {
			filtered = append(filtered, ws)
		}
	}
	return filtered
}

// openWorkspaces opens a local adapter per workspace. Workspaces whose
// directory is gone are skipped with a warning.
func openWorkspaces(workspaces []core.Workspace, username string) ([]*local.Adapter, error) {
	var adapters []*local.Adapter
	for _, ws := range workspaces {
		project, err := core.OpenProject(ws.Path)
		if err != nil {
			logging.Warn("chat", "skipping workspace %s: %v", ws.Name, err)
			continue
		}
		a, err := local.Open(project, ws.Name, username)
		if err != nil {
			for _, opened := range adapters {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("workspace %s: %w", ws.Name, err)
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no workspace could be opened: %w", core.ErrNotInitialized)
	}
	return adapters, nil
}
