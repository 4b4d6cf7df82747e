package command

import (
	"errors"
	"fmt"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/db"
	"github.com/adamavenir/tern/internal/platform/local"
	"github.com/adamavenir/tern/internal/types"
	"github.com/spf13/cobra"
)

const defaultChannel = "general"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a workspace and register it for chat",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			name, _ := cmd.Flags().GetString("name")
			jsonMode, _ := cmd.Flags().GetBool("json")

			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			project, err := core.InitProject(dir, force)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if name == "" {
				name = project.Name()
			}

			config, err := core.LoadConfig(project.Root)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			adapter, err := local.Open(project, name, config.Username)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer adapter.Close()

			if err := db.SetConfig(adapter.DB(), db.WorkspaceNameKey, name); err != nil {
				return writeCommandError(cmd, err)
			}

			_, err = adapter.CreateChannel(cmd.Context(), types.Channel{Name: defaultChannel})
			if err != nil && !errors.Is(err, db.ErrChannelExists) {
				return writeCommandError(cmd, err)
			}
			if _, err := core.RegisterWorkspace(name, project.Root); err != nil {
				return writeCommandError(cmd, err)
			}

			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"workspace": name,
					"root":      project.Root,
					"channel":   defaultChannel,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace %s in %s\n", name, project.Dir())
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%s. Run 'tern chat' to start browsing.\n", defaultChannel)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "reinitialize, discarding the local database and journal")
	cmd.Flags().String("name", "", "workspace name (defaults to the directory name)")
	return cmd
}
