package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/db"
	"github.com/spf13/cobra"
)

// NewRebuildCmd creates the rebuild command.
func NewRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the local database from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := db.RebuildFromJournal(ctx.Adapter.DB(), ctx.Project.JournalPath()); err != nil {
				return writeCommandError(cmd, err)
			}
			channels, err := ctx.Adapter.Channels(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"rebuilt": true, "channels": len(channels)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt %s from %s (%d channels)\n", ctx.Workspace, ctx.Project.JournalPath(), len(channels))
			return nil
		},
	}
	return cmd
}
