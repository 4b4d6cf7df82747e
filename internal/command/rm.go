package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRmCmd creates the rm command.
func NewRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <msgid>",
		Short: "Delete one of your messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			msg, ch, err := ctx.ResolveMessage(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := ctx.requireOwn(msg, "delete"); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := ctx.Adapter.DeleteMessage(cmd.Context(), ch, msg.ID); err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"id": msg.ID, "deleted": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", idColor.Sprintf("[%s]", msg.ID))
			return nil
		},
	}
	return cmd
}
