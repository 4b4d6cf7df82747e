package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEditCmd creates the edit command.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <msgid> <message>",
		Short: "Edit one of your messages",
		Args:  cobra.ExactArgs(2),
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
			if err := ctx.requireOwn(msg, "edit"); err != nil {
				return writeCommandError(cmd, err)
			}
			edited, err := ctx.Adapter.EditMessage(cmd.Context(), ch, msg.ID, args[1])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), edited)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Edited %s\n", idColor.Sprintf("[%s]", edited.ID))
			return nil
		},
	}
	return cmd
}
