package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewReactCmd creates the react command.
func NewReactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react <msgid> <emoji>",
		Short: "React to a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			emoji := strings.TrimSpace(args[1])
			if emoji == "" {
				return writeCommandError(cmd, fmt.Errorf("reaction cannot be empty"))
			}
			msg, ch, err := ctx.ResolveMessage(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			reacted, err := ctx.Adapter.AddReaction(cmd.Context(), ch, msg.ID, emoji)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), reacted)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatMessage(reacted))
			return nil
		},
	}
	return cmd
}
