package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <channel> <message>",
		Short: "Post a message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			ch, err := ctx.ResolveChannel(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			opts := platform.SendOptions{Channel: ch, Body: args[1]}
			if replyTo, _ := cmd.Flags().GetString("reply-to"); replyTo != "" {
				parent, _, err := ctx.ResolveMessage(cmd.Context(), replyTo)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				opts.ReplyTo = parent.ID
			}
			paths, _ := cmd.Flags().GetStringSlice("attach")
			for _, p := range paths {
				expanded, err := homedir.Expand(p)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				opts.Attachments = append(opts.Attachments, types.Attachment{Path: expanded})
			}

			created, err := ctx.Adapter.SendMessage(cmd.Context(), opts)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted to %s %s\n", ch.Label(), idColor.Sprintf("[%s]", created.ID))
			return nil
		},
	}

	cmd.Flags().String("reply-to", "", "reply to a message id")
	cmd.Flags().StringSlice("attach", nil, "attach a file (repeatable)")
	return cmd
}
