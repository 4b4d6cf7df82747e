package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/types"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <channel>",
		Short: "Print recent messages of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			last, _ := cmd.Flags().GetInt("last")
			before, _ := cmd.Flags().GetString("before")
			if last <= 0 {
				last = ctx.Config.LoadLimit
			}

			ch, err := ctx.ResolveChannel(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			var msgs []types.Message
			var hasMore bool
			if before != "" {
				page, err := ctx.Adapter.LoadOlderMessages(cmd.Context(), ch, before, last)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				msgs, hasMore = page.Messages, page.HasMore
			} else {
				msgs, hasMore, err = ctx.Adapter.LoadMessages(cmd.Context(), ch, last)
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}

			if ctx.JSONMode {
				if msgs == nil {
					msgs = []types.Message{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"channel":  ch.ID,
					"messages": msgs,
					"has_more": hasMore,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headColor.Sprint(ch.Label()))
			if len(msgs) == 0 {
				fmt.Fprintln(out, metaColor.Sprint("  no messages"))
				return nil
			}
			if hasMore {
				fmt.Fprintln(out, metaColor.Sprintf("  older messages: tern history %s --before %s", ch.Name, msgs[0].ID))
			}
			for _, msg := range msgs {
				fmt.Fprintln(out, formatMessage(msg))
			}
			return nil
		},
	}

	cmd.Flags().Int("last", 0, "number of messages (defaults to load_limit)")
	cmd.Flags().String("before", "", "page back from this message id")
	return cmd
}
