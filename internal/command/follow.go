package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFollowCmd creates the follow command.
func NewFollowCmd() *cobra.Command {
	return newFollowingCmd("follow", "Follow a channel so it is listed in its section", true)
}

// NewUnfollowCmd creates the unfollow command.
func NewUnfollowCmd() *cobra.Command {
	return newFollowingCmd("unfollow", "Move a channel to the Unfollowed section", false)
}

func newFollowingCmd(use, short string, following bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <channel>",
		Short: short,
		Args:  cobra.ExactArgs(1),
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
			if err := ctx.Adapter.SetFollowing(cmd.Context(), ch.ID, following); err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"channel": ch.ID, "following": following})
			}
			verb := "Following"
			if !following {
				verb = "Unfollowed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, ch.Label())
			return nil
		},
	}
}
