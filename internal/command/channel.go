package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/types"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

// NewChannelCmd groups the channel subcommands.
func NewChannelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage workspace channels",
	}
	cmd.AddCommand(newChannelAddCmd(), newChannelLsCmd())
	return cmd
}

func newChannelAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			topic, _ := cmd.Flags().GetString("topic")
			group, _ := cmd.Flags().GetString("group")
			created, err := ctx.Adapter.CreateChannel(cmd.Context(), types.Channel{
				Name:  trimChannelRef(args[0]),
				Topic: topic,
				Group: group,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s in %s\n", created.Label(), ctx.Workspace)
			return nil
		},
	}
	cmd.Flags().String("topic", "", "channel topic")
	cmd.Flags().String("group", "", "section the channel is listed under")
	return cmd
}

func newChannelLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			channels, err := ctx.Adapter.Channels(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				if channels == nil {
					channels = []types.Channel{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"channels": channels})
			}
			if len(channels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No channels. Create one with: tern channel add <name>")
				return nil
			}

			faint := color.New(color.Faint)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = 60
			tbl.AddRow(headColor.Sprint("Channel"), headColor.Sprint("Section"), headColor.Sprint("Topic"))
			for _, ch := range channels {
				section := ch.Group
				if section == "" {
					section = "Channels"
				}
				label := ch.Label()
				if !ch.Following {
					label = faint.Sprint(label)
					section = faint.Sprint("Unfollowed")
				}
				tbl.AddRow(label, section, ch.Topic)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
	return cmd
}

func trimChannelRef(ref string) string {
	if len(ref) > 0 && ref[0] == '#' {
		return ref[1:]
	}
	return ref
}
