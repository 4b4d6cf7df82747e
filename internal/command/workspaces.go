package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/core"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

// NewWorkspacesCmd lists the workspaces chat opens.
func NewWorkspacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List registered workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			config, err := core.LoadConfig("")
			if err != nil {
				return writeCommandError(cmd, err)
			}

			workspaces := config.Workspaces
			if workspaces == nil {
				workspaces = []core.Workspace{}
			}
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"workspaces": workspaces})
			}
			if len(workspaces) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workspaces registered. Run 'tern init' in a project.")
				return nil
			}

			missing := color.New(color.FgRed)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(headColor.Sprint("Name"), headColor.Sprint("Path"), "")
			for _, ws := range workspaces {
				status := ""
				if _, err := core.OpenProject(ws.Path); err != nil {
					status = missing.Sprint("missing")
				}
				tbl.AddRow(ws.Name, ws.Path, status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
	return cmd
}
