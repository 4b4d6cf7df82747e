package command

import (
	"fmt"

	"github.com/adamavenir/tern/internal/mcp"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workspace as MCP tools over stdio",
		Long: `Serve channel listing, history, posting and reactions of one workspace
to an MCP client over stdin/stdout.

Example client entry:
  {"command": "tern", "args": ["mcp", "--project", "work"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for mcp"))
			}
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := mcp.Serve(cmd.Context(), ctx.Adapter, cmd.Root().Version); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
	return cmd
}
