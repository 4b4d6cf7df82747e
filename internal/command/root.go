package command

import (
	"os"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/spf13/cobra"
)

const AppName = "tern"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Tern - terminal chat browser",
		Long:          "Tern browses the channels of every registered workspace in one terminal list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logging.InitForCLI(logging.ParseLevel(level), cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("project", "", "operate in the workspace with this name or path")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().String("log-level", "warn", "log level for command output (debug, info, warn, error)")

	cmd.AddCommand(
		NewInitCmd(),
		NewChatCmd(),
		NewChannelCmd(),
		NewFollowCmd(),
		NewUnfollowCmd(),
		NewPostCmd(),
		NewHistoryCmd(),
		NewEditCmd(),
		NewRmCmd(),
		NewReactCmd(),
		NewWorkspacesCmd(),
		NewMCPCmd(),
		NewRebuildCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
