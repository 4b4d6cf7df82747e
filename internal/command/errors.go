package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/tern/internal/core"
	"github.com/spf13/cobra"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	switch {
	case isSchemaError(err):
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: This looks like a schema mismatch. Try: tern rebuild")
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: Pass --project with a registered workspace, or run tern init here.")
	}

	return err
}

// isSchemaError checks if an error is a SQLite schema mismatch.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "has no column")
}
