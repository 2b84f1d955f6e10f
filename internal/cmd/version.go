package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(app.Stdout, "rollcall %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime)
			return err
		},
	}
}
