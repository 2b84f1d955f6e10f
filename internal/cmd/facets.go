package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFacetsCmd(app *App) *cobra.Command {
	var (
		flags   jobFlags
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "facets",
		Short: "List the hubs, dates and sessions of a source",
		Example: `  rollcall facets -s inscritos.xlsx
  rollcall facets -s inscritos.csv --hub Norte --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := flags.build(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			facets, err := j.Facets(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(app.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(facets)
			}

			w := app.Stdout
			fmt.Fprintf(w, "Hubs:  %s\n", strings.Join(facets.Hubs, ", "))
			fmt.Fprintf(w, "Dates: %s\n", strings.Join(facets.Dates, ", "))
			fmt.Fprintln(w, "Sessions:")
			for _, s := range facets.Sessions {
				fmt.Fprintf(w, "  %s\t%s\t%d\n", s.Hub, s.Date, s.Rows)
			}
			return nil
		},
	}
	flags.register(cmd.Flags(), false)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")
	return cmd
}
