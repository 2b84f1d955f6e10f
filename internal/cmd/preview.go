package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/internal/ui"
)

func newPreviewCmd(app *App) *cobra.Command {
	var (
		flags   jobFlags
		limit   int
		width   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the records a sheet would print",
		Long: `Show the normalized records of a source. With --hub and --date only the
rows and columns of that session's sheet are shown.`,
		Example: `  rollcall preview -s inscritos.xlsx --hub Norte --date 05/03/2024`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := flags.build(ctx, cmd.Flags())
			if err != nil {
				return err
			}
			var tbl rollcall.Table
			if j.Hub != "" && j.Date != "" {
				tbl, err = j.Preview(ctx)
			} else {
				tbl, err = j.Table(ctx)
			}
			if err != nil {
				return err
			}

			total := tbl.Len()
			if limit > 0 && total > limit {
				tbl.Rows = tbl.Rows[:limit]
			}
			if jsonOut {
				enc := json.NewEncoder(app.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"columns": tbl.Columns, "rows": tbl.Rows, "total": total})
			}

			u := ui.FromContext(ctx)
			u.Table(app.Stdout, tbl, width)
			if total > tbl.Len() {
				u.Info("showing %d of %d rows", tbl.Len(), total)
			}
			if total == 0 {
				u.Warning("no rows")
			}
			return nil
		},
	}
	flags.register(cmd.Flags(), false)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().IntVar(&width, "width", 40, "Maximum cell width")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")
	return cmd
}
