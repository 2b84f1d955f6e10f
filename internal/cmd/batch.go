package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/internal/ui"
	"github.com/lvillar/rollcall/job"
)

func newBatchCmd(app *App) *cobra.Command {
	var (
		flags  jobFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render one sheet per session into a single PDF",
		Long: `Render a sheet for every hub and date of the source into one PDF.
--hub or --date restrict the batch to one hub or one date.`,
		Example: `  rollcall batch -s inscritos.xlsx -o todas.pdf
  rollcall batch -s inscritos.xlsx --hub Norte -o norte.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := flags.build(ctx, cmd.Flags())
			if err != nil {
				return err
			}
			w, done, err := pdfOutput(app, output, "listas_presenca.pdf")
			if err != nil {
				return err
			}
			res, err := job.Batch(ctx, w, j)
			if err != nil {
				return err
			}
			path, err := done()
			if err != nil {
				return err
			}

			u := ui.FromContext(ctx)
			for _, warn := range res.Warnings {
				u.Warning("%s", warn)
			}
			for _, s := range res.Sessions {
				u.Info("%s %s: %d rows, %d pages", s.Hub, s.Date, s.Rows, s.Pages)
			}
			u.Success("%d sheets on %d pages written to %s", len(res.Sessions), res.Pages, path)
			return nil
		},
	}
	flags.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout)`)
	return cmd
}
