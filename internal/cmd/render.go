package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/internal/ui"
	"github.com/lvillar/rollcall/job"
)

func newRenderCmd(app *App) *cobra.Command {
	var (
		flags  jobFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the attendance sheet of one session",
		Long: `Render the attendance sheet of one hub and date. The PDF is written to
--output, "-" for stdout, or lista_presenca_<hub>_<yyyymmdd>.pdf.`,
		Example: `  rollcall render -s inscritos.xlsx --hub Norte --date 05/03/2024
  rollcall render -j turma.yaml --verify qr -o - | lp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := flags.build(ctx, cmd.Flags())
			if err != nil {
				return err
			}
			w, done, err := pdfOutput(app, output, job.FileName(j))
			if err != nil {
				return err
			}
			res, err := job.Run(ctx, w, j)
			if err != nil {
				return err
			}
			path, err := done()
			if err != nil {
				return err
			}

			u := ui.FromContext(ctx)
			for _, warn := range res.Report.Warnings {
				u.Warning("%v", warn)
			}
			u.Success("%d rows on %d pages written to %s (document %s)", res.Report.Rows, res.Pages, path, res.DocumentID)
			return nil
		},
	}
	flags.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout)`)
	return cmd
}
