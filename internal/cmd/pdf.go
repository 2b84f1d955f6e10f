package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/internal/ui"
	"github.com/lvillar/rollcall/pageops"
)

func newMergeCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "merge <file.pdf>...",
		Short:   "Merge PDF files into one",
		Example: `  rollcall merge -o todas.pdf norte.pdf sul.pdf`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([][]byte, len(args))
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				docs[i] = data
			}
			w, done, err := pdfOutput(app, output, "")
			if err != nil {
				return err
			}
			pages, err := pageops.Merge(w, docs...)
			if err != nil {
				return err
			}
			path, err := done()
			if err != nil {
				return err
			}
			ui.FromContext(cmd.Context()).Success("%d files merged into %s (%d pages)", len(args), path, pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout)`)
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newWatermarkCmd(app *App) *cobra.Command {
	var (
		output string
		wm     pageops.TextWatermark
	)
	cmd := &cobra.Command{
		Use:     "watermark <file.pdf>",
		Short:   "Stamp a text watermark over every page of a PDF",
		Example: `  rollcall watermark --text CANCELADA -o cancelada.pdf lista.pdf`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if wm.Text == "" {
				return &userError{msg: "--text is required"}
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			w, done, err := pdfOutput(app, output, "")
			if err != nil {
				return err
			}
			pages, err := pageops.AddTextWatermark(w, data, wm)
			if err != nil {
				return err
			}
			path, err := done()
			if err != nil {
				return err
			}
			ui.FromContext(cmd.Context()).Success("watermark added to %d pages of %s", pages, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("-" for stdout)`)
	cmd.Flags().StringVar(&wm.Text, "text", "", "Watermark text")
	cmd.Flags().Float64Var(&wm.FontSize, "font-size", 0, "Font size in points (default 60)")
	cmd.Flags().Float64Var(&wm.Opacity, "opacity", 0, "Opacity from 0 to 1 (default 0.3)")
	cmd.Flags().Float64Var(&wm.Angle, "angle", 0, "Rotation in degrees (default 45)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
