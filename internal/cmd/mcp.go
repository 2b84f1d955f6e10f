package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/mcp"
)

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin and stdout",
		Long: `Run a Model Context Protocol server speaking JSON-RPC over stdin and
stdout. Tools: list_facets, preview_attendance, create_attendance_pdf,
create_attendance_batch, merge_attendance_pdfs, watermark_pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := job.Overlay(job.Default(), ConfigFromContext(cmd.Context()).Defaults)
			s := mcp.NewServerWithIO(app.Stdin, app.Stdout, app.Version)
			mcp.RegisterDefaultTools(s, defaults)
			mcp.RegisterDefaultResources(s, defaults)
			return s.Run(cmd.Context())
		},
	}
}
