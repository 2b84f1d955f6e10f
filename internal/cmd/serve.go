package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/internal/server"
	"github.com/lvillar/rollcall/job"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr       string
		sourceRoot string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve attendance sheets over HTTP until interrupted:

  GET  /healthz
  GET  /api/facets?path=inscritos.xlsx
  GET  /api/records?path=inscritos.xlsx&hub=Norte&date=05/03/2024
  POST /api/sheet          JSON job in, PDF out (?batch=1 for every session)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFromContext(cmd.Context())
			def := server.DefaultConfig()
			read, write, shutdown := cfg.Server.Durations(def.ReadTimeout, def.WriteTimeout, def.ShutdownTimeout)

			sc := server.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     read,
				WriteTimeout:    write,
				ShutdownTimeout: shutdown,
				Defaults:        job.Overlay(job.Default(), cfg.Defaults),
				SourceRoot:      cfg.Server.SourceRoot,
				Version:         app.Version,
			}
			if cmd.Flags().Changed("addr") || sc.Addr == "" {
				sc.Addr = addr
			}
			if sourceRoot != "" {
				sc.SourceRoot = sourceRoot
			}
			return server.New(sc).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	cmd.Flags().StringVar(&sourceRoot, "source-root", "", "Only read local sources under this directory")
	return cmd
}
