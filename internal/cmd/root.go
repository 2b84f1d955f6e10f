package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvillar/rollcall/internal/config"
	"github.com/lvillar/rollcall/internal/logging"
	"github.com/lvillar/rollcall/internal/ui"
)

func newRootCmd(app *App) *cobra.Command {
	var (
		configPath string
		debugMode  bool
		logJSON    bool
		colorFlag  string
	)

	rootCmd := &cobra.Command{
		Use:   "rollcall",
		Short: "Print attendance sheets from enrollment spreadsheets",
		Long: `rollcall turns an enrollment table (CSV, XLSX, a published Google Sheet or
JSON) into a paginated attendance sheet PDF with a signature column, one
sheet per training hub and session date.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.LoadFromPath(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			debug := debugMode || cfg.Log.Debug
			if logJSON || cfg.Log.JSON {
				logging.SetupJSON(debug, app.Stderr)
			} else {
				logging.Setup(debug, app.Stderr)
			}

			mode := colorFlag
			if !cmd.Flags().Changed("color") && cfg.Color != "" {
				mode = cfg.Color
			}
			colorMode, err := ui.ParseColorMode(mode)
			if err != nil {
				return &userError{msg: err.Error()}
			}

			app.ui = ui.NewWithWriter(app.Stderr, colorMode)
			ctx := WithConfig(cmd.Context(), cfg)
			ctx = ui.WithUI(ctx, app.ui)
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("rollcall %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default $ROLLCALL_CONFIG or ~/.config/rollcall/config.yaml)")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&colorFlag, "color", "auto", "Color output: auto|always|never")

	rootCmd.AddCommand(
		newFacetsCmd(app),
		newPreviewCmd(app),
		newRenderCmd(app),
		newBatchCmd(app),
		newMergeCmd(app),
		newWatermarkCmd(app),
		newServeCmd(app),
		newMCPCmd(app),
		newVersionCmd(app),
	)
	return rootCmd
}
