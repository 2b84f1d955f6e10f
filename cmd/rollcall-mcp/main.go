// Command rollcall-mcp is an MCP (Model Context Protocol) server that lets AI
// assistants print attendance sheets from enrollment spreadsheets.
//
// # Installation
//
//	go install github.com/lvillar/rollcall/cmd/rollcall-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "rollcall": {
//	      "command": "rollcall-mcp"
//	    }
//	  }
//	}
//
// Job defaults are read from $ROLLCALL_CONFIG or ~/.config/rollcall/config.yaml.
//
// # Available Tools
//
//   - list_facets: Hubs, dates and sessions of a source
//   - preview_attendance: Rows a sheet would print
//   - create_attendance_pdf: Render one session's sheet
//   - create_attendance_batch: Render every session into one PDF
//   - merge_attendance_pdfs: Merge PDF files
//   - watermark_pdf: Stamp a text watermark
//
// # Available Resources
//
//   - sheet://facets?path=... : Hubs, dates and sessions
//   - sheet://records?path=...&hub=...&date=... : Normalized records
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/rollcall/internal/config"
	"github.com/lvillar/rollcall/internal/logging"
	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/mcp"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rollcall-mcp: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	if cfg.Log.JSON {
		logging.SetupJSON(cfg.Log.Debug, os.Stderr)
	} else {
		logging.Setup(cfg.Log.Debug, os.Stderr)
	}

	defaults := job.Overlay(job.Default(), cfg.Defaults)
	server := mcp.NewServer(Version)
	mcp.RegisterDefaultTools(server, defaults)
	mcp.RegisterDefaultResources(server, defaults)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "rollcall-mcp: %v\n", err)
		os.Exit(1)
	}
}
