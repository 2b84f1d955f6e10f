// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a text logger writing to w (stderr when nil). Debug lowers
// the level from Info to Debug, which exposes the layout decisions logged by
// the renderer.
func Setup(debug bool, w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(writer(w), options(debug))))
}

// SetupJSON installs a JSON logger writing to w (stderr when nil).
func SetupJSON(debug bool, w io.Writer) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(writer(w), options(debug))))
}

func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

func options(debug bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
