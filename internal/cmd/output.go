package cmd

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

// pdfOutput writes a PDF to path, to "-" meaning stdout, or to fallback when
// path is empty. PDFs are never written to a terminal.
func pdfOutput(app *App, path, fallback string) (io.Writer, func() (string, error), error) {
	if path == "" {
		path = fallback
	}
	if path == "-" {
		if f, ok := app.Stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, nil, &userError{msg: "refusing to write a PDF to a terminal; use --output"}
		}
		return app.Stdout, func() (string, error) { return "stdout", nil }, nil
	}
	var buf bytes.Buffer
	return &buf, func() (string, error) {
		return path, os.WriteFile(path, buf.Bytes(), 0o644)
	}, nil
}
