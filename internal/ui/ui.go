// Package ui prints colored status messages and record previews to the
// terminal. Messages go to stderr so that stdout stays free for PDF and JSON
// output.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/lvillar/rollcall"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode maps "auto", "always" and "never" to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

type contextKey struct{}

// UI writes formatted terminal output.
type UI struct {
	out *termenv.Output
}

// New creates a UI writing to stderr. NO_COLOR disables colors.
func New(mode ColorMode) *UI {
	return NewWithWriter(os.Stderr, mode)
}

// NewWithWriter creates a UI writing to w.
func NewWithWriter(w io.Writer, mode ColorMode) *UI {
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}
	profile := termenv.NewOutput(w).EnvColorProfile()
	switch mode {
	case ColorNever:
		profile = termenv.Ascii
	case ColorAlways:
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	}
	return &UI{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

// WithUI returns a new context carrying u.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the UI of ctx, or a new automatic one.
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(contextKey{}).(*UI); ok {
		return u
	}
	return New(ColorAuto)
}

// Success prints a success message in green.
func (u *UI) Success(format string, args ...any) {
	u.println("✓ ", termenv.ANSIGreen, format, args...)
}

// Warning prints a warning message in yellow.
func (u *UI) Warning(format string, args ...any) {
	u.println("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints an error message in red.
func (u *UI) Error(format string, args ...any) {
	u.println("✗ ", termenv.ANSIRed, format, args...)
}

// Info prints an informational message in blue.
func (u *UI) Info(format string, args ...any) {
	u.println("ℹ ", termenv.ANSIBlue, format, args...)
}

func (u *UI) println(prefix string, color termenv.ANSIColor, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(color))
}

// Writer returns the underlying writer.
func (u *UI) Writer() io.Writer {
	return u.out
}

// Table prints t as aligned columns with a bold header and numbered rows.
// Cells longer than maxWidth runes are cut with an ellipsis; zero means 40.
func (u *UI) Table(w io.Writer, t rollcall.Table, maxWidth int) {
	if maxWidth <= 0 {
		maxWidth = 40
	}
	header := append([]string{"#"}, t.Columns...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string{fmt.Sprint(i + 1)}, row...)
	}

	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(truncate(c, maxWidth)))
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	line := func(cells []string, bold bool) string {
		var b strings.Builder
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = truncate(cells[i], maxWidth)
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(c)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
			}
		}
		if bold {
			return u.out.String(b.String()).Bold().String()
		}
		return b.String()
	}

	fmt.Fprintln(w, line(header, true))
	for _, r := range rows {
		fmt.Fprintln(w, line(r, false))
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
