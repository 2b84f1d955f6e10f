// Package table renders a rollcall.Table as a paginated, bordered attendance
// grid in a PDF document.
//
// Rendering is a two-pass process. PlanColumns first measures every column
// name and cell with the same fonts used for drawing and fits the columns,
// plus a trailing fixed-width signature column, into the printable width.
// The page layout then draws the title block, the bold header row and the
// body rows, starting a new page and repeating the header whenever the next
// row would cross the page break threshold.
//
// Rows have a constant height. Text that does not fit a cell is clipped at
// the cell border, never wrapped.
package table

import (
	"strings"

	"github.com/lvillar/rollcall"
)

// Alignments accepted for columns.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

// Border line width in points, converted to the document unit at render time.
const borderWidthPt = 0.5

// normalizeAlign maps user input to "L", "C" or "R".
func normalizeAlign(align string) string {
	switch strings.ToUpper(strings.TrimSpace(align)) {
	case "C", "CENTER", "CENTRE":
		return AlignCenter
	case "R", "RIGHT":
		return AlignRight
	default:
		return AlignLeft
	}
}

// cellStyle is the font and alignment used to draw one cell.
type cellStyle struct {
	font  rollcall.FontSpec
	align string
}

func headerStyle(cfg rollcall.Config, col PlannedColumn) cellStyle {
	return cellStyle{font: cfg.HeaderFont, align: col.Align}
}

func bodyStyle(cfg rollcall.Config, col PlannedColumn) cellStyle {
	return cellStyle{font: cfg.BodyFont, align: col.Align}
}

// withDefaults fills zero font fields from def.
func withDefaults(f, def rollcall.FontSpec) rollcall.FontSpec {
	if f.Family == "" {
		f.Family = def.Family
	}
	if f.Size <= 0 {
		f.Size = def.Size
	}
	return f
}
