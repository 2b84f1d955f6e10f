package table

import (
	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/rollcall"
)

// Measurer reports the rendered width of text in a font, in document units.
// The planner and the drawing pass must share one Measurer so that planned
// widths match what is drawn.
type Measurer interface {
	TextWidth(text string, font rollcall.FontSpec) float64
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, font rollcall.FontSpec) float64

// TextWidth calls f(text, font).
func (f MeasureFunc) TextWidth(text string, font rollcall.FontSpec) float64 {
	return f(text, font)
}

// pdfMeasurer measures with the core font metrics of a gofpdf document.
// Text goes through the same cp1252 translation used when drawing.
type pdfMeasurer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (m pdfMeasurer) TextWidth(text string, font rollcall.FontSpec) float64 {
	if text == "" {
		return 0
	}
	m.pdf.SetFont(font.Family, font.Style, font.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// NewMeasurer returns a Measurer backed by a scratch document in the given
// unit ("mm" when empty). It is useful for planning columns without
// rendering.
func NewMeasurer(unit string) Measurer {
	if unit == "" {
		unit = rollcall.UnitMillimeter
	}
	pdf := gofpdf.New("P", unit, rollcall.PageSizeA4, "")
	return pdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}
