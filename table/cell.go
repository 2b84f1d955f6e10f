package table

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/rollcall"
)

// surface draws onto one gofpdf document. Text is passed through the
// document's cp1252 translator before drawing.
type surface struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// cell draws a bordered cell at (x, y) with its text clipped to the border.
// An empty text leaves a blank cell, as used for the signature column.
func (s surface) cell(x, y, w, h float64, text string, st cellStyle) {
	s.pdf.Rect(x, y, w, h, "D")
	if text == "" {
		return
	}
	s.setFont(st.font)
	s.pdf.ClipRect(x, y, w, h, false)
	s.pdf.SetXY(x, y)
	s.pdf.CellFormat(w, h, s.tr(text), "", 0, st.align, false, 0, "")
	s.pdf.ClipEnd()
}

// line writes one unbordered line of text and moves below it.
func (s surface) line(x, w, h float64, text string, font rollcall.FontSpec, align string) {
	s.setFont(font)
	s.pdf.SetX(x)
	s.pdf.CellFormat(w, h, s.tr(text), "", 1, align, false, 0, "")
}

func (s surface) setFont(f rollcall.FontSpec) {
	s.pdf.SetFont(f.Family, f.Style, f.Size)
}

// numberRows returns a copy of t with a leading column numbering the rows
// from 1.
func numberRows(t rollcall.Table, label string) rollcall.Table {
	out := rollcall.Table{
		Columns: append([]string{label}, t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, strconv.Itoa(i+1))
		out.Rows[i] = append(cells, row...)
	}
	return out
}
