package table

import (
	"fmt"
	"log/slog"

	"github.com/lvillar/rollcall"
)

// Policy records how a ColumnPlan derived its data column widths.
type Policy string

const (
	PolicyNatural Policy = "natural" // content widths used unchanged
	PolicyFill    Policy = "fill"    // slack spread proportionally over the data columns
	PolicyScale   Policy = "scale"   // content scaled down to fit the page
	PolicyFloor   Policy = "floor"   // fallback floor widths, nothing to measure or no room
)

// PlannedColumn is one column of a ColumnPlan.
type PlannedColumn struct {
	Name      string
	Natural   float64 // content width plus padding, before fitting
	Width     float64 // printed width
	Align     string
	Signature bool // the synthetic trailing signature column
}

// ColumnPlan is the ordered set of printed columns for one render: every
// table column followed by the signature column.
type ColumnPlan struct {
	Columns     []PlannedColumn
	UsableWidth float64
	Natural     float64 // sum of natural data column widths
	Scale       float64 // factor applied to natural widths
	Policy      Policy
	Warnings    []error
}

// Labels returns the header labels in print order.
func (p ColumnPlan) Labels() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name
	}
	return out
}

// Widths returns the printed widths in print order.
func (p ColumnPlan) Widths() []float64 {
	out := make([]float64, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Width
	}
	return out
}

// TotalWidth returns the sum of all printed widths.
func (p ColumnPlan) TotalWidth() float64 {
	total := 0.0
	for _, c := range p.Columns {
		total += c.Width
	}
	return total
}

// DataColumns returns the number of table columns in the plan.
func (p ColumnPlan) DataColumns() int {
	return len(p.Columns) - 1
}

// PlanParams are the layout constants the planner depends on.
type PlanParams struct {
	UsableWidth    float64
	SignatureWidth float64
	Padding        float64 // added on each side of measured content
	MinColumnWidth float64
	HeaderFont     rollcall.FontSpec
	BodyFont       rollcall.FontSpec
	SignatureLabel string
	FillSlack      bool
	Align          map[string]string
}

// PlanColumns computes printed column widths for t.
//
// Each data column's natural width is the widest of its header (in the header
// font) and its cells (in the body font) plus padding on both sides. When the
// natural widths and the signature column fit in the usable width they are
// kept, or stretched proportionally to fill it when FillSlack is set.
// Otherwise they are scaled by (UsableWidth - SignatureWidth) / total. The
// signature column is never resized.
//
// Degenerate inputs are corrected with MinColumnWidth floors and reported in
// the plan's Warnings.
func PlanColumns(t rollcall.Table, m Measurer, p PlanParams) ColumnPlan {
	plan := ColumnPlan{UsableWidth: p.UsableWidth, Scale: 1}
	sig := p.SignatureWidth
	if sig < 0 {
		sig = 0
	}
	minW := p.MinColumnWidth
	if minW <= 0 {
		minW = 1
	}

	cols := make([]PlannedColumn, len(t.Columns), len(t.Columns)+1)
	for i, name := range t.Columns {
		w := m.TextWidth(name, p.HeaderFont)
		for _, row := range t.Rows {
			if i >= len(row) {
				continue
			}
			if cw := m.TextWidth(row[i], p.BodyFont); cw > w {
				w = cw
			}
		}
		natural := 0.0
		if w > 0 {
			natural = w + 2*p.Padding
		}
		cols[i] = PlannedColumn{
			Name:    name,
			Natural: natural,
			Align:   normalizeAlign(p.Align[name]),
		}
		plan.Natural += natural
	}

	avail := p.UsableWidth - sig
	switch {
	case len(cols) == 0:
		plan.Policy = PolicyFloor
		plan.Warnings = append(plan.Warnings, &rollcall.DegenerateLayoutError{Reason: "table has no data columns"})
	case p.UsableWidth <= 0 || avail <= 0:
		plan.Policy = PolicyFloor
		plan.Warnings = append(plan.Warnings, &rollcall.DegenerateLayoutError{
			Reason: fmt.Sprintf("usable width %.2f leaves no room beside a %.2f signature column", p.UsableWidth, sig),
		})
		for i := range cols {
			cols[i].Width = minW
		}
	default:
		total := plan.Natural
		if total == 0 {
			// Nothing to measure: start every column from the floor width.
			for i := range cols {
				cols[i].Natural = minW
			}
			total = minW * float64(len(cols))
			plan.Warnings = append(plan.Warnings, &rollcall.DegenerateLayoutError{Reason: "no measurable content, using floor widths"})
		}
		switch {
		case total > avail:
			plan.Policy = PolicyScale
			plan.Scale = avail / total
		case p.FillSlack:
			plan.Policy = PolicyFill
			plan.Scale = avail / total
		default:
			plan.Policy = PolicyNatural
		}
		for i := range cols {
			cols[i].Width = cols[i].Natural * plan.Scale
		}
	}

	cols = append(cols, PlannedColumn{
		Name:      p.SignatureLabel,
		Natural:   sig,
		Width:     sig,
		Align:     AlignLeft,
		Signature: true,
	})
	plan.Columns = cols

	slog.Debug("column plan",
		"columns", len(cols),
		"policy", plan.Policy,
		"natural", plan.Natural,
		"scale", plan.Scale,
		"usable", p.UsableWidth)
	return plan
}
