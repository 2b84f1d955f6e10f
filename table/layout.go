package table

import (
	"fmt"
	"log/slog"

	"github.com/lvillar/rollcall"
)

// state is a step of the page layout state machine.
type state int

const (
	stateAwaitingHeader state = iota
	stateInBody
	statePageBreak
	stateDone
)

func (s state) String() string {
	switch s {
	case stateAwaitingHeader:
		return "awaiting-header"
	case stateInBody:
		return "in-body"
	case statePageBreak:
		return "page-break"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// cursor tracks the current page and the vertical offset from the top of the
// grid body on that page.
type cursor struct {
	page   int
	offset float64
}

// HeaderEmission records one drawing of the header row.
type HeaderEmission struct {
	Page   int
	Labels []string
	Widths []float64
}

// threshold tolerance for accumulated float offsets
const epsilon = 1e-9

// layout streams one table onto pages. One layout serves one section.
type layout struct {
	surface
	cfg   rollcall.Config
	plan  ColumnPlan
	deco  *decorations
	state state
	cur   cursor

	firstPage  int    // first page of the section
	pagesAlias string // footer alias for the section's page total

	left      float64 // x of the grid
	width     float64 // width of the title block and grid
	bodyTop   float64 // y of the first body row on the current page
	threshold float64

	rows     int
	pageRows []int
	headers  []HeaderEmission
	warnings []error
}

func newLayout(s surface, cfg rollcall.Config, plan ColumnPlan, deco *decorations) *layout {
	width := plan.TotalWidth()
	if plan.UsableWidth > width {
		width = plan.UsableWidth
	}
	return &layout{
		surface: s,
		cfg:     cfg,
		plan:    plan,
		deco:    deco,
		state:   stateAwaitingHeader,
		left:    cfg.Margins.Left,
		width:   width,

		pagesAlias: "{nb}",
	}
}

// run draws the title block, the header and every row of t. Rows must
// already match the plan's data columns.
func (l *layout) run(t rollcall.Table, rc rollcall.ReportContext) {
	next := 0
	for l.state != stateDone {
		switch l.state {
		case stateAwaitingHeader:
			l.pdf.AddPage()
			l.cur.page = l.pdf.PageNo()
			l.firstPage = l.cur.page
			if l.deco != nil {
				if w := l.deco.begin(rc, l.firstPage, l.pagesAlias); w != nil {
					l.warnings = append(l.warnings, w)
				}
			}
			l.drawTitle(rc)
			l.drawHeader()
			l.resolveThreshold()
			l.state = stateInBody

		case stateInBody:
			if next == len(t.Rows) {
				l.finish()
				l.state = stateDone
				continue
			}
			// A fresh page always takes at least one row, so a threshold
			// smaller than a row cannot stall the layout.
			if l.pageRows[len(l.pageRows)-1] > 0 && l.cur.offset+l.cfg.RowHeight > l.threshold+epsilon {
				l.state = statePageBreak
				continue
			}
			l.drawRow(t.Rows[next])
			next++

		case statePageBreak:
			l.pdf.AddPage()
			l.cur.page = l.pdf.PageNo()
			l.drawHeader()
			slog.Debug("page break", "page", l.cur.page, "row", next)
			l.state = stateInBody
		}
	}
}

// drawTitle writes the title, hub, date and source lines at the top of the
// first page.
func (l *layout) drawTitle(rc rollcall.ReportContext) {
	top := l.cfg.Margins.Top
	l.pdf.SetXY(l.left, top)

	textW := l.width
	if l.deco != nil && l.deco.logo != nil {
		textW -= l.deco.logoWidth() + l.cfg.CellPadding
	}

	if rc.Title != "" {
		l.line(l.left, textW, l.lineHeight(l.cfg.TitleFont.Size), rc.Title, l.cfg.TitleFont, AlignCenter)
	}
	lineH := l.lineHeight(l.cfg.BodyFont.Size + 1)
	infoFont := rollcall.FontSpec{Family: l.cfg.BodyFont.Family, Size: l.cfg.BodyFont.Size + 1}
	labels := l.cfg.Labels
	if rc.Hub != "" {
		l.line(l.left, textW, lineH, labels.Hub+": "+rc.Hub, infoFont, AlignLeft)
	}
	if rc.Date != "" {
		l.line(l.left, textW, lineH, labels.Date+": "+rc.Date, infoFont, AlignLeft)
	}
	if rc.Source != "" {
		l.line(l.left, textW, lineH, labels.Source+": "+rc.Source, infoFont, AlignLeft)
	}
	if l.deco != nil && l.deco.logo != nil {
		l.deco.drawLogo(l.left+l.width-l.deco.logoWidth(), top)
		if bottom := top + l.deco.logoHeight(); l.pdf.GetY() < bottom {
			l.pdf.SetY(bottom)
		}
	}
	l.pdf.Ln(lineH / 3)
}

// lineHeight returns the height of a text line set in a font of size pt.
func (l *layout) lineHeight(pt float64) float64 {
	return pt * 1.4 / l.pdf.GetConversionRatio()
}

// drawHeader draws the header row at the current y and resets the cursor to
// the top of the body.
func (l *layout) drawHeader() {
	y := l.pdf.GetY()
	x := l.left
	for _, col := range l.plan.Columns {
		l.cell(x, y, col.Width, l.cfg.RowHeight, col.Name, headerStyle(l.cfg, col))
		x += col.Width
	}
	l.headers = append(l.headers, HeaderEmission{
		Page:   l.cur.page,
		Labels: l.plan.Labels(),
		Widths: l.plan.Widths(),
	})
	l.bodyTop = y + l.cfg.RowHeight
	l.cur.offset = 0
	l.pageRows = append(l.pageRows, 0)
	l.pdf.SetXY(l.left, l.bodyTop)
}

// drawRow draws the data cells of row followed by an empty signature cell.
func (l *layout) drawRow(row []string) {
	y := l.bodyTop + l.cur.offset
	x := l.left
	for i, col := range l.plan.Columns {
		text := ""
		if !col.Signature {
			text = row[i]
		}
		l.cell(x, y, col.Width, l.cfg.RowHeight, text, bodyStyle(l.cfg, col))
		x += col.Width
	}
	l.cur.offset += l.cfg.RowHeight
	l.pageRows[len(l.pageRows)-1]++
	l.rows++
	l.pdf.SetXY(l.left, y+l.cfg.RowHeight)
}

// resolveThreshold fixes the page break threshold once the first header has
// been drawn and the body top of page 1 is known.
func (l *layout) resolveThreshold() {
	_, pageH := l.pdf.GetPageSize()
	limit := pageH - l.cfg.Margins.Bottom - l.cfg.FooterHeight - l.bodyTop
	switch t := l.cfg.PageBreakThreshold; {
	case t <= 0:
		l.threshold = limit
	case t > limit:
		l.threshold = limit
		l.warnings = append(l.warnings, &rollcall.DegenerateLayoutError{
			Reason: fmt.Sprintf("page break threshold %.2f exceeds the %.2f available on the page", t, limit),
		})
	default:
		l.threshold = t
	}
	if l.threshold < l.cfg.RowHeight {
		l.warnings = append(l.warnings, &rollcall.DegenerateLayoutError{
			Reason: fmt.Sprintf("page break threshold %.2f is smaller than one row", l.threshold),
		})
	}
}

// finish draws the coordinator signature line below the grid, on a new page
// when it does not fit above the footer.
func (l *layout) finish() {
	if !l.cfg.CoordinatorLine {
		return
	}
	h := l.cfg.RowHeight
	y := l.bodyTop + l.cur.offset + h*0.75
	_, pageH := l.pdf.GetPageSize()
	if y+h > pageH-l.cfg.Margins.Bottom-l.cfg.FooterHeight {
		l.pdf.AddPage()
		y = l.cfg.Margins.Top
	}
	label := l.cfg.Labels.Coordinator
	l.setFont(l.cfg.BodyFont)
	labelW := l.pdf.GetStringWidth(l.tr(label)) + 2*l.cfg.CellPadding
	l.pdf.SetXY(l.left, y)
	l.pdf.CellFormat(labelW, h, l.tr(label), "", 0, AlignLeft, false, 0, "")
	base := y + h*0.75
	l.pdf.Line(l.left+labelW, base, l.left+l.width, base)
	l.pdf.SetXY(l.left, y+h)
}
