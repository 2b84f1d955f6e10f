package table

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/rollcall"
)

// Report describes one rendered sheet.
type Report struct {
	PDF       []byte
	Pages     int   // total pages, including a trailing coordinator-only page
	Rows      int   // body rows drawn
	PageRows  []int // body rows on each grid page
	Headers   []HeaderEmission
	Plan      ColumnPlan
	Threshold float64 // resolved page break threshold
	Warnings  []error
}

// Renderer renders tables with a fixed Config. A Renderer holds no per-render
// state and is safe for concurrent use.
type Renderer struct {
	cfg rollcall.Config
}

// NewRenderer creates a Renderer for cfg.
func NewRenderer(cfg rollcall.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Config returns the configuration the Renderer was created with.
func (r *Renderer) Config() rollcall.Config {
	return r.cfg
}

// Render lays t out as a paginated attendance sheet.
//
// The table is validated first; a malformed table yields an error and no
// document. An empty table is not an error: a single page with the title
// block and the header row is produced and rollcall.ErrEmptyTable is listed
// in the report warnings.
func (r *Renderer) Render(t rollcall.Table, rc rollcall.ReportContext) (*Report, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.open(rc)
	if err != nil {
		return nil, err
	}
	rep := doc.section(t, rc, "{nb}")
	data, pages, err := doc.close()
	if err != nil {
		return nil, err
	}
	rep.PDF = data
	rep.Pages = pages
	rep.Warnings = append(doc.warnings, rep.Warnings...)

	for _, w := range rep.Warnings {
		slog.Warn("sheet rendered with warning", "warning", w)
	}
	slog.Info("sheet rendered",
		"rows", rep.Rows,
		"pages", pages,
		"policy", rep.Plan.Policy,
		"bytes", len(data))
	return rep, nil
}

// Section is one sheet of a multi-sheet document.
type Section struct {
	Table   rollcall.Table
	Context rollcall.ReportContext
}

// Book describes a document holding several sheets. Each section report
// carries the section's own pages, rows and warnings; its PDF field is nil.
// Warnings lists the problems affecting the whole document.
type Book struct {
	PDF      []byte
	Pages    int
	Sections []*Report
	Warnings []error
}

// RenderBook renders every section into a single document. Each section
// starts on a new page with its own title block, repeats its header row on
// every page it spans and numbers its pages on its own. Every table is
// validated before anything is drawn.
func (r *Renderer) RenderBook(sections ...Section) (*Book, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections to render", rollcall.ErrInvalidParam)
	}
	for i, sec := range sections {
		if err := sec.Table.Validate(); err != nil {
			return nil, fmt.Errorf("table: section %d: %w", i+1, err)
		}
	}

	doc, err := r.open(rollcall.ReportContext{Title: sections[0].Context.Title})
	if err != nil {
		return nil, err
	}
	book := &Book{Warnings: doc.warnings}
	for i, sec := range sections {
		alias := fmt.Sprintf("{nb%d}", i+1)
		rep := doc.section(sec.Table, sec.Context, alias)
		doc.pdf.RegisterAlias(alias, strconv.Itoa(rep.Pages))
		for _, w := range rep.Warnings {
			slog.Warn("section rendered with warning", "section", i+1, "warning", w)
		}
		book.Sections = append(book.Sections, rep)
	}
	book.PDF, book.Pages, err = doc.close()
	if err != nil {
		return nil, err
	}

	for _, w := range book.Warnings {
		slog.Warn("book rendered with warning", "warning", w)
	}
	slog.Info("book rendered",
		"sections", len(book.Sections),
		"pages", book.Pages,
		"bytes", len(book.PDF))
	return book, nil
}

// document is one gofpdf document receiving one or more sections.
type document struct {
	cfg      rollcall.Config
	pdf      *gofpdf.Fpdf
	surface  surface
	usable   float64
	deco     *decorations
	warnings []error
}

// open creates the document and installs its decorations. meta supplies
// the document metadata.
func (r *Renderer) open(meta rollcall.ReportContext) (*document, error) {
	cfg, warnings := normalizeConfig(r.cfg)
	if cfg.RowNumbers {
		if _, ok := cfg.ColumnAlign[cfg.Labels.RowNumber]; !ok {
			cfg.ColumnAlign[cfg.Labels.RowNumber] = AlignCenter
		}
	}

	pdf := newDocument(cfg, meta)
	s := surface{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	usable, w := usableWidth(pdf, cfg)
	if w != nil {
		warnings = append(warnings, w)
	}
	deco, decoWarnings, err := installDecorations(s, cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, decoWarnings...)
	return &document{cfg: cfg, pdf: pdf, surface: s, usable: usable, deco: deco, warnings: warnings}, nil
}

// section lays t out starting on a new page. pagesAlias stands for the
// section's page total in the footer.
func (d *document) section(t rollcall.Table, rc rollcall.ReportContext, pagesAlias string) *Report {
	cfg := d.cfg
	if cfg.RowNumbers {
		t = numberRows(t, cfg.Labels.RowNumber)
	}
	var warnings []error
	if t.Len() == 0 {
		warnings = append(warnings, rollcall.ErrEmptyTable)
	}

	plan := PlanColumns(t, pdfMeasurer(d.surface), PlanParams{
		UsableWidth:    d.usable,
		SignatureWidth: cfg.SignatureWidth,
		Padding:        cfg.CellPadding,
		MinColumnWidth: cfg.MinColumnWidth,
		HeaderFont:     cfg.HeaderFont,
		BodyFont:       cfg.BodyFont,
		SignatureLabel: cfg.Labels.Signature,
		FillSlack:      cfg.FillSlack,
		Align:          cfg.ColumnAlign,
	})
	warnings = append(warnings, plan.Warnings...)

	lay := newLayout(d.surface, cfg, plan, d.deco)
	lay.pagesAlias = pagesAlias
	lay.run(t, rc)
	warnings = append(warnings, lay.warnings...)

	return &Report{
		Pages:     d.pdf.PageNo() - lay.firstPage + 1,
		Rows:      lay.rows,
		PageRows:  lay.pageRows,
		Headers:   lay.headers,
		Plan:      plan,
		Threshold: lay.threshold,
		Warnings:  warnings,
	}
}

// close finishes the document and returns its bytes and page count.
func (d *document) close() ([]byte, int, error) {
	if d.pdf.Err() {
		return nil, 0, rollcall.NewRenderError("Render", d.pdf.Error())
	}
	pages := d.pdf.PageCount()
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, 0, rollcall.NewRenderError("Output", err)
	}
	return buf.Bytes(), pages, nil
}

// WriteTo renders t and writes the document to w.
func (r *Renderer) WriteTo(w io.Writer, t rollcall.Table, rc rollcall.ReportContext) (*Report, error) {
	rep, err := r.Render(t, rc)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(rep.PDF); err != nil {
		return nil, fmt.Errorf("rollcall: write sheet: %w", err)
	}
	return rep, nil
}

// Render renders t with DefaultConfig modified by opts and returns the PDF
// bytes.
func Render(t rollcall.Table, rc rollcall.ReportContext, opts ...rollcall.Option) ([]byte, error) {
	rep, err := RenderReport(t, rc, opts...)
	if err != nil {
		return nil, err
	}
	return rep.PDF, nil
}

// RenderReport is like Render but returns the full Report.
func RenderReport(t rollcall.Table, rc rollcall.ReportContext, opts ...rollcall.Option) (*Report, error) {
	return NewRenderer(rollcall.NewConfig(opts...)).Render(t, rc)
}

// newDocument creates the gofpdf document for cfg. Automatic page breaks
// are disabled; the layout decides where pages end.
func newDocument(cfg rollcall.Config, rc rollcall.ReportContext) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientationCode(cfg.Orientation), cfg.Unit, cfg.PageSize, "")
	pdf.SetMargins(cfg.Margins.Left, cfg.Margins.Top, cfg.Margins.Right)
	pdf.SetAutoPageBreak(false, cfg.Margins.Bottom)
	pdf.SetCellMargin(cfg.CellPadding)
	pdf.SetCompression(cfg.Compress)
	pdf.SetLineWidth(borderWidthPt / pdf.GetConversionRatio())
	pdf.AliasNbPages("")

	pdf.SetCreator("rollcall", true)
	if rc.Title != "" {
		pdf.SetTitle(rc.Title, true)
	}
	if subject := strings.TrimSpace(rc.Hub + " " + rc.Date); subject != "" {
		pdf.SetSubject(subject, true)
	}
	if cfg.Author != "" {
		pdf.SetAuthor(cfg.Author, true)
	}
	return pdf
}

func orientationCode(o string) string {
	switch strings.ToLower(o) {
	case rollcall.OrientationLandscape, "l":
		return "L"
	default:
		return "P"
	}
}

// usableWidth returns the printable width for the grid. A configured width
// larger than the page allows is clamped.
func usableWidth(pdf *gofpdf.Fpdf, cfg rollcall.Config) (float64, error) {
	pageW, _ := pdf.GetPageSize()
	physical := pageW - cfg.Margins.Left - cfg.Margins.Right
	switch w := cfg.UsableWidth; {
	case w == 0:
		return physical, nil
	case w < 0:
		return physical, &rollcall.DegenerateLayoutError{
			Reason: fmt.Sprintf("negative usable width %.2f, using page width", w),
		}
	case w > physical:
		return physical, &rollcall.DegenerateLayoutError{
			Reason: fmt.Sprintf("usable width %.2f exceeds the %.2f between the margins", w, physical),
		}
	default:
		return w, nil
	}
}

// normalizeConfig fills unset fields from DefaultConfig and corrects values
// the layout cannot honor, reporting each correction.
func normalizeConfig(cfg rollcall.Config) (rollcall.Config, []error) {
	def := rollcall.DefaultConfig()
	var warnings []error
	degenerate := func(format string, args ...any) {
		warnings = append(warnings, &rollcall.DegenerateLayoutError{Reason: fmt.Sprintf(format, args...)})
	}

	if cfg.PageSize == "" {
		cfg.PageSize = def.PageSize
	}
	if cfg.Unit == "" {
		cfg.Unit = def.Unit
	}
	if cfg.Orientation == "" {
		cfg.Orientation = def.Orientation
	}
	if cfg.RowHeight <= 0 {
		degenerate("row height %.2f is not positive, using %.2f", cfg.RowHeight, def.RowHeight)
		cfg.RowHeight = def.RowHeight
	}
	if cfg.SignatureWidth < 0 {
		degenerate("negative signature width %.2f, using 0", cfg.SignatureWidth)
		cfg.SignatureWidth = 0
	}
	if cfg.CellPadding < 0 {
		cfg.CellPadding = 0
	}
	if cfg.FooterHeight < 0 {
		cfg.FooterHeight = 0
	}
	if cfg.MinColumnWidth <= 0 {
		cfg.MinColumnWidth = def.MinColumnWidth
	}

	cfg.TitleFont = withDefaults(cfg.TitleFont, def.TitleFont)
	cfg.HeaderFont = withDefaults(cfg.HeaderFont, def.HeaderFont)
	if cfg.HeaderFont.Style == "" {
		cfg.HeaderFont.Style = "B"
	}
	cfg.BodyFont = withDefaults(cfg.BodyFont, def.BodyFont)

	cfg.Labels = withDefaultLabels(cfg.Labels, def.Labels)

	align := make(map[string]string, len(cfg.ColumnAlign)+1)
	for k, v := range cfg.ColumnAlign {
		align[k] = v
	}
	cfg.ColumnAlign = align
	return cfg, warnings
}

func withDefaultLabels(l, def rollcall.Labels) rollcall.Labels {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&l.Hub, def.Hub)
	fill(&l.Date, def.Date)
	fill(&l.Source, def.Source)
	fill(&l.Signature, def.Signature)
	fill(&l.RowNumber, def.RowNumber)
	fill(&l.Coordinator, def.Coordinator)
	fill(&l.Document, def.Document)
	fill(&l.Page, def.Page)
	return l
}
