package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/pageops"
	"github.com/lvillar/rollcall/source"
	"github.com/lvillar/rollcall/table"
)

// Parse reads a JSON job.
func Parse(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("job: parsing: %w", err)
	}
	return &j, nil
}

// ParseYAML reads a YAML job.
func ParseYAML(data []byte) (*Job, error) {
	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("job: parsing: %w", err)
	}
	return &j, nil
}

// Load reads a job file. Files ending in .yaml or .yml are YAML, others JSON.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Parse(data)
}

// Result describes a completed Run.
type Result struct {
	Report     *table.Report
	DocumentID string
	FileName   string
	Pages      int
}

// Run renders the sheet described by j and writes the PDF to w. Fields left
// empty in j take their value from Default. Hub and Date must be set.
func Run(ctx context.Context, w io.Writer, j *Job) (*Result, error) {
	r := j.resolved()
	if r.Hub == "" || r.Date == "" {
		return nil, fmt.Errorf("job: %w: hub and date are required", rollcall.ErrNoSelection)
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	tbl, err := r.Table(ctx)
	if err != nil {
		return nil, err
	}
	sheet, err := r.Select(tbl)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}

	rc := r.Context()
	report, err := table.NewRenderer(cfg).Render(sheet, rc)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	out, pages, err := r.postProcess(report.PDF, report.Pages)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(out); err != nil {
		return nil, fmt.Errorf("job: writing output: %w", err)
	}
	return &Result{Report: report, DocumentID: rc.DocumentID, FileName: FileName(&r), Pages: pages}, nil
}

// RunJSON parses a JSON job and runs it.
func RunJSON(ctx context.Context, w io.Writer, data []byte) (*Result, error) {
	j, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Run(ctx, w, j)
}

func (j *Job) postProcess(pdf []byte, pages int) ([]byte, int, error) {
	if j.Watermark == nil || j.Watermark.Text == "" {
		return pdf, pages, nil
	}
	var buf bytes.Buffer
	n, err := pageops.AddTextWatermark(&buf, pdf, *j.Watermark)
	if err != nil {
		return nil, 0, fmt.Errorf("job: %w", err)
	}
	return buf.Bytes(), n, nil
}

// Table loads the source of j and normalizes it: column aliases resolved,
// required columns checked and date columns rewritten as DD/MM/YYYY.
func (j *Job) Table(ctx context.Context) (rollcall.Table, error) {
	r := j.resolved()
	loader, err := source.Open(r.Source)
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("job: %w", err)
	}
	raw, err := loader.Load(ctx)
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("job: %w", err)
	}
	slog.Debug("source loaded", "path", r.Source.Path, "rows", raw.Len(), "columns", len(raw.Columns))

	required := r.required()
	aliases := make(map[string][]string, len(r.Columns.Aliases)+len(required))
	for name, alts := range r.Columns.Aliases {
		aliases[name] = alts
	}
	for _, name := range required {
		if _, ok := aliases[name]; !ok {
			aliases[name] = nil
		}
	}
	tbl, err := source.Normalize(raw, source.NormalizeOptions{
		Aliases:     aliases,
		Required:    required,
		DateColumns: r.dateColumns(),
	})
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("job: %w", err)
	}
	return tbl, nil
}

// Select narrows a normalized table to the rows of the job's hub and date and
// keeps the display columns.
func (j *Job) Select(t rollcall.Table) (rollcall.Table, error) {
	r := j.resolved()
	filtered, err := source.Filter(t, source.Selection{
		HubColumn:  r.HubColumn,
		Hub:        r.Hub,
		DateColumn: r.DateColumn,
		Date:       r.canonicalDate(),
	})
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("job: %w", err)
	}
	out, err := source.Project(filtered, r.Columns.Display)
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("job: %w", err)
	}
	return out, nil
}

// Preview loads the source and returns the rows that Run would print.
func (j *Job) Preview(ctx context.Context) (rollcall.Table, error) {
	tbl, err := j.Table(ctx)
	if err != nil {
		return rollcall.Table{}, err
	}
	return j.Select(tbl)
}

// Context returns the title block text of the sheet. A missing document ID is
// generated.
func (j *Job) Context() rollcall.ReportContext {
	r := j.resolved()
	id := r.DocumentID
	if id == "" {
		id = uuid.NewString()
	}
	return rollcall.ReportContext{
		Title:      r.Title,
		Hub:        r.Hub,
		Date:       r.canonicalDate(),
		Source:     r.SourceLabel,
		DocumentID: id,
	}
}

// Facets lists the hubs and dates found in a table.
type Facets struct {
	Hubs     []string         `json:"hubs"`
	Dates    []string         `json:"dates"` // dates of Hub when set, otherwise all dates
	Sessions []source.Session `json:"sessions"`
}

// Facets loads the source and lists its hubs, dates and sessions.
func (j *Job) Facets(ctx context.Context) (*Facets, error) {
	tbl, err := j.Table(ctx)
	if err != nil {
		return nil, err
	}
	return j.FacetsOf(tbl)
}

// FacetsOf lists the hubs, dates and sessions of a normalized table.
func (j *Job) FacetsOf(t rollcall.Table) (*Facets, error) {
	r := j.resolved()
	hubs, err := source.Values(t, r.HubColumn)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	sessions, err := source.Sessions(t, r.HubColumn, r.DateColumn)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}

	scope := t
	if r.Hub != "" {
		hub := t.ColumnIndex(r.HubColumn)
		scope = rollcall.Table{Columns: t.Columns}
		for _, row := range t.Rows {
			if row[hub] == r.Hub {
				scope.Rows = append(scope.Rows, row)
			}
		}
	}
	dates, err := source.Values(scope, r.DateColumn)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	return &Facets{Hubs: hubs, Dates: dates, Sessions: sessions}, nil
}

// FileName returns the download name of the sheet,
// lista_presenca_<hub>_<yyyymmdd>.pdf.
func FileName(j *Job) string {
	r := j.resolved()
	date := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' {
			return c
		}
		return -1
	}, r.Date)
	if d, ok := source.ParseDate(r.Date); ok {
		date = d.Format("20060102")
	}
	hub := strings.Map(func(c rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, c) {
			return '_'
		}
		return c
	}, strings.TrimSpace(r.Hub))
	return fmt.Sprintf("lista_presenca_%s_%s.pdf", hub, date)
}

func (j *Job) resolved() Job {
	if j == nil {
		return Default()
	}
	return Overlay(Default(), *j)
}

func (j *Job) canonicalDate() string {
	d, _ := source.CanonicalDate(j.Date)
	return d
}

func (j *Job) required() []string {
	names := append([]string(nil), j.Columns.Required...)
	names = append(names, j.HubColumn, j.DateColumn)
	names = append(names, j.Columns.Display...)
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (j *Job) dateColumns() []string {
	if len(j.Columns.Dates) > 0 {
		return j.Columns.Dates
	}
	return []string{j.DateColumn}
}
