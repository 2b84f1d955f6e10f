package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/table"
)

// SessionResult describes one sheet of a batch.
type SessionResult struct {
	Hub        string `json:"hub"`
	Date       string `json:"date"`
	Rows       int    `json:"rows"`
	Pages      int    `json:"pages"`
	DocumentID string `json:"document_id"`
}

// BatchResult describes a completed Batch.
type BatchResult struct {
	Sessions []SessionResult `json:"sessions"`
	Pages    int             `json:"pages"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Batch renders one sheet per hub and date combination of the source into a
// single PDF. Every sheet starts on a new page with its own title block and
// page numbering. A Hub or Date set in j restricts the
// batch to that hub or date. Each sheet gets its own document ID; a document
// ID set in j is used as a prefix.
func Batch(ctx context.Context, w io.Writer, j *Job) (*BatchResult, error) {
	r := j.resolved()
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	tbl, err := r.Table(ctx)
	if err != nil {
		return nil, err
	}
	facets, err := r.FacetsOf(tbl)
	if err != nil {
		return nil, err
	}

	date := ""
	if r.Date != "" {
		date = r.canonicalDate()
	}
	var (
		sections []table.Section
		res      = &BatchResult{}
	)
	for i, s := range facets.Sessions {
		if (r.Hub != "" && s.Hub != r.Hub) || (date != "" && s.Date != date) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("job: %w", err)
		}

		one := r
		one.Hub, one.Date = s.Hub, s.Date
		if r.DocumentID != "" {
			one.DocumentID = fmt.Sprintf("%s-%03d", r.DocumentID, i+1)
		}
		sheet, err := one.Select(tbl)
		if err != nil {
			return nil, err
		}
		rc := one.Context()
		sections = append(sections, table.Section{Table: sheet, Context: rc})
		res.Sessions = append(res.Sessions, SessionResult{
			Hub:        s.Hub,
			Date:       s.Date,
			DocumentID: rc.DocumentID,
		})
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("job: %w: no sessions match hub %q date %q", rollcall.ErrNoSelection, r.Hub, r.Date)
	}

	book, err := table.NewRenderer(cfg).RenderBook(sections...)
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	for _, warn := range book.Warnings {
		res.Warnings = append(res.Warnings, warn.Error())
	}
	for i, report := range book.Sections {
		s := &res.Sessions[i]
		s.Rows, s.Pages = report.Rows, report.Pages
		for _, warn := range report.Warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s %s: %v", s.Hub, s.Date, warn))
		}
	}

	out, pages, err := r.postProcess(book.PDF, book.Pages)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(out); err != nil {
		return nil, fmt.Errorf("job: writing output: %w", err)
	}
	res.Pages = pages
	slog.Info("batch rendered", "sessions", len(res.Sessions), "pages", pages)
	return res, nil
}
