package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/rollcall"
)

// Config builds the layout configuration of j on top of
// rollcall.DefaultConfig. Letterhead and logo files are read here.
func (j *Job) Config() (rollcall.Config, error) {
	r := j.resolved()
	cfg := rollcall.DefaultConfig()

	switch strings.ToLower(r.Language) {
	case "", "pt", "pt-br":
		cfg.Labels = rollcall.PortugueseLabels()
	case "en":
		cfg.Labels = rollcall.DefaultLabels()
	default:
		return cfg, fmt.Errorf("job: %w: language %q", rollcall.ErrInvalidParam, r.Language)
	}
	if r.Labels != nil {
		cfg.Labels = overlayLabels(cfg.Labels, *r.Labels)
	}
	if r.Layout != nil {
		applyLayout(&cfg, *r.Layout)
	}

	switch kind := rollcall.VerificationKind(strings.ToLower(r.Verification)); kind {
	case "", rollcall.VerificationNone:
		cfg.Verification = rollcall.VerificationNone
	case rollcall.VerificationQR, rollcall.VerificationCode128, rollcall.VerificationPDF417:
		cfg.Verification = kind
	default:
		return cfg, fmt.Errorf("job: %w: verification %q", rollcall.ErrInvalidParam, r.Verification)
	}

	if r.LetterheadPath != "" {
		data, err := os.ReadFile(r.LetterheadPath)
		if err != nil {
			return cfg, fmt.Errorf("job: letterhead: %w", err)
		}
		cfg.Letterhead = data
	}
	if r.LogoPath != "" {
		data, err := os.ReadFile(r.LogoPath)
		if err != nil {
			return cfg, fmt.Errorf("job: logo: %w", err)
		}
		cfg.Logo = &rollcall.Image{Data: data, Type: strings.TrimPrefix(strings.ToLower(filepath.Ext(r.LogoPath)), ".")}
	}
	cfg.Author = r.Author
	return cfg, nil
}

func applyLayout(cfg *rollcall.Config, l Layout) {
	setString(&cfg.PageSize, l.PageSize)
	setString(&cfg.Orientation, l.Orientation)
	setString(&cfg.Unit, l.Unit)
	if l.Margin != nil {
		cfg.Margins = rollcall.Margins{Top: l.Margin.Top, Right: l.Margin.Right, Bottom: l.Margin.Bottom, Left: l.Margin.Left}
	}

	setFloat(&cfg.UsableWidth, l.UsableWidth)
	setFloat(&cfg.SignatureWidth, l.SignatureWidth)
	setFloat(&cfg.PageBreakThreshold, l.PageBreakThreshold)
	setFloat(&cfg.RowHeight, l.RowHeight)
	setFloat(&cfg.CellPadding, l.CellPadding)
	setFloat(&cfg.MinColumnWidth, l.MinColumnWidth)
	setFloat(&cfg.FooterHeight, l.FooterHeight)

	setFont(&cfg.TitleFont, l.TitleFont)
	setFont(&cfg.HeaderFont, l.HeaderFont)
	setFont(&cfg.BodyFont, l.BodyFont)

	setBool(&cfg.FillSlack, l.FillSlack)
	setBool(&cfg.RowNumbers, l.RowNumbers)
	setBool(&cfg.CoordinatorLine, l.CoordinatorLine)
	setBool(&cfg.Compress, l.Compress)
	for col, align := range l.Align {
		rollcall.WithColumnAlign(col, align)(cfg)
	}
}

// Overlay returns base with every field set in over replacing it. Layout and
// labels are merged field by field.
func Overlay(base, over Job) Job {
	out := base

	if over.Source.Path != "" {
		out.Source = over.Source
	}
	if len(over.Columns.Display) > 0 {
		out.Columns.Display = over.Columns.Display
	}
	if len(over.Columns.Required) > 0 {
		out.Columns.Required = over.Columns.Required
	}
	if len(over.Columns.Aliases) > 0 {
		out.Columns.Aliases = over.Columns.Aliases
	}
	if len(over.Columns.Dates) > 0 {
		out.Columns.Dates = over.Columns.Dates
	}

	setString(&out.HubColumn, over.HubColumn)
	setString(&out.DateColumn, over.DateColumn)
	setString(&out.Hub, over.Hub)
	setString(&out.Date, over.Date)
	setString(&out.Title, over.Title)
	setString(&out.SourceLabel, over.SourceLabel)
	setString(&out.DocumentID, over.DocumentID)
	setString(&out.Author, over.Author)
	setString(&out.Language, over.Language)
	setString(&out.Verification, over.Verification)
	setString(&out.LetterheadPath, over.LetterheadPath)
	setString(&out.LogoPath, over.LogoPath)

	switch {
	case over.Layout == nil:
	case out.Layout == nil:
		l := *over.Layout
		out.Layout = &l
	default:
		l := overlayLayout(*out.Layout, *over.Layout)
		out.Layout = &l
	}
	switch {
	case over.Labels == nil:
	case out.Labels == nil:
		l := *over.Labels
		out.Labels = &l
	default:
		l := overlayJobLabels(*out.Labels, *over.Labels)
		out.Labels = &l
	}
	if over.Watermark != nil {
		wm := *over.Watermark
		out.Watermark = &wm
	}
	return out
}

func overlayLayout(base, over Layout) Layout {
	setString(&base.PageSize, over.PageSize)
	setString(&base.Orientation, over.Orientation)
	setString(&base.Unit, over.Unit)
	if over.Margin != nil {
		base.Margin = over.Margin
	}
	setFloat(&base.UsableWidth, over.UsableWidth)
	setFloat(&base.SignatureWidth, over.SignatureWidth)
	setFloat(&base.PageBreakThreshold, over.PageBreakThreshold)
	setFloat(&base.RowHeight, over.RowHeight)
	setFloat(&base.CellPadding, over.CellPadding)
	setFloat(&base.MinColumnWidth, over.MinColumnWidth)
	setFloat(&base.FooterHeight, over.FooterHeight)
	if over.TitleFont != nil {
		base.TitleFont = over.TitleFont
	}
	if over.HeaderFont != nil {
		base.HeaderFont = over.HeaderFont
	}
	if over.BodyFont != nil {
		base.BodyFont = over.BodyFont
	}
	if over.FillSlack != nil {
		base.FillSlack = over.FillSlack
	}
	if over.RowNumbers != nil {
		base.RowNumbers = over.RowNumbers
	}
	if over.CoordinatorLine != nil {
		base.CoordinatorLine = over.CoordinatorLine
	}
	if over.Compress != nil {
		base.Compress = over.Compress
	}
	if len(over.Align) > 0 {
		align := make(map[string]string, len(base.Align)+len(over.Align))
		for k, v := range base.Align {
			align[k] = v
		}
		for k, v := range over.Align {
			align[k] = v
		}
		base.Align = align
	}
	return base
}

func overlayJobLabels(base, over Labels) Labels {
	setString(&base.Hub, over.Hub)
	setString(&base.Date, over.Date)
	setString(&base.Source, over.Source)
	setString(&base.Signature, over.Signature)
	setString(&base.RowNumber, over.RowNumber)
	setString(&base.Coordinator, over.Coordinator)
	setString(&base.Document, over.Document)
	setString(&base.Page, over.Page)
	return base
}

func overlayLabels(base rollcall.Labels, over Labels) rollcall.Labels {
	setString(&base.Hub, over.Hub)
	setString(&base.Date, over.Date)
	setString(&base.Source, over.Source)
	setString(&base.Signature, over.Signature)
	setString(&base.RowNumber, over.RowNumber)
	setString(&base.Coordinator, over.Coordinator)
	setString(&base.Document, over.Document)
	setString(&base.Page, over.Page)
	return base
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setFont(dst *rollcall.FontSpec, f *Font) {
	if f == nil {
		return
	}
	setString(&dst.Family, f.Family)
	setString(&dst.Style, f.Style)
	setFloat(&dst.Size, f.Size)
}
