package cmd

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/pageops"
	"github.com/lvillar/rollcall/source"
)

// jobFlags are the flags shared by commands that read a source.
type jobFlags struct {
	jobFile string

	source    string
	kind      string
	sheet     string
	delimiter string
	query     string

	hub  string
	date string

	title        string
	sourceLabel  string
	documentID   string
	verification string
	language     string
	orientation  string
	pageSize     string
	signature    float64
	columns      []string
	rowNumbers   bool
	letterhead   string
	logo         string
	watermark    string
}

func (f *jobFlags) register(fs *pflag.FlagSet, render bool) {
	fs.StringVarP(&f.jobFile, "job", "j", "", "Job file (JSON or YAML)")
	fs.StringVarP(&f.source, "source", "s", "", "Source file or URL")
	fs.StringVar(&f.kind, "kind", "", "Source kind: csv|xlsx|http|json (default from path)")
	fs.StringVar(&f.sheet, "sheet", "", "Worksheet of an XLSX source")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV field delimiter")
	fs.StringVar(&f.query, "query", "", "jq expression selecting records of a JSON source")
	fs.StringVar(&f.hub, "hub", "", "Training hub")
	fs.StringVar(&f.date, "date", "", "Session date (DD/MM/YYYY)")
	fs.StringSliceVar(&f.columns, "columns", nil, "Columns to print, in order")
	if !render {
		return
	}
	fs.StringVar(&f.title, "title", "", "Sheet title")
	fs.StringVar(&f.sourceLabel, "source-label", "", "Source line printed under the title")
	fs.StringVar(&f.documentID, "document-id", "", "Document identifier (default random UUID)")
	fs.StringVar(&f.verification, "verify", "", "Verification code: none|qr|code128|pdf417")
	fs.StringVar(&f.language, "lang", "", "Label language: pt|en")
	fs.StringVar(&f.orientation, "orientation", "", "Page orientation: portrait|landscape")
	fs.StringVar(&f.pageSize, "page-size", "", "Page size: A4, Letter, ...")
	fs.Float64Var(&f.signature, "signature-width", 0, "Signature column width")
	fs.BoolVar(&f.rowNumbers, "row-numbers", false, "Print a row number column")
	fs.StringVar(&f.letterhead, "letterhead", "", "Letterhead PDF whose first page backs every page")
	fs.StringVar(&f.logo, "logo", "", "Logo image printed beside the title")
	fs.StringVar(&f.watermark, "watermark", "", "Watermark text stamped over every page")
}

// build layers the config defaults, the job file and the flags, in that
// order of increasing precedence.
func (f *jobFlags) build(ctx context.Context, fs *pflag.FlagSet) (*job.Job, error) {
	j := ConfigFromContext(ctx).Defaults
	if f.jobFile != "" {
		fromFile, err := job.Load(f.jobFile)
		if err != nil {
			return nil, err
		}
		j = job.Overlay(j, *fromFile)
	}

	over := job.Job{
		Source: source.Spec{
			Kind:      f.kind,
			Path:      f.source,
			Sheet:     f.sheet,
			Delimiter: f.delimiter,
			Query:     f.query,
		},
		Hub:            f.hub,
		Date:           f.date,
		Title:          f.title,
		SourceLabel:    f.sourceLabel,
		DocumentID:     f.documentID,
		Verification:   f.verification,
		Language:       f.language,
		LetterheadPath: f.letterhead,
		LogoPath:       f.logo,
		Columns:        job.Columns{Display: f.columns},
	}
	layout := job.Layout{
		Orientation:    f.orientation,
		PageSize:       f.pageSize,
		SignatureWidth: f.signature,
	}
	if fs.Changed("row-numbers") {
		layout.RowNumbers = &f.rowNumbers
	}
	over.Layout = &layout
	if strings.TrimSpace(f.watermark) != "" {
		over.Watermark = &pageops.TextWatermark{Text: f.watermark}
	}
	j = job.Overlay(j, over)
	if f.source == "" {
		// Source flags without --source refine the source of the job file.
		for dst, v := range map[*string]string{
			&j.Source.Kind:      f.kind,
			&j.Source.Sheet:     f.sheet,
			&j.Source.Delimiter: f.delimiter,
			&j.Source.Query:     f.query,
		} {
			if v != "" {
				*dst = v
			}
		}
	}

	if j.Source.Path == "" {
		return nil, &userError{msg: "no source: pass --source or a job file"}
	}
	return &j, nil
}
