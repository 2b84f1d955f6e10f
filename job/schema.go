// Package job describes an attendance sheet declaratively and runs it: load
// the source, normalize and filter it to one training hub and date, render
// the sheet and optionally watermark it.
//
// A job is a small JSON or YAML document that is easy to write by hand and
// easy for tools to generate:
//
//	{
//	  "source": {"path": "inscritos.xlsx"},
//	  "hub": "Norte",
//	  "date": "05/03/2024",
//	  "layout": {"orientation": "landscape", "signature_width": 70},
//	  "verification": "qr"
//	}
//
// Fields left empty take their value from Default, which reproduces the
// original paper sheets of the training program.
package job

import (
	"github.com/lvillar/rollcall/pageops"
	"github.com/lvillar/rollcall/source"
)

// Job is the top-level description of one attendance sheet, or of a batch of
// sheets when Hub or Date are left empty.
type Job struct {
	Source     source.Spec `json:"source" yaml:"source"`
	Columns    Columns     `json:"columns,omitempty" yaml:"columns,omitempty"`
	HubColumn  string      `json:"hub_column,omitempty" yaml:"hub_column,omitempty"`
	DateColumn string      `json:"date_column,omitempty" yaml:"date_column,omitempty"`
	Hub        string      `json:"hub,omitempty" yaml:"hub,omitempty"`
	Date       string      `json:"date,omitempty" yaml:"date,omitempty"` // any accepted date form

	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	SourceLabel string `json:"source_label,omitempty" yaml:"source_label,omitempty"` // printed "source" line
	DocumentID  string `json:"document_id,omitempty" yaml:"document_id,omitempty"`   // generated when empty
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`

	Layout         *Layout                `json:"layout,omitempty" yaml:"layout,omitempty"`
	Language       string                 `json:"language,omitempty" yaml:"language,omitempty"` // "pt" or "en"
	Labels         *Labels                `json:"labels,omitempty" yaml:"labels,omitempty"`
	Verification   string                 `json:"verification,omitempty" yaml:"verification,omitempty"` // none, qr, code128, pdf417
	LetterheadPath string                 `json:"letterhead,omitempty" yaml:"letterhead,omitempty"`
	LogoPath       string                 `json:"logo,omitempty" yaml:"logo,omitempty"`
	Watermark      *pageops.TextWatermark `json:"watermark,omitempty" yaml:"watermark,omitempty"`
}

// Columns names the columns a job reads.
type Columns struct {
	Display  []string            `json:"display,omitempty" yaml:"display,omitempty"`   // printed, in order
	Required []string            `json:"required,omitempty" yaml:"required,omitempty"` // must exist after alias resolution
	Aliases  map[string][]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`   // canonical name to alternatives
	Dates    []string            `json:"dates,omitempty" yaml:"dates,omitempty"`       // canonicalized as DD/MM/YYYY
}

// Layout overrides parts of the page layout. Lengths use Unit.
type Layout struct {
	PageSize    string  `json:"page_size,omitempty" yaml:"page_size,omitempty"` // A3, A4, A5, Letter, Legal
	Orientation string  `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Unit        string  `json:"unit,omitempty" yaml:"unit,omitempty"` // mm, cm, inch, pt
	Margin      *Margin `json:"margin,omitempty" yaml:"margin,omitempty"`

	UsableWidth        float64 `json:"usable_width,omitempty" yaml:"usable_width,omitempty"`
	SignatureWidth     float64 `json:"signature_width,omitempty" yaml:"signature_width,omitempty"`
	PageBreakThreshold float64 `json:"page_break_threshold,omitempty" yaml:"page_break_threshold,omitempty"`
	RowHeight          float64 `json:"row_height,omitempty" yaml:"row_height,omitempty"`
	CellPadding        float64 `json:"cell_padding,omitempty" yaml:"cell_padding,omitempty"`
	MinColumnWidth     float64 `json:"min_column_width,omitempty" yaml:"min_column_width,omitempty"`
	FooterHeight       float64 `json:"footer_height,omitempty" yaml:"footer_height,omitempty"`

	TitleFont  *Font `json:"title_font,omitempty" yaml:"title_font,omitempty"`
	HeaderFont *Font `json:"header_font,omitempty" yaml:"header_font,omitempty"`
	BodyFont   *Font `json:"body_font,omitempty" yaml:"body_font,omitempty"`

	FillSlack       *bool             `json:"fill_slack,omitempty" yaml:"fill_slack,omitempty"`
	RowNumbers      *bool             `json:"row_numbers,omitempty" yaml:"row_numbers,omitempty"`
	CoordinatorLine *bool             `json:"coordinator_line,omitempty" yaml:"coordinator_line,omitempty"`
	Compress        *bool             `json:"compress,omitempty" yaml:"compress,omitempty"`
	Align           map[string]string `json:"align,omitempty" yaml:"align,omitempty"` // column to L, C or R
}

// Margin defines page margins.
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Font specifies a core font face. Empty fields keep the default.
type Font struct {
	Family string  `json:"family,omitempty" yaml:"family,omitempty"` // Helvetica, Courier, Times
	Style  string  `json:"style,omitempty" yaml:"style,omitempty"`   // "", "B", "I", "BI"
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// Labels overrides individual printed strings of the selected language.
type Labels struct {
	Hub         string `json:"hub,omitempty" yaml:"hub,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Signature   string `json:"signature,omitempty" yaml:"signature,omitempty"`
	RowNumber   string `json:"row_number,omitempty" yaml:"row_number,omitempty"`
	Coordinator string `json:"coordinator,omitempty" yaml:"coordinator,omitempty"`
	Document    string `json:"document,omitempty" yaml:"document,omitempty"`
	Page        string `json:"page,omitempty" yaml:"page,omitempty"`
}

// Column names of the original enrollment spreadsheet.
const (
	ColumnName       = "Nome Completo"
	ColumnEnrollment = "Matrícula"
	ColumnUnit       = "OPM"
	ColumnSubunit    = "Subunidade"
	ColumnCommand    = "Comando"
	ColumnHub        = "Polo de Instrução"
	ColumnDate       = "Data"
)

// Default returns the job defaults: the enrollment spreadsheet layout and the
// Portuguese sheet titled "LISTA DE PRESENÇA".
func Default() Job {
	return Job{
		Columns: Columns{
			Display:  []string{ColumnName, ColumnEnrollment, ColumnUnit, ColumnSubunit, ColumnCommand},
			Required: []string{ColumnCommand, ColumnUnit, ColumnSubunit, ColumnHub, ColumnDate, ColumnEnrollment, ColumnName},
			Aliases: map[string][]string{
				ColumnEnrollment: {"Matricula", "Matrícula Funcional"},
				ColumnHub:        {"Polo de Instrucao", "Polo"},
				ColumnName:       {"Nome"},
			},
			Dates: []string{ColumnDate},
		},
		HubColumn:    ColumnHub,
		DateColumn:   ColumnDate,
		Title:        "LISTA DE PRESENÇA",
		Language:     "pt",
		Verification: "none",
	}
}
