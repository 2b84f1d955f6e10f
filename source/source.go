// Package source loads attendance records into a rollcall.Table and narrows
// them down to one training hub and date.
//
// Loaders read CSV files, XLSX workbooks, CSV exports of published
// spreadsheets and JSON record arrays. Every loader yields a rectangular
// table: header names are trimmed and made unique and ragged rows are padded
// or truncated to the header. Normalize then resolves column aliases and
// canonicalizes date columns before Filter selects the rows of one session.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lvillar/rollcall"
)

// Loader acquires a table from some source.
type Loader interface {
	Load(ctx context.Context) (rollcall.Table, error)
}

// Source kinds accepted by Spec.
const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
	KindHTTP = "http"
	KindJSON = "json"
)

// Spec describes a source declaratively, as found in job files.
type Spec struct {
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path      string `json:"path" yaml:"path"` // file path or URL
	Sheet     string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Query     string `json:"query,omitempty" yaml:"query,omitempty"` // jq expression for JSON sources
	Timeout   string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Open returns the Loader for spec. An empty Kind is inferred from the path:
// URLs ending in .json are JSON, other URLs are published CSV, and files are
// picked by extension.
func Open(spec Spec) (Loader, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return nil, fmt.Errorf("%w: source path is empty", rollcall.ErrInvalidParam)
	}
	var timeout time.Duration
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: source timeout %q: %v", rollcall.ErrInvalidParam, spec.Timeout, err)
		}
		timeout = d
	}
	delim, err := parseDelimiter(spec.Delimiter)
	if err != nil {
		return nil, err
	}

	kind := strings.ToLower(spec.Kind)
	if kind == "" {
		kind = inferKind(spec.Path)
	}
	switch kind {
	case KindCSV:
		return &CSVFile{Path: spec.Path, Delimiter: delim}, nil
	case KindXLSX:
		return &XLSXFile{Path: spec.Path, Sheet: spec.Sheet}, nil
	case KindHTTP:
		return &PublishedCSV{URL: spec.Path, Delimiter: delim, Timeout: timeout}, nil
	case KindJSON:
		return &JSONFile{Path: spec.Path, Query: spec.Query, Timeout: timeout}, nil
	}
	return nil, fmt.Errorf("%w: %q", rollcall.ErrUnsupportedSource, spec.Path)
}

func inferKind(path string) string {
	lower := strings.ToLower(path)
	if isURL(lower) {
		if strings.HasSuffix(strings.SplitN(lower, "?", 2)[0], ".json") {
			return KindJSON
		}
		return KindHTTP
	}
	switch filepath.Ext(lower) {
	case ".csv", ".tsv", ".txt":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".json":
		return KindJSON
	}
	return ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be one character", rollcall.ErrInvalidParam, s)
	}
	return r[0], nil
}

// tableFromRecords builds a rectangular table from a header record and data
// records. Blank header names become "Column N", repeated names get a
// numeric suffix, rows are padded or truncated to the header and rows with
// no content are dropped.
func tableFromRecords(header []string, records [][]string) rollcall.Table {
	cols := uniqueNames(header)
	t := rollcall.Table{Columns: cols, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(cols))
		empty := true
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
			if row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		if seen[name] {
			base := name
			for n := 2; seen[name]; n++ {
				name = fmt.Sprintf("%s (%d)", base, n)
			}
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
