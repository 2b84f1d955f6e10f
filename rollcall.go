// Package rollcall holds the data model shared by the attendance sheet
// generator: the rectangular Table produced by a source, the ReportContext
// printed in the title block, and the layout Config consumed by the grid
// renderer in the table package.
//
// A typical pipeline loads a table, filters it by training hub and date, and
// renders it:
//
//	tbl, err := src.Load(ctx)
//	filtered, err := source.Filter(tbl, source.Selection{...})
//	pdf, err := table.Render(filtered, rollcall.ReportContext{Title: "Attendance"})
package rollcall

// Table is a rectangular table: unique column names in display order and rows
// of string cells positionally aligned to the columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates a table with the given columns and no rows.
func NewTable(columns ...string) Table {
	return Table{Columns: columns}
}

// AddRow appends a row of cells and returns the table for chaining.
// The row is not checked here; Validate reports cardinality mismatches.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
// Names are matched exactly.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Validate checks that every row has exactly one cell per column and that
// column names are unique.
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c] {
			return &DuplicateColumnError{Name: c}
		}
		seen[c] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return &MalformedTableError{Row: i, Got: len(row), Want: len(t.Columns)}
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Column returns every value of the named column in row order.
func (t Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, &ColumnError{Name: name}
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

// ReportContext is the text printed in the title block and footer of a
// sheet. It carries no behavior.
type ReportContext struct {
	Title      string
	Hub        string
	Date       string
	Source     string // optional "source" line, e.g. the worksheet title
	DocumentID string // printed in the footer and encoded in the verification code
}
