package rollcall

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrEmptyTable is reported as a warning, never returned: a table with no
	// rows still renders a header-only page.
	ErrEmptyTable        = errors.New("rollcall: table has no rows")
	ErrUnknownColumn     = errors.New("rollcall: unknown column")
	ErrUnsupportedSource = errors.New("rollcall: unsupported source")
	ErrInvalidParam      = errors.New("rollcall: invalid parameter")
	ErrDuplicateColumn   = errors.New("rollcall: duplicate column name")
	ErrNoSelection       = errors.New("rollcall: facet selection is incomplete")
)

// MalformedTableError reports a row whose cell count differs from the number
// of columns. It is a contract violation by the caller and always fails the
// whole render.
type MalformedTableError struct {
	Row  int // zero-based row index
	Got  int // cells in the row
	Want int // columns in the table
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("rollcall: malformed table: row %d has %d cells, want %d", e.Row, e.Got, e.Want)
}

// DegenerateLayoutError describes a layout input that was corrected with a
// fallback (zero data columns, non-positive page width, signature column
// wider than the page). It is recorded as a warning and never returned.
type DegenerateLayoutError struct {
	Reason string
}

func (e *DegenerateLayoutError) Error() string {
	return "rollcall: degenerate layout: " + e.Reason
}

// MissingColumnsError reports columns a source was required to provide.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "rollcall: missing columns: " + strings.Join(e.Columns, ", ")
}

// RenderError represents an error that occurred during a specific rendering
// operation. It wraps an underlying error and includes the operation name for context.
type RenderError struct {
	Op  string // operation name, e.g. "Output", "Letterhead"
	Err error  // underlying error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rollcall.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rollcall.%s: unknown error", e.Op)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError wrapping the given error with operation context.
func NewRenderError(op string, err error) *RenderError {
	return &RenderError{Op: op, Err: err}
}

// SourceError reports a failure while acquiring a table from a source.
type SourceError struct {
	Kind     string // "csv", "xlsx", "http", "json"
	Location string // path or URL
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("rollcall: %s source %q: %v", e.Kind, e.Location, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ColumnError reports a reference to a column the table does not have.
type ColumnError struct {
	Name string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("rollcall: unknown column %q", e.Name)
}

func (e *ColumnError) Unwrap() error {
	return ErrUnknownColumn
}

// DuplicateColumnError reports a column name that appears more than once.
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("rollcall: duplicate column name %q", e.Name)
}

func (e *DuplicateColumnError) Unwrap() error {
	return ErrDuplicateColumn
}
