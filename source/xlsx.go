package source

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/rollcall"
)

// XLSXFile loads one worksheet of an Excel workbook. The first non-empty row
// is the header.
type XLSXFile struct {
	Path  string
	Sheet string // empty selects the first sheet
}

// Load opens the workbook and reads the sheet.
func (x *XLSXFile) Load(ctx context.Context) (rollcall.Table, error) {
	if err := ctx.Err(); err != nil {
		return rollcall.Table{}, err
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindXLSX, Location: x.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	t, err := readWorkbook(f, x.Sheet)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindXLSX, Location: x.Path, Err: err}
	}
	return t, nil
}

// XLSXReader loads a workbook from a stream.
type XLSXReader struct {
	R     io.Reader
	Sheet string
	Name  string
}

// Load reads the workbook from r.
func (x *XLSXReader) Load(ctx context.Context) (rollcall.Table, error) {
	if err := ctx.Err(); err != nil {
		return rollcall.Table{}, err
	}
	f, err := excelize.OpenReader(x.R)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindXLSX, Location: x.Name, Err: err}
	}
	defer func() { _ = f.Close() }()

	t, err := readWorkbook(f, x.Sheet)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindXLSX, Location: x.Name, Err: err}
	}
	return t, nil
}

// SheetNames lists the worksheets of the workbook at path.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &rollcall.SourceError{Kind: KindXLSX, Location: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

func readWorkbook(f *excelize.File, sheet string) (rollcall.Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return rollcall.Table{}, fmt.Errorf("no worksheet found")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return rollcall.Table{}, fmt.Errorf("worksheet %q not found", sheet)
	}

	// Raw values keep date cells as serial numbers instead of the text of
	// whatever number format the workbook applies to them.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return rollcall.Table{}, err
	}
	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return rollcall.Table{}, errNoHeader
	}
	return tableFromRecords(rows[0], rows[1:]), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
