package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/rollcall"
)

// CSVFile loads a CSV file whose first record is the header.
type CSVFile struct {
	Path string
	// Delimiter separates fields. Zero picks tab for .tsv files and
	// otherwise sniffs ',' or ';' from the header line.
	Delimiter rune
}

// Load reads and parses the file.
func (f *CSVFile) Load(ctx context.Context) (rollcall.Table, error) {
	if err := ctx.Err(); err != nil {
		return rollcall.Table{}, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindCSV, Location: f.Path, Err: err}
	}
	defer fh.Close()

	delim := f.Delimiter
	if delim == 0 && strings.EqualFold(filepath.Ext(f.Path), ".tsv") {
		delim = '\t'
	}
	r := &CSVReader{R: fh, Delimiter: delim, Name: f.Path}
	return r.Load(ctx)
}

// CSVReader loads CSV from an io.Reader, for uploads and standard input.
type CSVReader struct {
	R         io.Reader
	Delimiter rune
	Name      string // used in errors
}

// Load reads r to the end.
func (c *CSVReader) Load(ctx context.Context) (rollcall.Table, error) {
	if err := ctx.Err(); err != nil {
		return rollcall.Table{}, err
	}
	t, err := readCSV(c.R, c.Delimiter)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindCSV, Location: c.Name, Err: err}
	}
	return t, nil
}

var errNoHeader = errors.New("no header row")

var utf8BOM = []byte("\xef\xbb\xbf")

func readCSV(r io.Reader, delim rune) (rollcall.Table, error) {
	br := bufio.NewReader(r)
	// A byte order mark before a quoted header cell would end up inside it.
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	if delim == 0 {
		delim = sniffDelimiter(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return rollcall.Table{}, errNoHeader
	}
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("read header: %w", err)
	}
	records, err := cr.ReadAll()
	if err != nil {
		return rollcall.Table{}, fmt.Errorf("read records: %w", err)
	}
	return tableFromRecords(header, records), nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas, as spreadsheets exported with a comma decimal separator do.
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	if bytes.Count(line, []byte("\t")) > bytes.Count(line, []byte(",")) {
		return '\t'
	}
	return ','
}
