package source

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lvillar/rollcall"
)

// Selection picks one training session: rows whose hub column equals Hub and
// whose date column equals Date.
type Selection struct {
	HubColumn  string `json:"hub_column" yaml:"hub_column"`
	Hub        string `json:"hub" yaml:"hub"`
	DateColumn string `json:"date_column" yaml:"date_column"`
	Date       string `json:"date" yaml:"date"`
}

// Filter returns the rows of t matching sel, in source order. Both facets use
// exact, case-sensitive equality on the cell text.
func Filter(t rollcall.Table, sel Selection) (rollcall.Table, error) {
	if sel.Hub == "" || sel.Date == "" {
		return rollcall.Table{}, fmt.Errorf("%w: hub %q date %q", rollcall.ErrNoSelection, sel.Hub, sel.Date)
	}
	hub := t.ColumnIndex(sel.HubColumn)
	if hub < 0 {
		return rollcall.Table{}, &rollcall.ColumnError{Name: sel.HubColumn}
	}
	date := t.ColumnIndex(sel.DateColumn)
	if date < 0 {
		return rollcall.Table{}, &rollcall.ColumnError{Name: sel.DateColumn}
	}

	out := rollcall.Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if cell(row, hub) == sel.Hub && cell(row, date) == sel.Date {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out, nil
}

// Project keeps the named columns in the given order. No names keeps every
// column.
func Project(t rollcall.Table, columns []string) (rollcall.Table, error) {
	if len(columns) == 0 {
		return t.Clone(), nil
	}
	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = t.ColumnIndex(name)
		if idx[i] < 0 {
			return rollcall.Table{}, &rollcall.ColumnError{Name: name}
		}
	}
	out := rollcall.Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for r, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, c := range idx {
			cells[i] = cell(row, c)
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// Values returns the distinct non-empty values of a column. Columns holding
// only DD/MM/YYYY dates are ordered chronologically, others alphabetically
// with Portuguese collation.
func Values(t rollcall.Table, column string) ([]string, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, &rollcall.ColumnError{Name: column}
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		v := cell(row, idx)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sortValues(out)
	return out, nil
}

// Session is one hub and date pair present in a table.
type Session struct {
	Hub  string `json:"hub"`
	Date string `json:"date"`
	Rows int    `json:"rows"`
}

// Sessions lists every hub and date combination of t with its row count,
// ordered by hub and then date.
func Sessions(t rollcall.Table, hubColumn, dateColumn string) ([]Session, error) {
	hub := t.ColumnIndex(hubColumn)
	if hub < 0 {
		return nil, &rollcall.ColumnError{Name: hubColumn}
	}
	date := t.ColumnIndex(dateColumn)
	if date < 0 {
		return nil, &rollcall.ColumnError{Name: dateColumn}
	}

	counts := make(map[[2]string]int)
	for _, row := range t.Rows {
		h, d := cell(row, hub), cell(row, date)
		if h == "" || d == "" {
			continue
		}
		counts[[2]string{h, d}]++
	}

	hubs := make([]string, 0, len(counts))
	dates := make(map[string][]string)
	for k := range counts {
		if _, ok := dates[k[0]]; !ok {
			hubs = append(hubs, k[0])
		}
		dates[k[0]] = append(dates[k[0]], k[1])
	}
	sortValues(hubs)

	out := make([]Session, 0, len(counts))
	for _, h := range hubs {
		ds := dates[h]
		sortValues(ds)
		for _, d := range ds {
			out = append(out, Session{Hub: h, Date: d, Rows: counts[[2]string{h, d}]})
		}
	}
	return out, nil
}

func sortValues(values []string) {
	times := make([]time.Time, len(values))
	allDates := len(values) > 0
	for i, v := range values {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			allDates = false
			break
		}
		times[i] = d
	}
	if allDates {
		sort.Sort(byTime{values, times})
		return
	}
	collate.New(language.Portuguese).SortStrings(values)
}

type byTime struct {
	values []string
	times  []time.Time
}

func (b byTime) Len() int           { return len(b.values) }
func (b byTime) Less(i, j int) bool { return b.times[i].Before(b.times[j]) }
func (b byTime) Swap(i, j int) {
	b.values[i], b.values[j] = b.values[j], b.values[i]
	b.times[i], b.times[j] = b.times[j], b.times[i]
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
