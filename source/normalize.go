package source

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lvillar/rollcall"
)

// DateLayout is the canonical form of date cells after normalization.
const DateLayout = "02/01/2006"

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// Aliases maps a canonical column name to alternative spellings. Names
	// are compared ignoring case, accents and repeated spaces, so the
	// canonical name itself also matches its unaccented form.
	Aliases map[string][]string
	// Required columns must be present after alias resolution.
	Required []string
	// DateColumns are rewritten to DateLayout where they parse as dates.
	DateColumns []string
}

// Normalize returns a canonical copy of t: blank rows dropped, cells trimmed,
// aliased columns renamed to their canonical names and date columns
// rewritten as DD/MM/YYYY. Cells that do not parse as dates are kept as they
// are. Missing required columns are reported as *rollcall.MissingColumnsError.
func Normalize(t rollcall.Table, opts NormalizeOptions) (rollcall.Table, error) {
	out := tableFromRecords(t.Columns, t.Rows)
	resolveAliases(&out, opts.Aliases)

	var missing []string
	for _, name := range opts.Required {
		if out.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return rollcall.Table{}, &rollcall.MissingColumnsError{Columns: missing}
	}

	for _, name := range opts.DateColumns {
		idx := out.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		bad := 0
		for _, row := range out.Rows {
			if row[idx] == "" {
				continue
			}
			if d, ok := CanonicalDate(row[idx]); ok {
				row[idx] = d
			} else {
				bad++
			}
		}
		if bad > 0 {
			slog.Debug("unparsed date cells", "column", name, "count", bad)
		}
	}
	return out, nil
}

func resolveAliases(t *rollcall.Table, aliases map[string][]string) {
	if len(aliases) == 0 {
		return
	}
	lookup := make(map[string]string)
	for canonical, alts := range aliases {
		lookup[Fold(canonical)] = canonical
		for _, a := range alts {
			lookup[Fold(a)] = canonical
		}
	}
	taken := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		taken[c] = true
	}
	for i, c := range t.Columns {
		canonical, ok := lookup[Fold(c)]
		if !ok || canonical == c || taken[canonical] {
			continue
		}
		slog.Debug("column alias resolved", "from", c, "to", canonical)
		delete(taken, c)
		taken[canonical] = true
		t.Columns[i] = canonical
	}
}

// Fold lowercases s, strips diacritics and collapses whitespace, so that
// "Matrícula" and " matricula " compare equal.
func Fold(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(tr, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

var (
	dayFirstLayouts = []string{
		"2/1/2006",
		"2/1/06",
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	monthFirstLayouts = []string{
		"1/2/2006",
		"1/2/06",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
	}
)

// ParseDate reads a date cell. Day-first forms are tried before month-first
// ones; "," and "." are accepted as separators; plausible Excel serial
// numbers are converted.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if d, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return d, true
			}
		}
		return time.Time{}, false
	}
	s = strings.NewReplacer(",", "/", ".", "/").Replace(s)
	for _, layouts := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range layouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// CanonicalDate rewrites a date cell as DD/MM/YYYY.
func CanonicalDate(s string) (string, bool) {
	d, ok := ParseDate(s)
	if !ok {
		return s, false
	}
	return d.Format(DateLayout), true
}
