package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/itchyny/gojq"

	"github.com/lvillar/rollcall"
)

// JSONFile loads records from a JSON document, read from a file or fetched
// from an http(s) URL. The document, or the output of Query when set, must
// be an array of objects or a stream of objects. Object keys become columns
// in the order they first appear in the document.
type JSONFile struct {
	Path    string
	Query   string // jq expression, e.g. ".responses[] | select(.valid)"
	Timeout time.Duration
}

// Load reads the document and flattens it into a table.
func (j *JSONFile) Load(ctx context.Context) (rollcall.Table, error) {
	data, err := j.read(ctx)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindJSON, Location: j.Path, Err: err}
	}
	t, err := recordsTable(ctx, data, j.Query)
	if err != nil {
		return rollcall.Table{}, &rollcall.SourceError{Kind: KindJSON, Location: j.Path, Err: err}
	}
	return t, nil
}

func (j *JSONFile) read(ctx context.Context) ([]byte, error) {
	if !isURL(j.Path) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(j.Path)
	}
	body, err := fetch(ctx, nil, j.Path, j.Timeout)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// recordsTable runs query over data and collects the resulting objects.
func recordsTable(ctx context.Context, data []byte, query string) (rollcall.Table, error) {
	doc, err := decodeJSON(data)
	if err != nil {
		return rollcall.Table{}, err
	}

	values := []any{doc}
	if query != "" {
		out, err := runQuery(ctx, query, doc)
		if err != nil {
			return rollcall.Table{}, err
		}
		values = out
	}

	var records []map[string]any
	for _, v := range values {
		switch v := v.(type) {
		case []any:
			for _, item := range v {
				obj, ok := item.(map[string]any)
				if !ok {
					return rollcall.Table{}, fmt.Errorf("array element is %T, want object", item)
				}
				records = append(records, obj)
			}
		case map[string]any:
			records = append(records, v)
		case nil:
		default:
			return rollcall.Table{}, fmt.Errorf("query result is %T, want object or array of objects", v)
		}
	}

	columns := recordColumns(data, records)
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for c, name := range columns {
			row[c] = stringify(rec[name])
		}
		rows[i] = row
	}
	return tableFromRecords(columns, rows), nil
}

// decodeJSON decodes data keeping numbers exact: integers become int or
// *big.Int, as gojq expects, and only other numbers become float64.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode: unexpected data after the top-level value")
	}
	return exactNumbers(doc)
}

func exactNumbers(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil && int64(int(i)) == i {
			return int(i), nil
		}
		if b, ok := new(big.Int).SetString(v.String(), 10); ok {
			return b, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode: number %s: %w", v, err)
		}
		return f, nil
	case []any:
		for i, item := range v {
			n, err := exactNumbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = n
		}
	case map[string]any:
		for k, item := range v {
			n, err := exactNumbers(item)
			if err != nil {
				return nil, err
			}
			v[k] = n
		}
	}
	return v, nil
}

func runQuery(ctx context.Context, query string, doc any) ([]any, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	var out []any
	iter := code.RunWithContext(ctx, doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("query error: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// recordColumns orders the union of record keys by first appearance in the
// raw document. Keys the document does not contain, such as ones created by
// a query, follow in sorted order.
func recordColumns(data []byte, records []map[string]any) []string {
	order := keyOrder(data)
	seen := make(map[string]bool)
	var known, extra []string
	for _, rec := range records {
		for k := range rec {
			if seen[k] {
				continue
			}
			seen[k] = true
			if _, ok := order[k]; ok {
				known = append(known, k)
			} else {
				extra = append(extra, k)
			}
		}
	}
	sort.Slice(known, func(a, b int) bool { return order[known[a]] < order[known[b]] })
	sort.Strings(extra)
	return append(known, extra...)
}

// keyOrder maps every object key in data to the position of its first
// occurrence.
func keyOrder(data []byte) map[string]int {
	type frame struct {
		object  bool
		wantKey bool
	}
	order := make(map[string]int)
	dec := json.NewDecoder(bytes.NewReader(data))
	var stack []frame
	// valueDone flips the enclosing object back to expecting a key.
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].wantKey = true
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return order
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{object: true, wantKey: true})
			case '[':
				stack = append(stack, frame{})
			default:
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
				if _, ok := order[v]; !ok {
					order[v] = len(order)
				}
				stack[n-1].wantKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// stringify renders a JSON value as cell text.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case *big.Int:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
