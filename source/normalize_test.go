package source_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/source"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Matrícula":            "matricula",
		"  POLO  de  Instrução": "polo de instrucao",
		"Nome":                 "nome",
		"":                     "",
	}
	for in, want := range cases {
		if got := source.Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"05/03/2024", "05/03/2024", true},
		{"5/3/2024", "05/03/2024", true},
		{"5.3.2024", "05/03/2024", true},
		{"05,03,24", "05/03/2024", true},
		{"2024-03-05", "05/03/2024", true},
		{"05/03/2024 14:30:00", "05/03/2024", true},
		{"12/31/2024", "31/12/2024", true}, // month-first fallback
		{"45356", "05/03/2024", true},       // Excel serial
		{"123", "123", false},
		{"amanhã", "amanhã", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := source.CanonicalDate(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("CanonicalDate(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalize(t *testing.T) {
	tbl := rollcall.Table{
		Columns: []string{"Polo de Instrucao", "data", "Nome Completo", "Matricula", "OPM"},
		Rows: [][]string{
			{" Norte ", "5/3/2024", "Ana", "1", "A"},
			{"", "", "", "", ""},
			{"Sul", "2024-03-06", "Bia", "2", "B"},
			{"Sul", "sem data", "Caio", "3", "C"},
		},
	}
	opts := source.NormalizeOptions{
		Aliases: map[string][]string{
			"Polo de Instrução": nil,
			"Data":              nil,
			"Matrícula":         {"Matricula", "Registro"},
		},
		Required:    []string{"Polo de Instrução", "Data", "Nome Completo", "Matrícula"},
		DateColumns: []string{"Data"},
	}

	out, err := source.Normalize(tbl, opts)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "[Polo de Instrução Data Nome Completo Matrícula OPM]"
	if got := fmt.Sprint(out.Columns); got != want {
		t.Errorf("columns = %s, want %s", got, want)
	}
	if out.Len() != 3 {
		t.Fatalf("rows = %d, want 3", out.Len())
	}
	if out.Rows[0][0] != "Norte" {
		t.Errorf("cell not trimmed: %q", out.Rows[0][0])
	}
	if out.Rows[0][1] != "05/03/2024" || out.Rows[1][1] != "06/03/2024" {
		t.Errorf("dates = %q, %q", out.Rows[0][1], out.Rows[1][1])
	}
	if out.Rows[2][1] != "sem data" {
		t.Errorf("unparsed date rewritten to %q", out.Rows[2][1])
	}
	if tbl.Columns[0] != "Polo de Instrucao" {
		t.Error("input table was modified")
	}
}

func TestNormalizeKeepsExistingCanonicalColumn(t *testing.T) {
	tbl := rollcall.Table{
		Columns: []string{"Matrícula", "Matricula"},
		Rows:    [][]string{{"1", "2"}},
	}
	out, err := source.Normalize(tbl, source.NormalizeOptions{
		Aliases: map[string][]string{"Matrícula": {"Matricula"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("duplicate columns after alias resolution: %v", err)
	}
	if fmt.Sprint(out.Columns) != "[Matrícula Matricula]" {
		t.Errorf("columns = %v", out.Columns)
	}
}

func TestNormalizeMissingColumns(t *testing.T) {
	tbl := rollcall.NewTable("Nome")
	_, err := source.Normalize(tbl, source.NormalizeOptions{Required: []string{"Nome", "Data", "Polo"}})
	var me *rollcall.MissingColumnsError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if fmt.Sprint(me.Columns) != "[Data Polo]" {
		t.Errorf("missing = %v", me.Columns)
	}
}
