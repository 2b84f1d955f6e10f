package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/job"
)

const enrollmentCSV = `Comando;OPM;Subunidade;Polo de Instrucao;Data;Matricula;Nome Completo
CPR;1 BPM;1 Cia;Norte;05/03/2024;1001;Ana Souza
CPR;1 BPM;2 Cia;Norte;5/3/2024;1002;Bruno Lima
CPR;2 BPM;1 Cia;Sul;05/03/2024;2001;Carla Dias
`

type harness struct {
	dir    string
	source string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	h.source = filepath.Join(h.dir, "inscritos.csv")
	if err := os.WriteFile(h.source, []byte(enrollmentCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROLLCALL_CONFIG", filepath.Join(h.dir, "config.yaml"))
	return h
}

func (h *harness) run(stdin string, args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	app := &App{
		Stdin:     strings.NewReader(stdin),
		Stdout:    &h.stdout,
		Stderr:    &h.stderr,
		Version:   "1.0.0",
		Commit:    "abc",
		BuildTime: "today",
	}
	return app.Execute(context.Background(), append([]string{"--color", "never"}, args...))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "version"); err != nil {
		t.Fatal(err)
	}
	if got := h.stdout.String(); got != "rollcall 1.0.0 (commit: abc, built: today)\n" {
		t.Errorf("version = %q", got)
	}
}

func TestFacets(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "facets", "-s", h.source); err != nil {
		t.Fatalf("facets: %v (%s)", err, h.stderr.String())
	}
	out := h.stdout.String()
	for _, want := range []string{"Hubs:  Norte, Sul\n", "Dates: 05/03/2024\n", "  Norte\t05/03/2024\t2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := h.run("", "facets", "-s", h.source, "--json"); err != nil {
		t.Fatal(err)
	}
	var facets job.Facets
	if err := json.Unmarshal(h.stdout.Bytes(), &facets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(facets.Sessions) != 2 {
		t.Errorf("sessions = %+v", facets.Sessions)
	}
}

func TestPreview(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "preview", "-s", h.source, "--hub", "Norte", "--date", "05/03/2024", "--columns", "Nome Completo,Matrícula")
	if err != nil {
		t.Fatalf("preview: %v (%s)", err, h.stderr.String())
	}
	want := "#  Nome Completo  Matrícula\n1  Ana Souza      1001\n2  Bruno Lima     1002\n"
	if got := h.stdout.String(); got != want {
		t.Errorf("preview =\n%s\nwant\n%s", got, want)
	}

	if err := h.run("", "preview", "-s", h.source, "-n", "1"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stderr.String(), "showing 1 of 3 rows") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestRender(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(h.dir, "lista.pdf")
	err := h.run("", "render", "-s", h.source, "--hub", "Norte", "--date", "5/3/2024", "--document-id", "doc-7", "-o", out)
	if err != nil {
		t.Fatalf("render: %v (%s)", err, h.stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if want := "✓ 2 rows on 1 pages written to " + out + " (document doc-7)"; !strings.Contains(h.stderr.String(), want) {
		t.Errorf("stderr = %q, want %q", h.stderr.String(), want)
	}
}

func TestRenderStdout(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "render", "-s", h.source, "--hub", "Sul", "--date", "05/03/2024", "-o", "-"); err != nil {
		t.Fatalf("render: %v (%s)", err, h.stderr.String())
	}
	if !bytes.HasPrefix(h.stdout.Bytes(), []byte("%PDF-")) {
		t.Error("stdout is not a PDF")
	}
}

func TestRenderErrors(t *testing.T) {
	h := newHarness(t)

	err := h.run("", "render", "--hub", "Norte", "--date", "05/03/2024")
	if ExitCode(err) != ExitUser {
		t.Errorf("no source: err = %v, exit %d", err, ExitCode(err))
	}
	if !strings.Contains(h.stderr.String(), "✗ no source") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	err = h.run("", "render", "-s", h.source, "-o", "-")
	if !errors.Is(err, rollcall.ErrNoSelection) {
		t.Errorf("no hub: err = %v", err)
	}

	err = h.run("", "render", "-s", filepath.Join(h.dir, "nope.csv"), "--hub", "Norte", "--date", "05/03/2024", "-o", "-")
	if ExitCode(err) != ExitNotFound {
		t.Errorf("missing source: err = %v, exit %d", err, ExitCode(err))
	}

	err = h.run("", "render", "-s", h.source, "--hub", "Norte", "--date", "05/03/2024", "--verify", "barcode", "-o", "-")
	if !errors.Is(err, rollcall.ErrInvalidParam) {
		t.Errorf("bad verification: err = %v", err)
	}

	if err := h.run("", "--color", "sometimes", "version"); ExitCode(err) != ExitUser {
		t.Errorf("bad color: err = %v", err)
	}
}

func TestRenderJobFile(t *testing.T) {
	h := newHarness(t)
	jobPath := filepath.Join(h.dir, "turma.yaml")
	content := "source:\n  path: " + h.source + "\nhub: Norte\ndate: 05/03/2024\ntitle: Chamada\n"
	if err := os.WriteFile(jobPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Flags override the job file.
	if err := h.run("", "render", "-j", jobPath, "--hub", "Sul", "-o", "-"); err != nil {
		t.Fatalf("render: %v (%s)", err, h.stderr.String())
	}
	if !strings.Contains(h.stderr.String(), "1 rows on 1 pages") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestBatchMergeWatermark(t *testing.T) {
	h := newHarness(t)
	all := filepath.Join(h.dir, "todas.pdf")
	if err := h.run("", "batch", "-s", h.source, "-o", all); err != nil {
		t.Fatalf("batch: %v (%s)", err, h.stderr.String())
	}
	if !strings.Contains(h.stderr.String(), "2 sheets on 2 pages") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	merged := filepath.Join(h.dir, "merged.pdf")
	if err := h.run("", "merge", "-o", merged, all, all); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "(4 pages)") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	stamped := filepath.Join(h.dir, "stamped.pdf")
	if err := h.run("", "watermark", "--text", "CANCELADA", "-o", stamped, merged); err != nil {
		t.Fatalf("watermark: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "watermark added to 4 pages") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	if err := h.run("", "watermark", "-o", stamped, merged); ExitCode(err) != ExitUser {
		t.Errorf("missing text: err = %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "custom.yaml")
	content := "defaults:\n  source:\n    path: " + h.source + "\n  hub: Sul\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.run("", "--config", cfgPath, "facets", "--json"); err != nil {
		t.Fatalf("facets: %v (%s)", err, h.stderr.String())
	}
	var facets job.Facets
	if err := json.Unmarshal(h.stdout.Bytes(), &facets); err != nil {
		t.Fatal(err)
	}
	if len(facets.Dates) != 1 || facets.Dates[0] != "05/03/2024" {
		t.Errorf("dates = %v", facets.Dates)
	}
}

func TestMCP(t *testing.T) {
	h := newHarness(t)
	in := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
`
	if err := h.run(in, "mcp"); err != nil {
		t.Fatalf("mcp: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("responses = %d:\n%s", len(lines), h.stdout.String())
	}
	if !strings.Contains(lines[1], `"create_attendance_pdf"`) {
		t.Errorf("tools/list = %s", lines[1])
	}
}
