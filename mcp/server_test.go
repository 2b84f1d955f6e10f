package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/rollcall/job"
)

const enrollmentCSV = `Comando;OPM;Subunidade;Polo de Instrucao;Data;Matricula;Nome Completo
CPR;1 BPM;1 Cia;Norte;05/03/2024;1001;Ana Souza
CPR;1 BPM;2 Cia;Norte;5/3/2024;1002;Bruno Lima
CPR;2 BPM;1 Cia;Sul;05/03/2024;2001;Carla Dias
`

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inscritos.csv")
	if err := os.WriteFile(path, []byte(enrollmentCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer() *Server {
	s := NewServerWithIO(nil, nil, "test")
	RegisterDefaultTools(s, job.Default())
	RegisterDefaultResources(s, job.Default())
	return s
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) jsonrpcResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// toolText calls a tool and returns the text of its single content block.
func toolText(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 10, map[string]any{"name": name, "arguments": args})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	var result ToolResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	return result.Content[0].Text, result.IsError
}

func TestServerInitialize(t *testing.T) {
	s := newTestServer()

	resp := sendRequest(t, s, "initialize", 1, map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}
	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != "rollcall-mcp" || serverInfo["version"] != "test" {
		t.Fatalf("unexpected server info: %v", serverInfo)
	}
}

func TestServerToolsList(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]any)
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatal("tools is not an array")
	}
	var names []string
	for _, tool := range tools {
		tm := tool.(map[string]any)
		names = append(names, tm["name"].(string))
		if _, ok := tm["inputSchema"].(map[string]any); !ok {
			t.Errorf("tool %v has no input schema", tm["name"])
		}
	}
	want := "create_attendance_batch create_attendance_pdf list_facets merge_attendance_pdfs preview_attendance watermark_pdf"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("tools = %s\nwant %s", got, want)
	}
}

func TestServerResourcesList(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resources, ok := resp.Result.(map[string]any)["resources"].([]any)
	if !ok {
		t.Fatal("resources is not an array")
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	if uri := resources[0].(map[string]any)["uri"]; uri != "sheet://facets" {
		t.Errorf("first resource = %v", uri)
	}
}

func TestServerPing(t *testing.T) {
	resp := sendRequest(t, NewServerWithIO(nil, nil, "test"), "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	resp := sendRequest(t, NewServerWithIO(nil, nil, "test"), "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected error code -32601, got %d", resp.Error.Code)
	}
}

func TestServerUnknownTool(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "tools/call", 6, map[string]any{
		"name":      "nonexistent_tool",
		"arguments": map[string]any{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestListFacetsTool(t *testing.T) {
	text, isErr := toolText(t, newTestServer(), "list_facets", map[string]any{
		"job": map[string]any{"source": map[string]any{"path": writeSource(t)}},
	})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	var facets job.Facets
	if err := json.Unmarshal([]byte(text), &facets); err != nil {
		t.Fatalf("decoding facets: %v\n%s", err, text)
	}
	if strings.Join(facets.Hubs, ",") != "Norte,Sul" || len(facets.Sessions) != 2 {
		t.Errorf("facets = %+v", facets)
	}
}

func TestPreviewAttendanceTool(t *testing.T) {
	text, isErr := toolText(t, newTestServer(), "preview_attendance", map[string]any{
		"job": map[string]any{
			"source": map[string]any{"path": writeSource(t)},
			"hub":    "Norte",
			"date":   "05/03/2024",
		},
		"limit": 1,
	})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	var preview struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
		Total   int        `json:"total"`
	}
	if err := json.Unmarshal([]byte(text), &preview); err != nil {
		t.Fatalf("decoding preview: %v", err)
	}
	if preview.Total != 2 || len(preview.Rows) != 1 || preview.Rows[0][0] != "Ana Souza" {
		t.Errorf("preview = %+v", preview)
	}
}

func TestCreateAttendancePDFTool(t *testing.T) {
	text, isErr := toolText(t, newTestServer(), "create_attendance_pdf", map[string]any{
		"job": map[string]any{
			"source":      map[string]any{"path": writeSource(t)},
			"hub":         "Sul",
			"date":        "05/03/2024",
			"document_id": "abc-123",
		},
	})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	if !strings.Contains(text, "1 rows on 1 pages, document abc-123") {
		t.Fatalf("unexpected result: %s", text)
	}
	if !strings.Contains(text, "lista_presenca_Sul_20240305.pdf") {
		t.Errorf("file name missing: %s", text)
	}
	idx := strings.Index(text, "Base64 data:\n")
	if idx < 0 {
		t.Fatalf("expected base64 data in result: %s", text)
	}
	pdf, err := base64.StdEncoding.DecodeString(text[idx+len("Base64 data:\n"):])
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("invalid PDF payload: %v", err)
	}
}

func TestCreateAttendancePDFToolErrors(t *testing.T) {
	s := newTestServer()
	text, isErr := toolText(t, s, "create_attendance_pdf", map[string]any{})
	if !isErr || !strings.Contains(text, "missing 'job'") {
		t.Errorf("expected missing job error, got %q", text)
	}

	text, isErr = toolText(t, s, "create_attendance_pdf", map[string]any{
		"job": map[string]any{"source": map[string]any{"path": writeSource(t)}},
	})
	if !isErr || !strings.Contains(text, "hub and date are required") {
		t.Errorf("expected selection error, got %q", text)
	}
}

func TestBatchMergeAndWatermarkTools(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.pdf")
	text, isErr := toolText(t, s, "create_attendance_batch", map[string]any{
		"job":        map[string]any{"source": map[string]any{"path": writeSource(t)}},
		"outputPath": batch,
	})
	if isErr || !strings.Contains(text, "2 sheets on 2 pages") {
		t.Fatalf("batch: %s", text)
	}

	merged := filepath.Join(dir, "merged.pdf")
	text, isErr = toolText(t, s, "merge_attendance_pdfs", map[string]any{
		"inputPaths": []string{batch, batch},
		"outputPath": merged,
	})
	if isErr {
		t.Fatalf("merge: %s", text)
	}

	stamped := filepath.Join(dir, "stamped.pdf")
	text, isErr = toolText(t, s, "watermark_pdf", map[string]any{
		"inputPath":  merged,
		"outputPath": stamped,
		"text":       "CÓPIA",
	})
	if isErr || !strings.Contains(text, "added to 4 pages") {
		t.Fatalf("watermark: %s", text)
	}
	if _, err := os.Stat(stamped); err != nil {
		t.Error(err)
	}
}

func TestMergeToolRejectsBadPaths(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	output := filepath.Join(dir, "merged.pdf")
	tests := []struct {
		name  string
		paths any
		want  string
	}{
		{"missing", nil, "missing 'inputPaths'"},
		{"empty list", []any{}, "missing 'inputPaths'"},
		{"number", []any{filepath.Join(dir, "a.pdf"), 42}, "entry 2 must be a non-empty string"},
		{"object", []any{map[string]any{"path": "a.pdf"}}, "entry 1 must be a non-empty string"},
		{"empty string", []any{""}, "entry 1 must be a non-empty string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{"outputPath": output}
			if tt.paths != nil {
				args["inputPaths"] = tt.paths
			}
			text, isErr := toolText(t, s, "merge_attendance_pdfs", args)
			if !isErr || !strings.Contains(text, tt.want) {
				t.Errorf("got %q (error %v), want error containing %q", text, isErr, tt.want)
			}
			if _, err := os.Stat(output); err == nil {
				t.Error("output written for invalid input")
			}
		})
	}
}

func TestReadResources(t *testing.T) {
	s := newTestServer()
	path := writeSource(t)

	resp := sendRequest(t, s, "resources/read", 11, map[string]any{"uri": "sheet://records?path=" + path + "&hub=Norte&date=05/03/2024"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	data, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(data), `\"total\": 2`) {
		t.Errorf("records = %s", data)
	}

	resp = sendRequest(t, s, "resources/read", 12, map[string]any{"uri": "sheet://facets"})
	if resp.Error == nil || resp.Error.Code != codeInternalError {
		t.Errorf("expected resource error for missing path, got %+v", resp.Error)
	}

	resp = sendRequest(t, s, "resources/read", 13, map[string]any{"uri": "sheet://unknown?path=x"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("expected unknown resource error, got %+v", resp.Error)
	}
}

func TestServerMultipleRequests(t *testing.T) {
	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	}

	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	s := NewServerWithIO(strings.NewReader(input), &output, "test")
	RegisterDefaultTools(s, job.Default())
	RegisterDefaultResources(s, job.Default())

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), output.String())
	}
	for i, line := range lines {
		var resp jsonrpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d: unmarshal error: %v\nline: %s", i, err, line)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error: %s", i, resp.Error.Message)
		}
	}
}

func TestServerParseError(t *testing.T) {
	var output bytes.Buffer
	s := NewServerWithIO(strings.NewReader("{not json\n"), &output, "test")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Errorf("expected parse error, got %+v", resp.Error)
	}
}

func TestToolAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil, "test")
	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			return ToolResult{
				Content: []ContentBlock{{Type: "text", Text: "custom result"}},
			}, nil
		},
	})

	text, isErr := toolText(t, s, "custom_tool", map[string]any{})
	if isErr || text != "custom result" {
		t.Fatalf("unexpected result: %q", text)
	}
}
