package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func saveAndRestoreLogger(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(original)
	})
}

func TestSetupDebugMode(t *testing.T) {
	saveAndRestoreLogger(t)

	var buf bytes.Buffer
	Setup(true, &buf)
	slog.Debug("page break", "page", 2)

	output := buf.String()
	if !strings.Contains(output, "page break") || !strings.Contains(output, "page=2") {
		t.Errorf("expected debug record in output, got: %s", output)
	}
}

func TestSetupNormalMode(t *testing.T) {
	saveAndRestoreLogger(t)

	var buf bytes.Buffer
	Setup(false, &buf)
	slog.Debug("debug message")
	slog.Info("sheet rendered")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Errorf("debug message should not appear in normal mode")
	}
	if !strings.Contains(output, "sheet rendered") {
		t.Errorf("info message should appear")
	}
}

func TestSetupJSON(t *testing.T) {
	saveAndRestoreLogger(t)

	var buf bytes.Buffer
	SetupJSON(false, &buf)
	slog.Info("sheet rendered", "pages", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if record["msg"] != "sheet rendered" || record["pages"] != float64(3) {
		t.Errorf("record = %v", record)
	}
}

func TestSetupNilWriter(t *testing.T) {
	saveAndRestoreLogger(t)
	Setup(false, nil)
	slog.Info("test")
}
