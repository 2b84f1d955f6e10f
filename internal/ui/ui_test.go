package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lvillar/rollcall"
)

func TestMessagesWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(&buf, ColorNever)
	u.Success("rendered %d pages", 3)
	u.Warning("threshold clamped")
	u.Error("failed")
	u.Info("loading")

	want := "✓ rendered 3 pages\n⚠ threshold clamped\n✗ failed\nℹ loading\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestMessagesWithColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	NewWithWriter(&buf, ColorAlways).Success("ok")
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escape in %q", buf.String())
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewWithWriter(&buf, ColorAlways).Error("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("NO_COLOR ignored: %q", buf.String())
	}
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "ALWAYS": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Errorf("ParseColorMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Error("expected error")
	}
}

func TestTable(t *testing.T) {
	tbl := rollcall.NewTable("Nome", "Matrícula")
	tbl.AddRow("Ana Souza", "1001").AddRow("Bruno de Albuquerque Lima", "1002")

	var buf bytes.Buffer
	NewWithWriter(&bytes.Buffer{}, ColorNever).Table(&buf, tbl, 10)

	want := "#  Nome        Matrícula\n" +
		"1  Ana Souza   1001\n" +
		"2  Bruno de …  1002\n"
	if buf.String() != want {
		t.Errorf("table =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFromContext(t *testing.T) {
	u := NewWithWriter(&bytes.Buffer{}, ColorNever)
	if FromContext(WithUI(context.Background(), u)) != u {
		t.Error("UI not carried by context")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected default UI")
	}
}
