package cmd

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/lvillar/rollcall"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("job: %w", context.Canceled), ExitCanceled},
		{"not_found", &rollcall.SourceError{Kind: "csv", Location: "x.csv", Err: os.ErrNotExist}, ExitNotFound},
		{"user", &userError{msg: "bad"}, ExitUser},
		{"no_selection", fmt.Errorf("job: %w", rollcall.ErrNoSelection), ExitUser},
		{"invalid_param", rollcall.ErrInvalidParam, ExitUser},
		{"unsupported", rollcall.ErrUnsupportedSource, ExitUser},
		{"missing_columns", &rollcall.MissingColumnsError{Columns: []string{"Data"}}, ExitUser},
		{"unknown_column", fmt.Errorf("job: %w", &rollcall.ColumnError{Name: "Polo"}), ExitUser},
		{"render", rollcall.NewRenderError("Output", fmt.Errorf("boom")), ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
