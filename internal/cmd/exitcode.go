package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/lvillar/rollcall"
)

const (
	ExitOK       = 0
	ExitSystem   = 1
	ExitUser     = 2
	ExitNotFound = 4
	ExitCanceled = 130
)

// userError marks errors caused by invalid command-line input.
type userError struct {
	msg string
}

func (e *userError) Error() string { return e.msg }

// ExitCode maps a command error to a stable process exit code for automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	if errors.Is(err, os.ErrNotExist) {
		return ExitNotFound
	}

	var (
		ue      *userError
		missing *rollcall.MissingColumnsError
		column  *rollcall.ColumnError
	)
	switch {
	case errors.As(err, &ue),
		errors.As(err, &missing),
		errors.As(err, &column),
		errors.Is(err, rollcall.ErrNoSelection),
		errors.Is(err, rollcall.ErrInvalidParam),
		errors.Is(err, rollcall.ErrUnsupportedSource):
		return ExitUser
	}
	return ExitSystem
}
