package main

import (
	"context"
	"errors"
	"io"
	"time"

	"dslf/internal/httpclient"
	"dslf/internal/logger"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failure reported")

// app holds the process-level collaborators of the commands.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	newDoer   func(timeout time.Duration) httpclient.HTTPDoer
	newLogger func() (*zap.SugaredLogger, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		newDoer: func(timeout time.Duration) httpclient.HTTPDoer {
			return httpclient.New(timeout)
		},
		newLogger: logger.NewLogger,
	}
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(args []string) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			color.New(color.FgRed).Fprintf(a.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
