// Command classgraph builds, checks and renders class dependency graphs
// from extracted declaration records.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/classgraph/internal/cli"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

// Exit codes. A graph that fails strict checks exits 2 so scripts can tell
// it apart from a broken invocation.
const (
	exitError       = 1
	exitInvalid     = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(exitInterrupted)
	}
	fmt.Fprintln(os.Stderr, cli.FormatError(err))
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeInvalidGraph, cgerrors.ErrCodeDuplicate:
		os.Exit(exitInvalid)
	}
	os.Exit(exitError)
}
