// Package cli implements the classgraph command-line interface.
//
// The commands turn extracted declaration records into a dependency graph,
// report on its structure, render it and serve it over HTTP. The CLI is
// built with cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - build: build the graph and write it with its statistics
//   - validate: print the structural report (cycles, paths, connectivity)
//   - render: write DOT, SVG, PNG, PDF or JSON outputs
//   - inspect: browse nodes interactively
//   - serve: expose the graph and snapshots over HTTP
//   - snapshot: save, list, show and delete stored builds
//   - cache: inspect and clear the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to the commands.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: timestamps with centiseconds, filtered
// at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs how long a CLI step took. Not safe for concurrent use.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time and any extra
// key/value pairs, e.g. "pipeline finished elapsed=12ms nodes=40".
func (s stopwatch) done(msg string, keyvals ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by the root command, or
// log.Default() for contexts that never passed through it (tests, the
// inspect program).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
