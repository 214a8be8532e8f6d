// Package cli implements the cola command-line interface.
//
// The CLI lays out graphs from JSON files, renders finished layouts with
// Graphviz, animates a layout tick by tick in the terminal, and serves
// layouts over HTTP. It is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a layout and write it as JSON
//   - route: Route the links of an existing layout
//   - render: Draw a layout as SVG, PNG, PDF or DOT
//   - watch: Run a layout interactively, one tick per frame
//   - powergraph: Show the power graph groups of a graph
//   - serve: Serve layouts over HTTP
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also attached to each command's context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Routed 12 links (4ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
