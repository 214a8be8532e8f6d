package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("tick", "alpha", 0.1) }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("tick", "alpha", 0.1) }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("tick", "alpha", 0.1) }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("no route") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Routed 3 links")

	out := buf.String()
	if !strings.Contains(out, "Routed 3 links (") {
		t.Errorf("output %q missing message with duration", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if got := loggerFromContext(ctx); got != l {
		t.Fatal("loggerFromContext did not return the attached logger")
	}
	loggerFromContext(ctx).Info("cache cleared")
	if !strings.Contains(buf.String(), "cache cleared") {
		t.Errorf("attached logger did not write, got %q", buf.String())
	}
}
