// Package logging provides the component-tagged structured logger used
// throughout the engine.
package logging

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a component-scoped structured logger.
type Logger struct {
	l *charmlog.Logger
}

var base = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: true,
})

// New returns a Logger tagged with component, e.g. "scanner" or "watcher".
func New(component string) *Logger {
	return &Logger{l: base.With("component", component)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.l.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.l.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.l.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.l.Error(msg, kv...) }

// SetLevel configures the package-wide minimum log level, e.g. from a
// --verbose CLI flag.
func SetLevel(level charmlog.Level) {
	base.SetLevel(level)
}
