package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the zerolog logger shared by every component of a run
type Logger struct {
	*zerolog.Logger
}

// New returns a logger writing human readable output to w
func New(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{&l}
}

// NewConsole logs to stdout
func NewConsole(debug bool) *Logger {
	return New(os.Stdout, debug)
}

// NewErrorConsole logs to stderr, used before the run configuration is known
func NewErrorConsole(debug bool) *Logger {
	return New(os.Stderr, debug)
}

// NewNop discards everything
func NewNop() *Logger {
	l := zerolog.Nop()

	return &Logger{&l}
}

// ForRun returns a child logger carrying the given application and run ID on every line
func (l *Logger) ForRun(app, runID string) *Logger {
	child := l.Logger.With().Str("app", app).Str("run_id", runID).Logger()

	return &Logger{&child}
}
