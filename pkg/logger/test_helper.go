package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// NewTestLogger discards everything. Use it where a test does not assert on
// log output.
func NewTestLogger() Logger {
	return Logger{Logger: zerolog.Nop()}
}

// NewBufferedTestLogger writes every record as a JSON line to w, so tests can
// assert on warnings and debug records regardless of LOG_LEVEL.
func NewBufferedTestLogger(w io.Writer) Logger {
	return NewLeveledTestLogger(w, zerolog.TraceLevel)
}

// NewLeveledTestLogger is NewBufferedTestLogger with an explicit minimum level.
func NewLeveledTestLogger(w io.Writer, level zerolog.Level) Logger {
	return Logger{
		Logger: zerolog.New(w).Level(level).With().Str("service", "test").Logger(),
	}
}
