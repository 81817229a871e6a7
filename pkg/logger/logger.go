package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const (
	JSONLoggingFormat = "json"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelFatal   = "fatal"
	LogLevelPanic   = "panic"

	ContextKeyRequestID     contextKey = "requestID"
	ContextKeyCorrelationID contextKey = "correlationID"
)

type (
	Logger struct {
		zerolog.Logger
	}

	// FileOptions configures the optional rotating log file.
	FileOptions struct {
		Path       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
)

func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// NewWithFile logs to stdout and, when opts.Path is set, to a rotating file.
// The returned closer releases the file and must be called on shutdown.
func NewWithFile(level, format string, opts FileOptions) (Logger, io.Closer) {
	if opts.Path == "" {
		return New(level, format), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	log := newLogger(level, format, os.Stdout)
	log = log.Output(zerolog.MultiLevelWriter(outputFor(format, os.Stdout), rotator))

	return Logger{Logger: log}, rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func NewWithWriter(level, format string, w io.Writer) Logger {
	return Logger{
		Logger: newLogger(level, format, w),
	}
}

// newLogger scopes the level to the returned logger; zerolog's global level
// stays untouched so independent loggers never silence each other.
func newLogger(level, format string, w io.Writer) zerolog.Logger {
	return zerolog.New(outputFor(format, w)).
		Level(parseLevel(level)).
		With().Timestamp().Logger()
}

func outputFor(format string, w io.Writer) io.Writer {
	if format == JSONLoggingFormat {
		return w
	}

	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	case LogLevelPanic:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logger := l.Logger

	if correlationID, ok := ctx.Value(ContextKeyCorrelationID).(string); ok && correlationID != "" {
		logger = logger.With().Str("correlation_id", correlationID).Logger()
	}

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
