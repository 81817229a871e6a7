package middleware

import (
	"net/http"
	"time"

	"github.com/architeacher/erp-shell/pkg/logger"
)

type AccessLogger struct {
	logger             logger.Logger
	includeQueryParams bool
}

func NewAccessLogger(log logger.Logger, includeQueryParams bool) *AccessLogger {
	return &AccessLogger{
		logger:             log,
		includeQueryParams: includeQueryParams,
	}
}

func (a *AccessLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ShouldSkipAccessLog(r.Context()) {
			next.ServeHTTP(w, r)

			return
		}

		start := time.Now()
		wrapped := NewFlushableResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		reqLogger := a.logger.WithContext(r.Context()).
			With().
			Str("component", "http").
			Logger()

		event := reqLogger.Info()
		if wrapped.StatusCode() >= http.StatusInternalServerError {
			event = reqLogger.Error()
		} else if wrapped.StatusCode() >= http.StatusBadRequest {
			event = reqLogger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Str("proto", r.Proto).
			Int("status", wrapped.StatusCode()).
			Uint64("bytes", wrapped.BytesWritten()).
			Int64("duration_ms", duration.Milliseconds())

		if a.includeQueryParams && r.URL.RawQuery != "" {
			event.Str("query", r.URL.RawQuery)
		}

		if referer := r.Referer(); referer != "" {
			event.Str("referer", referer)
		}

		event.Send()
	})
}
