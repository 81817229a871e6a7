package middleware_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/middleware"
	"github.com/stretchr/testify/suite"
)

type SecurityHeadersTestSuite struct {
	suite.Suite
}

func TestSecurityHeadersTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SecurityHeadersTestSuite))
}

func (s *SecurityHeadersTestSuite) TestSecurityHeaders() {
	cases := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "X-Content-Type-Options", header: "X-Content-Type-Options", expected: "nosniff"},
		{name: "X-Frame-Options", header: "X-Frame-Options", expected: "DENY"},
		{name: "Strict-Transport-Security", header: "Strict-Transport-Security", expected: "max-age=31536000; includeSubDomains"},
		{name: "Content-Security-Policy", header: "Content-Security-Policy", expected: middleware.ShellContentSecurityPolicy},
		{name: "Referrer-Policy", header: "Referrer-Policy", expected: "strict-origin-when-cross-origin"},
		{name: "Permissions-Policy", header: "Permissions-Policy", expected: "camera=(), microphone=(), geolocation=()"},
	}

	handler := middleware.SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			s.Require().Equal(tc.expected, rec.Header().Get(tc.header))
		})
	}
}

func (s *SecurityHeadersTestSuite) TestPolicyAllowsSameOriginSockets() {
	s.Contains(middleware.ShellContentSecurityPolicy, "connect-src 'self' ws: wss:")
	s.Contains(middleware.ShellContentSecurityPolicy, "script-src 'self'")
}

type CORSTestSuite struct {
	suite.Suite
}

func TestCORSTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CORSTestSuite))
}

func (s *CORSTestSuite) TestCORS_AllowAll() {
	handler := middleware.CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	s.Require().Equal("https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Require().Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	s.Require().NotEmpty(rec.Header().Get("Access-Control-Allow-Headers"))
	s.Require().Contains(rec.Header().Values("Vary"), "Origin")
}

func (s *CORSTestSuite) TestCORS_SpecificOrigin() {
	handler := middleware.CORS([]string{"https://allowed.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name          string
		origin        string
		expectAllowed bool
	}{
		{name: "allowed origin", origin: "https://allowed.com", expectAllowed: true},
		{name: "disallowed origin", origin: "https://notallowed.com", expectAllowed: false},
		{name: "same origin request", origin: "", expectAllowed: false},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			s.Require().Equal(http.StatusOK, rec.Code)

			if tc.expectAllowed {
				s.Require().Equal(tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				s.Require().Empty(rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func (s *CORSTestSuite) TestCORS_Preflight() {
	handlerCalled := false
	handler := middleware.CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/views/x", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().False(handlerCalled)
}

type RequestTrackingTestSuite struct {
	suite.Suite
}

func TestRequestTrackingTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RequestTrackingTestSuite))
}

func (s *RequestTrackingTestSuite) TestGeneratesIDs() {
	var capturedCtx context.Context
	handler := middleware.RequestTracking()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Require().NotEmpty(rec.Header().Get(middleware.RequestIDHeader))
	s.Require().Equal(rec.Header().Get(middleware.RequestIDHeader), middleware.GetRequestID(capturedCtx))
	s.Require().Equal(rec.Header().Get(middleware.CorrelationIDHeader), middleware.GetCorrelationID(capturedCtx))
	s.Require().Equal(middleware.GetRequestID(capturedCtx), capturedCtx.Value(logger.ContextKeyRequestID))
}

func (s *RequestTrackingTestSuite) TestKeepsIncomingIDs() {
	var capturedCtx context.Context
	handler := middleware.RequestTracking()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-456")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Require().Equal("req-123", rec.Header().Get(middleware.RequestIDHeader))
	s.Require().Equal("req-123", middleware.GetRequestID(capturedCtx))
	s.Require().Equal("corr-456", middleware.GetCorrelationID(capturedCtx))
}

func (s *RequestTrackingTestSuite) TestEmptyContext() {
	s.Require().Empty(middleware.GetRequestID(context.Background()))
	s.Require().Empty(middleware.GetCorrelationID(context.Background()))
}

type RecoveryTestSuite struct {
	suite.Suite
}

func TestRecoveryTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RecoveryTestSuite))
}

func (s *RecoveryTestSuite) TestRecoversPanics() {
	cases := []struct {
		name  string
		value any
	}{
		{name: "string", value: "boom"},
		{name: "error", value: errors.New("boom")},
		{name: "other", value: 42},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			buf := &bytes.Buffer{}
			log := logger.NewBufferedTestLogger(buf)

			handler := middleware.Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(tc.value)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			s.Require().Equal(http.StatusInternalServerError, rec.Code)

			var body middleware.ErrorResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			s.Equal("INTERNAL_ERROR", body.Code)
			s.Contains(buf.String(), "panic recovered")
		})
	}
}

func (s *RecoveryTestSuite) TestAbortHandlerPropagates() {
	handler := middleware.Recovery(logger.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	s.Panics(func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

type AccessLogTestSuite struct {
	suite.Suite
}

func TestAccessLogTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AccessLogTestSuite))
}

func (s *AccessLogTestSuite) TestAccessLog() {
	cases := []struct {
		name            string
		path            string
		logHealthChecks bool
		status          int
		expectLogged    bool
		expectedLevel   string
	}{
		{name: "page", path: "/dashboard?x=1", status: http.StatusOK, expectLogged: true, expectedLevel: "info"},
		{name: "client error", path: "/customers", status: http.StatusNotFound, expectLogged: true, expectedLevel: "warn"},
		{name: "server error", path: "/", status: http.StatusInternalServerError, expectLogged: true, expectedLevel: "error"},
		{name: "health check filtered", path: "/admin/readiness", status: http.StatusOK, expectLogged: false},
		{name: "health check kept", path: "/admin/liveness", logHealthChecks: true, status: http.StatusOK, expectLogged: true, expectedLevel: "info"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			buf := &bytes.Buffer{}
			log := logger.NewBufferedTestLogger(buf)

			inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})

			handler := middleware.NewHealthCheckFilter(tc.logHealthChecks).Middleware(
				middleware.NewAccessLogger(log, true).Middleware(inner),
			)

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			if !tc.expectLogged {
				s.Empty(buf.String())

				return
			}

			var entry map[string]any
			s.Require().NoError(json.Unmarshal(buf.Bytes(), &entry))
			s.Equal(tc.expectedLevel, entry["level"])
			s.InDelta(float64(tc.status), entry["status"], 0)
		})
	}
}

type ResponseWriterTestSuite struct {
	suite.Suite
}

func TestResponseWriterTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ResponseWriterTestSuite))
}

func (s *ResponseWriterTestSuite) TestRecordsStatusAndBytes() {
	rec := httptest.NewRecorder()
	w := middleware.NewFlushableResponseWriter(rec)

	s.Equal(http.StatusOK, w.StatusCode())

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusTeapot)
	_, err := w.Write([]byte("hello"))
	s.Require().NoError(err)

	s.Equal(http.StatusAccepted, w.StatusCode())
	s.Equal(uint64(5), w.BytesWritten())
	s.Equal(http.StatusAccepted, rec.Code)
}

func (s *ResponseWriterTestSuite) TestHijackReportsSwitchingProtocols() {
	w := middleware.NewFlushableResponseWriter(&hijackableRecorder{ResponseRecorder: httptest.NewRecorder()})

	conn, _, err := w.Hijack()
	s.Require().NoError(err)
	defer conn.Close()

	s.Equal(http.StatusSwitchingProtocols, w.StatusCode())
}

func (s *ResponseWriterTestSuite) TestHijackUnsupported() {
	w := middleware.NewFlushableResponseWriter(httptest.NewRecorder())

	_, _, err := w.Hijack()
	s.Require().Error(err)
	s.Equal(http.StatusOK, w.StatusCode())
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	_ = client.Close()

	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}
