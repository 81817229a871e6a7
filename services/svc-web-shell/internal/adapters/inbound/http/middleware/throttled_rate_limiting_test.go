package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/stretchr/testify/suite"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
)

type RateLimitingTestSuite struct {
	suite.Suite
	log    logger.Logger
	config config.ThrottledRateLimiting
}

func TestRateLimitingTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RateLimitingTestSuite))
}

func (s *RateLimitingTestSuite) SetupTest() {
	s.log = logger.NewTestLogger()
	s.config = config.ThrottledRateLimiting{
		Enabled:           true,
		RequestsPerSecond: 10,
		BurstSize:         5,
		MaxKeys:           100,
		SkipPaths:         []string{"/static/"},
	}
}

func (s *RateLimitingTestSuite) newHandler(cfg config.ThrottledRateLimiting, store throttled.GCRAStoreCtx) http.Handler {
	mw, err := middleware.ThrottledRateLimiting(cfg, store, s.log)
	s.Require().NoError(err)

	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RateLimitingTestSuite) newStore() throttled.GCRAStoreCtx {
	store, err := memstore.NewCtx(100)
	s.Require().NoError(err)

	return store
}

func serve(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	return rec
}

func (s *RateLimitingTestSuite) TestAllowsRequestsUnderLimit() {
	handler := s.newHandler(s.config, s.newStore())

	rec := serve(handler, "/api/views/abc/health", "192.168.1.1:12345")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("6", rec.Header().Get(middleware.RateLimitLimitHeader))
	s.Require().NotEmpty(rec.Header().Get(middleware.RateLimitRemainingHeader))
	s.Require().NotEmpty(rec.Header().Get(middleware.RateLimitResetHeader))
}

func (s *RateLimitingTestSuite) TestBlocksRequestsOverLimit() {
	cfg := s.config
	cfg.RequestsPerSecond = 1
	cfg.BurstSize = 0

	handler := s.newHandler(cfg, s.newStore())

	first := serve(handler, "/api/views/abc/health", "192.168.1.1:12345")
	s.Require().Equal(http.StatusOK, first.Code)

	second := serve(handler, "/api/views/abc/health", "192.168.1.1:12345")
	s.Require().Equal(http.StatusTooManyRequests, second.Code)
	s.Require().Equal("0", second.Header().Get(middleware.RateLimitRemainingHeader))

	retryAfter, err := strconv.Atoi(second.Header().Get(middleware.RetryAfterHeader))
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(retryAfter, 0)
	s.Require().Contains(second.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func (s *RateLimitingTestSuite) TestKeysPerClientIP() {
	cfg := s.config
	cfg.RequestsPerSecond = 1
	cfg.BurstSize = 0

	handler := s.newHandler(cfg, s.newStore())

	s.Require().Equal(http.StatusOK, serve(handler, "/api/views/abc/health", "10.0.0.1:1000").Code)
	s.Require().Equal(http.StatusTooManyRequests, serve(handler, "/api/views/abc/health", "10.0.0.1:2000").Code)
	s.Require().Equal(http.StatusOK, serve(handler, "/api/views/abc/health", "10.0.0.2:1000").Code)
}

func (s *RateLimitingTestSuite) TestSkipPaths() {
	cfg := s.config
	cfg.RequestsPerSecond = 1
	cfg.BurstSize = 0

	handler := s.newHandler(cfg, s.newStore())

	for range 5 {
		rec := serve(handler, "/static/shell.css", "192.168.1.1:12345")

		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Empty(rec.Header().Get(middleware.RateLimitLimitHeader))
	}
}

func (s *RateLimitingTestSuite) TestStoreErrorAllowsRequest() {
	handler := s.newHandler(s.config, &errorStore{})

	rec := serve(handler, "/api/views/abc/health", "192.168.1.1:12345")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Empty(rec.Header().Get(middleware.RateLimitLimitHeader))
}

func (s *RateLimitingTestSuite) TestInvalidQuota() {
	cfg := s.config
	cfg.RequestsPerSecond = 0

	_, err := middleware.ThrottledRateLimiting(cfg, s.newStore(), s.log)
	s.Require().Error(err)
}

type errorStore struct{}

func (s *errorStore) GetWithTime(ctx context.Context, key string) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("store unavailable")
}

func (s *errorStore) SetIfNotExistsWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}

func (s *errorStore) CompareAndSwapWithTTL(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}
