package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates service context with default values", func(t *testing.T) {
		t.Parallel()

		serviceCtx := New()

		require.NotNil(t, serviceCtx)
		require.NotNil(t, serviceCtx.shutdownChannel)
		require.Nil(t, serviceCtx.deps)
		require.Nil(t, serviceCtx.serverReady)
		require.Nil(t, serviceCtx.PublicAddr())
	})

	t.Run("creates service context with options", func(t *testing.T) {
		t.Parallel()

		ch := make(chan os.Signal, 1)
		serviceCtx := New(
			WithServiceTermination(ch),
			WithWaitingForServer(),
			WithDependencyOptions(WithMetrics()),
		)

		require.NotNil(t, serviceCtx)
		require.Equal(t, ch, serviceCtx.shutdownChannel)
		require.NotNil(t, serviceCtx.serverReady)
		require.Len(t, serviceCtx.depOpts, 1)
	})
}

func setServiceEnv(t *testing.T, backendURL string) {
	t.Helper()

	t.Setenv("BACKEND_URL", backendURL)
	t.Setenv("REACT_APP_BACKEND_URL", "")
	t.Setenv("HTTP_SERVER_HOST", "127.0.0.1")
	t.Setenv("HTTP_SERVER_PORT", "0")
	t.Setenv("ADMIN_HTTP_SERVER_HOST", "127.0.0.1")
	t.Setenv("ADMIN_HTTP_SERVER_PORT", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE_PATH", "")
	t.Setenv("TRACES_ENABLED", "false")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "5s")
}

func startService(t *testing.T) (*ServiceCtx, chan os.Signal, <-chan error) {
	t.Helper()

	ch := make(chan os.Signal, 1)
	srv := New(WithServiceTermination(ch), WithWaitingForServer())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	srv.WaitForServer()
	require.NotNil(t, srv.PublicAddr(), "service did not start")

	return srv, ch, errCh
}

func stopService(t *testing.T, ch chan os.Signal, errCh <-chan error) {
	t.Helper()

	ch <- syscall.SIGTERM

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("service did not shut down")
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func mountedViews(t *testing.T, srv *ServiceCtx) int {
	t.Helper()

	status, body := get(t, "http://"+srv.AdminAddr().String()+"/admin/views")
	require.Equal(t, http.StatusOK, status)

	var views struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &views))

	return views.Count
}

func TestRun_ServesShellAndAdmin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	setServiceEnv(t, backend.URL)

	srv, ch, errCh := startService(t)

	status, body := get(t, "http://"+srv.PublicAddr().String()+"/dashboard")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Welcome to HAÜSA ERP - Your construction management system")

	status, _ = get(t, "http://"+srv.PublicAddr().String()+"/customers")
	require.Equal(t, http.StatusNotFound, status)

	require.NotNil(t, srv.AdminAddr())

	status, _ = get(t, "http://"+srv.AdminAddr().String()+"/admin/liveness")
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		status, body := get(t, "http://"+srv.AdminAddr().String()+"/metrics")

		return status == http.StatusOK && strings.Contains(body, "erp_shell_http_requests_total")
	}, waitFor, 20*time.Millisecond)

	require.Equal(t, 1, mountedViews(t, srv))

	stopService(t, ch, errCh)
}

func TestRun_SweepsIdleViews(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	setServiceEnv(t, backend.URL)
	t.Setenv("VIEWS_SWEEP_INTERVAL", "20ms")
	t.Setenv("VIEWS_IDLE_TTL", "50ms")

	srv, ch, errCh := startService(t)

	status, _ := get(t, "http://"+srv.PublicAddr().String()+"/")
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		return mountedViews(t, srv) == 0
	}, waitFor, 20*time.Millisecond)

	stopService(t, ch, errCh)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	setServiceEnv(t, "")
	t.Setenv("VIEWS_IDLE_TTL", "0s")

	srv := New(WithWaitingForServer())

	err := srv.Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "initializing configuration")

	srv.WaitForServer()
	require.Nil(t, srv.PublicAddr())
}

func TestWithBackendClient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		backend       config.Backend
		expectedURL   string
		expectWarning bool
	}{
		{name: "primary variable", backend: config.Backend{BaseURL: "http://erp:8001"}, expectedURL: "http://erp:8001"},
		{name: "legacy variable", backend: config.Backend{LegacyBaseURL: "http://legacy:8001"}, expectedURL: "http://legacy:8001"},
		{name: "primary wins", backend: config.Backend{BaseURL: "http://erp:8001", LegacyBaseURL: "http://legacy:8001"}, expectedURL: "http://erp:8001"},
		{name: "not configured", backend: config.Backend{}, expectedURL: "", expectWarning: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			deps := &dependencies{
				config:       &config.ServiceConfig{Backend: tc.backend},
				cleanupFuncs: make(map[string]func(ctx context.Context) error),
			}
			deps.infra.logger = logger.NewBufferedTestLogger(buf)

			require.NoError(t, WithBackendClient()(deps))

			client, ok := deps.services.backend.(interface{ BaseURL() string })
			require.True(t, ok)
			require.Equal(t, tc.expectedURL, client.BaseURL())

			if tc.expectWarning {
				require.Contains(t, buf.String(), "BACKEND_URL is not set")
			} else {
				require.Empty(t, buf.String())
			}
		})
	}
}
