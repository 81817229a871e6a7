package shared_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/shared"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		status       int
		data         any
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]string{"status": "ok"},
			expectedBody: `{"status":"ok"}`,
		},
		{
			name:         "empty list",
			status:       http.StatusOK,
			data:         []string{},
			expectedBody: `[]`,
		},
		{
			name:         "error status",
			status:       http.StatusServiceUnavailable,
			data:         map[string]string{"status": "down"},
			expectedBody: `{"status":"down"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			shared.WriteJSON(rec, tc.status, tc.data)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, shared.ContentTypeJSON, rec.Header().Get(shared.HeaderContentType))
			require.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func TestSetNoStore(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	shared.SetNoStore(rec)

	require.Equal(t, "no-store", rec.Header().Get(shared.HeaderCacheControl))
}
