package public_test

import (
	"net/http"
	"testing"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/public"
	"github.com/stretchr/testify/require"
)

func TestGetOpenAPI(t *testing.T) {
	t.Parallel()

	doc, err := public.GetOpenAPI()
	require.NoError(t, err)

	cases := []struct {
		path   string
		method string
	}{
		{path: "/api/views/{viewId}", method: http.MethodDelete},
		{path: "/api/views/{viewId}/health", method: http.MethodGet},
		{path: "/api/views/{viewId}/events", method: http.MethodGet},
	}

	require.Equal(t, len(cases), doc.Paths.Len())

	for _, tc := range cases {
		item := doc.Paths.Find(tc.path)
		require.NotNil(t, item, tc.path)
		require.NotNil(t, item.GetOperation(tc.method), "%s %s", tc.method, tc.path)
	}
}
