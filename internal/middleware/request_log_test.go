package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeLabels(t *testing.T) map[string]bool {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(metrics.HTTPRequestDuration))
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]bool{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "route" {
					out[lp.GetValue()] = true
				}
			}
		}
	}
	return out
}

func TestRequestLog_RouteLabelUsesPatternOrUnmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestLog(logger.NewTest(t)))
	r.Get("/animals/{animalID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/animals/a-1", "/animals/a-2", "/wp-login.php", "/.env"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	labels := routeLabels(t)
	assert.True(t, labels["/animals/{animalID}"])
	assert.True(t, labels[unmatchedRoute])
	// ni ids ni paths de scanners llegan al label
	for _, raw := range []string{"/animals/a-1", "/animals/a-2", "/wp-login.php", "/.env"} {
		assert.False(t, labels[raw], raw)
	}
}

func TestRouteLabel_WithoutRouteContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x/y", nil)
	require.Equal(t, unmatchedRoute, routeLabel(req))
}
