package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"userdir/pkg/controller"
	"userdir/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWithMetrics_LabelsByPattern(t *testing.T) {
	hist, err := metrics.NewRequestDuration(prometheus.NewRegistry())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{userName}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := controller.WithMetrics(hist)(mux)

	for _, target := range []string{"/users/alice", "/users/bob", "/nowhere"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	// one series per distinct label set
	require.Equal(t, 2, testutil.CollectAndCount(hist))
}
