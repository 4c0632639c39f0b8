package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAndExpose(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", "/api/profiles", 200, 5*time.Millisecond)
	m.ObserveGateway("list", "remote", "ok")
	m.ObserveGateway("list", "local", "ok")
	m.ObserveProbe("down")
	m.SetProfilesStored(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/profiles", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayOperations.WithLabelValues("list", "local", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeResults.WithLabelValues("down")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ProfilesStored))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "profilehub_gateway_operations_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.ObserveGateway("save", "local", "error")
		m.ObserveProbe("up")
		m.SetProfilesStored(1)
	})
}
