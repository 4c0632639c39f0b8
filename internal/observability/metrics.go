// internal/observability/metrics.go
//
// Package observability 提供 profile 服務與 client gateway 的 Prometheus 指標。
// collector 註冊在注入的 registry 上，每個伺服器實例（與每個測試）各自一份。
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "profilehub"

// Metrics 保存所有 collector；nil 接收者的方法皆為 no-op。
type Metrics struct {
	// RequestsTotal：HTTP 請求數。標籤 method, route, status。
	RequestsTotal *prometheus.CounterVec

	// RequestDuration：HTTP 處理耗時。標籤 method, route。
	RequestDuration *prometheus.HistogramVec

	// ProfilesStored：記憶體中目前的 profile 筆數。
	ProfilesStored prometheus.Gauge

	// GatewayOperations：gateway 呼叫數。標籤 op, backend, outcome。
	GatewayOperations *prometheus.CounterVec

	// ProbeResults：可用性探測結果。標籤 result（up, down, cached_up, cached_down）。
	ProbeResults *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New 建立所有 collector 並註冊到 reg；重複註冊時 panic（同 promauto）。
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ProfilesStored: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "profiles_stored",
			Help:      "Number of profiles currently held in memory",
		}),
		GatewayOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "operations_total",
			Help:      "Gateway operations by op, serving backend and outcome",
		}, []string{"op", "backend", "outcome"}),
		ProbeResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "probe",
			Name:      "results_total",
			Help:      "Availability probe results",
		}, []string{"result"}),
		gatherer: reg,
	}
}

// NewUnregistered 回傳使用私有 registry 的 Metrics，
// 供同一行程內可能建立多次的元件使用。
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler 以 Prometheus 文字格式輸出 registry。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest 記錄一個完成的 HTTP 請求。
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveGateway 記錄一次 gateway 呼叫。
func (m *Metrics) ObserveGateway(op, backend, outcome string) {
	if m == nil {
		return
	}
	m.GatewayOperations.WithLabelValues(op, backend, outcome).Inc()
}

// ObserveProbe 記錄一次探測結果。
func (m *Metrics) ObserveProbe(result string) {
	if m == nil {
		return
	}
	m.ProbeResults.WithLabelValues(result).Inc()
}

// SetProfilesStored 更新筆數 gauge。
func (m *Metrics) SetProfilesStored(n int) {
	if m == nil {
		return
	}
	m.ProfilesStored.Set(float64(n))
}
