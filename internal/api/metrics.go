package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are kept on their own registry so several clients (and tests) can
// coexist in one process. A nil *Metrics records nothing.
type Metrics struct {
	Registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessctl_requests_total",
			Help: "API requests by method and response code (0 = no response)",
		}, []string{"method", "code"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessctl_token_refresh_total",
			Help: "Access token refresh calls by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.refreshes)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(method string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}
