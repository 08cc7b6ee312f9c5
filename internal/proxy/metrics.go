package proxy

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for proxied CRM traffic.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// Request outcomes as recorded on requestsTotal.
const (
	OutcomeOK           = "ok"
	OutcomeAuthRedirect = "auth_redirect"
	OutcomeConfigError  = "config_error"
	OutcomeUpstreamErr  = "upstream_error"
)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Total proxied requests to the Volkern API",
		}, []string{"method", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "proxy",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream Volkern calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.upstreamLatency)
	return m
}

func (m *Metrics) ObserveRequest(method, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) ObserveUpstreamLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(method).Observe(seconds)
}
