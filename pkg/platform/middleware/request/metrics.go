package request

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP collectors with reg, or the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		Duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carebridge_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status class.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Observe(method, route, status string, d time.Duration) {
	m.Duration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
