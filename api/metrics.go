package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess      = "success"
	outcomeUnauthorized = "unauthorized"
	outcomeDomain       = "domain"
	outcomeNetwork      = "network"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithRegisterer records request outcomes and latencies on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		if reg == nil {
			return
		}
		m := &metrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "regulus",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "API requests by method and outcome.",
			}, []string{"method", "outcome"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "regulus",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request latency by method.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		reg.MustRegister(m.requests, m.duration)
		c.metrics = m
	}
}

func (m *metrics) observe(method, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
