// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package generation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Requests counts calls to the generation endpoint by stage and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Requests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wyrd_generation_requests_total",
		Help: "Total number of generation service requests",
	},
	[]string{"stage", "status"},
)

// RequestDuration is the latency of generation requests.
var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "wyrd_generation_request_duration_seconds",
		Help:    "Generation service request duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	},
	[]string{"stage"},
)

// RegisterMetrics registers generation metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Requests)
	reg.MustRegister(RequestDuration)
}

// RecordRequest records one request outcome.
func RecordRequest(stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Requests.WithLabelValues(stage, status).Inc()
	RequestDuration.WithLabelValues(stage).Observe(d.Seconds())
}
