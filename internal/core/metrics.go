// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionsOpened counts connections by transport.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionsOpened = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wyrd_sessions_opened_total",
		Help: "Total number of sessions opened",
	},
	[]string{"transport"},
)

// SessionsActive is the number of authenticated sessions.
var SessionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "wyrd_sessions_active",
		Help: "Number of authenticated sessions",
	},
)

// MessagesDropped counts notifications dropped because an outbox was full.
var MessagesDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wyrd_messages_dropped_total",
		Help: "Total number of notifications dropped on full session outboxes",
	},
	[]string{"transport"},
)

// RegisterMetrics registers core metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SessionsOpened)
	reg.MustRegister(SessionsActive)
	reg.MustRegister(MessagesDropped)
}
