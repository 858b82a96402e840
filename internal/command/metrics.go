// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Status constants for command execution metrics.
const (
	StatusSuccess          = "success"
	StatusError            = "error"
	StatusProtocolError    = "protocol_error"
	StatusNoSuchConnection = "no_such_connection"
)

// CommandExecutions is the counter for command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wyrd_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"action", "status"},
)

// CommandDuration is the histogram for command execution duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "wyrd_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"action"},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
}

// RecordCommandExecution increments the command execution counter.
func RecordCommandExecution(action, status string) {
	CommandExecutions.WithLabelValues(action, status).Inc()
}

// RecordCommandDuration records how long an action took.
func RecordCommandDuration(action string, duration time.Duration) {
	CommandDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// StatusFor classifies an execution error for metrics.
func StatusFor(err error) string {
	if err == nil {
		return StatusSuccess
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		switch oopsErr.Code() {
		case CodeProtocolError:
			return StatusProtocolError
		case CodeNoSuchConnection:
			return StatusNoSuchConnection
		}
	}
	return StatusError
}
