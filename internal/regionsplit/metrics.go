// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package regionsplit

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the splits counter.
const (
	OutcomeCommitted  = "committed"
	OutcomeStale      = "stale"
	OutcomeGeneration = "generation_error"
	OutcomeValidation = "validation_error"
	OutcomeError      = "error"
)

// Splits counts finished split runs by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Splits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wyrd_region_splits_total",
		Help: "Total number of region split runs by outcome",
	},
	[]string{"outcome"},
)

// StageDuration is the time spent in each split stage.
var StageDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "wyrd_region_split_stage_duration_seconds",
		Help:    "Region split stage duration in seconds",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	},
	[]string{"stage"},
)

// InternalAttempts is the number of internal-connection proposals needed per run.
var InternalAttempts = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "wyrd_region_split_internal_attempts",
		Help:    "Internal connection proposals requested per split",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// RegisterMetrics registers region split metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Splits)
	reg.MustRegister(StageDuration)
	reg.MustRegister(InternalAttempts)
}

// OutcomeFor classifies a split error.
func OutcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeCommitted
	case IsStale(err):
		return OutcomeStale
	case errors.Is(err, ErrGeneration):
		return OutcomeGeneration
	case errors.Is(err, ErrValidation):
		return OutcomeValidation
	default:
		return OutcomeError
	}
}

func observeStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
