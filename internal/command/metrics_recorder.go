// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import "time"

// MetricsRecorder tracks command execution metrics for a single dispatch.
type MetricsRecorder struct {
	startTime time.Time
	action    string
}

// NewMetricsRecorder initializes a recorder for a single dispatch.
func NewMetricsRecorder(action string) *MetricsRecorder {
	return &MetricsRecorder{startTime: time.Now(), action: action}
}

// Record writes the collected metrics using the outcome of the execution.
func (m *MetricsRecorder) Record(err error) {
	RecordCommandExecution(m.action, StatusFor(err))
	RecordCommandDuration(m.action, time.Since(m.startTime))
}
