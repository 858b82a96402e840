// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package regionsplit

// State is the stage a split run has reached.
type State int

// Split states. A run moves forward through them and ends in Committed or
// Aborted.
const (
	Idle State = iota
	Proposing
	ConnectingInternal
	Distributing
	Validated
	Applying
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Proposing:
		return "proposing"
	case ConnectingInternal:
		return "connecting_internal"
	case Distributing:
		return "distributing"
	case Validated:
		return "validated"
	case Applying:
		return "applying"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
