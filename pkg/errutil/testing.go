// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that the deepest oops code in err is code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	_, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, Code(err), "error: %v", err)
}

// AssertErrorContext asserts that the oops context of err, merged across
// wrapping layers, holds key with value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// AssertRoomError asserts a coded error about roomID, the shape every world
// and split failure takes.
func AssertRoomError(t *testing.T, err error, code, roomID string) {
	t.Helper()
	AssertErrorCode(t, err, code)
	AssertErrorContext(t, err, "room_id", roomID)
}
