// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package regionsplit

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/world"
)

// Error codes for aborted splits. Stale targets keep the world package code
// (world.CodeStaleTarget).
const (
	CodeGenerationError = "GENERATION_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
)

var (
	// ErrGeneration indicates the generation service failed or timed out.
	ErrGeneration = errors.New("generation failed")
	// ErrValidation indicates a stage output failed structural checks.
	ErrValidation = errors.New("stage output rejected")
)

func errGeneration(stage, roomID string, cause error) error {
	return oops.Code(CodeGenerationError).
		With("stage", stage).
		With("room_id", roomID).
		Wrapf(fmt.Errorf("%w: %w", ErrGeneration, cause), "%s", stage)
}

func errValidationCause(stage, roomID string, cause error) error {
	return oops.Code(CodeValidationError).
		With("stage", stage).
		With("room_id", roomID).
		Wrapf(fmt.Errorf("%w: %w", ErrValidation, cause), "%s", stage)
}

// IsGenerationError reports whether err aborted a split because the
// generation service failed.
func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsValidationError reports whether err aborted a split because a stage
// output was rejected.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStale reports whether err means the target changed before apply.
func IsStale(err error) bool {
	return world.IsStale(err)
}
