// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes shared by sessions and authenticators.
const (
	CodeProtocolError      = "PROTOCOL_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNameTaken          = "NAME_TAKEN"
	CodeInvalidName        = "INVALID_NAME"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeSessionClosed      = "SESSION_CLOSED"
)

// ErrSessionClosed is returned when submitting to a session that has ended.
var ErrSessionClosed = errors.New("session closed")

// ErrProtocol creates an error for a malformed client line.
func ErrProtocol(line, usage string) error {
	return oops.Code(CodeProtocolError).
		With("line", line).
		With("usage", usage).
		Errorf("malformed input")
}

// authFailureMessage maps authentication errors to player-facing text.
func authFailureMessage(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}
	switch oopsErr.Code() {
	case CodeInvalidCredentials:
		return "Invalid name or password."
	case CodeNameTaken:
		return "That name is already taken."
	case CodeAccountLocked:
		return "Too many failed attempts. Try again later."
	case CodeWeakPassword:
		return "That password is too short."
	case CodeInvalidName:
		if reason, ok := oopsErr.Context()["reason"].(string); ok && reason != "" {
			return "Invalid name: " + reason + "."
		}
		return "Invalid name."
	case CodeProtocolError:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "I don't understand that."
	default:
		return "Something went wrong. Try again."
	}
}
