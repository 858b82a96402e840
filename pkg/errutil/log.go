// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package errutil

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/oops"
)

// liftedKeys are oops context keys logged as top-level attributes, matching
// the keys the session and split code log directly.
var liftedKeys = []string{"room_id", "player_id", "session_id", "stage"}

// LogError logs err at error level with its code and context.
func LogError(logger *slog.Logger, msg string, err error) {
	LogErrorContext(context.Background(), logger, msg, err)
}

// LogErrorContext is LogError carrying ctx to the handler, which adds trace
// and span ids when ctx has a span.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(ctx, msg, Attrs(err)...)
}

// Attrs returns the log attributes for err. Oops errors yield "error",
// "code", any lifted keys, and the remaining context under "context".
func Attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	ctx := oopsErr.Context()
	rest := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if !slices.Contains(liftedKeys, k) {
			rest[k] = v
		}
	}
	for _, key := range liftedKeys {
		if v, ok := ctx[key]; ok {
			attrs = append(attrs, key, v)
		}
	}
	if len(rest) > 0 {
		attrs = append(attrs, "context", rest)
	}
	return attrs
}
