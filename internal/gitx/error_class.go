// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

// ClassifyError maps process-level failures into broad actionable categories.
// git's own stderr is never inspected, so only transport failures and
// panics absorbed by the engine reach this function.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, ErrGitNotFound) {
		return "not_found"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return "timeout"
	case containsAny(msg, "no such file or directory", "cannot find the path", "not a directory"):
		return "missing"
	case containsAny(msg, "permission denied", "access is denied"):
		return "permission"
	case containsAny(msg, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}

func containsAny(msg string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
