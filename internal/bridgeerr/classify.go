package bridgeerr

import (
	"context"
	"errors"
	"strings"
)

// Classify maps an arbitrary error from the vendor SDK, git, or storage
// layer onto the closed Code taxonomy via case-insensitive substring
// matching, the same approach the teacher's http.Error classification uses
// for provider error bodies.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(CodeTimeout, "%s: deadline exceeded", provider)
	}
	if errors.Is(err, context.Canceled) {
		return New(CodeTimeout, "%s: request canceled", provider)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "unauthorized", "authentication", "invalid api key", "401", "403"):
		return New(CodeAuthError, "%s", err.Error())
	case containsAny(msg, "rate limit", "too many requests", "429"):
		return New(CodeRateLimited, "%s", err.Error())
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return New(CodeTimeout, "%s", err.Error())
	case containsAny(msg, "connection refused", "connection reset", "no such host", "network", "eof", "dial tcp"):
		return New(CodeNetworkError, "%s", err.Error())
	case containsAny(msg, "model not found", "model_not_found", "invalid model", "overloaded", "service unavailable", "500", "502", "503", "529"):
		return New(CodeModelError, "%s", err.Error())
	case containsAny(msg, "invalid json", "unmarshal", "malformed", "unexpected end of json", "parse error"):
		return New(CodeParseError, "%s", err.Error())
	case containsAny(msg, "not a git repository", "git error", "no staged changes", "detached head"):
		return New(CodeGitError, "%s", err.Error())
	case containsAny(msg, "no such file or directory", "database", "sqlite", "storage"):
		return New(CodeStorageError, "%s", err.Error())
	case containsAny(msg, "session not found", "no such session"):
		return New(CodeSessionNotFound, "%s", err.Error())
	default:
		return New(CodeUnknownError, "%s", err.Error())
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
