// Package bridgeerr implements the closed error taxonomy reviewbridge uses
// to report failures across the tool-call surface and the CLI. It mirrors
// the teacher's adapter/llm/http typed-error-plus-classifier pattern,
// generalized from HTTP status codes to vendor-SDK error strings.
package bridgeerr

import "fmt"

// Code is the closed set of error codes reviewbridge ever returns.
type Code string

const (
	CodeTimeout          Code = "CODEX_TIMEOUT"
	CodeParseError       Code = "CODEX_PARSE_ERROR"
	CodeGitError         Code = "GIT_ERROR"
	CodeNoStagedChanges  Code = "NO_STAGED_CHANGES"
	CodeConfigError      Code = "CONFIG_ERROR"
	CodeStorageError     Code = "STORAGE_ERROR"
	CodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	CodeAuthError        Code = "AUTH_ERROR"
	CodeModelError       Code = "MODEL_ERROR"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeNetworkError     Code = "NETWORK_ERROR"
	CodeUnknownError     Code = "UNKNOWN_ERROR"
)

// Error is the error type returned across every reviewbridge boundary.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is implements error equality checking for errors.Is, comparing Code only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the reviewer client should attempt the single
// permitted retry for this error (CODEX_TIMEOUT and RATE_LIMITED only; the
// malformed-JSON single retry at the reviewerclient layer is driven by
// CodeParseError, kept separate from transport retryability).
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeTimeout, CodeRateLimited, CodeNetworkError:
		return true
	default:
		return false
	}
}

// New builds an *Error for a given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
