package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds categorize failures so callers can branch on the category
// instead of inspecting message text.
const (
	KindConfigNotFound = "CONFIG_NOT_FOUND" // SSH config file missing
	KindConfigParse    = "CONFIG_PARSE"     // SSH config or proxy file unparseable
	KindUnknownHost    = "UNKNOWN_HOST"     // alias not present in the config
	KindConnectTimeout = "CONNECT_TIMEOUT"  // dial or handshake exceeded the timeout
	KindUnreachable    = "UNREACHABLE"      // refused, no route, DNS failure
	KindAuthFailed     = "AUTH_FAILED"      // remote rejected all offered credentials
	KindHostKey        = "HOST_KEY"         // known_hosts verification failed
	KindSessionClosed  = "SESSION_CLOSED"   // Run called on a closed session
	KindInterrupted    = "INTERRUPTED"      // session closed out from under a running command
	KindExec           = "EXEC"             // remote execution plumbing failed
)

// Error is a structured error with a kind, a human message, and an
// actionable suggestion. Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Kind       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given kind, message, and suggestion.
func New(kind, message, suggestion string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a kind, message, and suggestion.
func Wrap(err error, kind, message, suggestion string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a structured Error with the given kind.
func IsKind(err error, kind string) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of a structured error, or "" for nil and
// unstructured errors.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ExitError carries a remote command's exit status up through cobra's
// RunE chain so main can exit with the same code.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an error chain.
// Returns (code, true) if the chain contains an ExitError.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
