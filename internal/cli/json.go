package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/camdenlow/rex/internal/errors"
)

// Machine mode flag. When true, commands emit JSON envelopes and
// suppress human-friendly decorations.
var machineMode bool

// MachineMode reports whether machine-readable output is enabled.
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for
// machine parsing. All --json output uses this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output. These map to specific
// actions an agent or automation can take.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeHostNotFound   = "HOST_NOT_FOUND"
	ErrCodeSSHTimeout     = "SSH_TIMEOUT"
	ErrCodeSSHAuthFailed  = "SSH_AUTH_FAILED"
	ErrCodeSSHHostKey     = "SSH_HOST_KEY"
	ErrCodeSSHConnFailed  = "SSH_CONNECTION_FAILED"
	ErrCodeInterrupted    = "INTERRUPTED"
	ErrCodeCommandFailed  = "COMMAND_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if kind := errors.KindOf(err); kind != "" {
		return &JSONError{
			Code:       codeForKind(kind),
			Message:    messageOf(err),
			Suggestion: suggestionOf(err),
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// codeForKind maps internal error kinds to machine-readable codes.
func codeForKind(kind string) string {
	switch kind {
	case errors.KindConfigNotFound:
		return ErrCodeConfigNotFound
	case errors.KindConfigParse:
		return ErrCodeConfigInvalid
	case errors.KindUnknownHost:
		return ErrCodeHostNotFound
	case errors.KindConnectTimeout:
		return ErrCodeSSHTimeout
	case errors.KindUnreachable:
		return ErrCodeSSHConnFailed
	case errors.KindAuthFailed:
		return ErrCodeSSHAuthFailed
	case errors.KindHostKey:
		return ErrCodeSSHHostKey
	case errors.KindInterrupted:
		return ErrCodeInterrupted
	case errors.KindSessionClosed, errors.KindExec:
		return ErrCodeCommandFailed
	}
	return ErrCodeUnknown
}

func messageOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func suggestionOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}
