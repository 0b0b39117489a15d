package analysis

import (
	"errors"
	"fmt"
)

// Code identifies one failure class of the analysis pipeline.
type Code string

const (
	// CodeHTTPError is any non-2xx response that is not a timeout.
	CodeHTTPError Code = "HTTP_ERROR"
	// CodeTimeout covers aborted requests, 504s, exhausted poll budgets and
	// caller cancellation.
	CodeTimeout Code = "TIMEOUT"
	// CodeInvalidResponse is an empty or unparseable JSON body.
	CodeInvalidResponse Code = "INVALID_RESPONSE"
	// CodeInvalidArgument means the caller supplied no usable document reference.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNoTaskID means submission succeeded but neither a task identifier
	// nor an immediate result could be extracted.
	CodeNoTaskID Code = "NO_TASK_ID"
	// CodeNoResultURL means the task succeeded without an archive reference.
	CodeNoResultURL Code = "NO_RESULT_URL"
	// CodeTaskFailed means the remote service explicitly reported failure.
	CodeTaskFailed Code = "TASK_FAILED"
	// CodeArchiveError means the result archive was unreadable or had no JSON entry.
	CodeArchiveError Code = "ARCHIVE_ERROR"
	// CodeEmptyAnalysis means the archive parsed but yielded no text or pages.
	CodeEmptyAnalysis Code = "EMPTY_ANALYSIS"
)

// Error is a typed analysis failure. It carries enough context (endpoint,
// status, remote hint) for the caller to log without re-deriving it.
type Error struct {
	Code      Code
	Message   string
	Endpoint  string
	Status    int
	Hint      string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("analysis %s: %s", e.Code, e.Message)
	if e.Endpoint != "" {
		msg += fmt.Sprintf(" (endpoint %s)", e.Endpoint)
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf(": %s", e.Hint)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError returns the *Error wrapped anywhere in err's chain.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err carries the given analysis failure code.
func IsCode(err error, code Code) bool {
	ae, ok := AsError(err)
	return ok && ae.Code == code
}
