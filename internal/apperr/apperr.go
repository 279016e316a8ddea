// Package apperr defines the typed failure taxonomy shared by every
// workflow operation. Codes are string-based for debuggability and natural
// JSON serialization.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	// CodeUnauthorized indicates a role or ownership check failed.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeNotFound indicates a referenced project, reviewer slot, milestone
	// or issue does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInvalidState indicates the operation is not valid for the current
	// status of the target.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeConflictingWrite indicates a concurrent aggregate mutation lost a
	// race after bounded retries.
	CodeConflictingWrite Code = "CONFLICTING_WRITE"

	// CodeValidation indicates malformed input.
	CodeValidation Code = "VALIDATION_ERROR"
)

// Error carries the failure code plus enough context (operation, project)
// for the caller to render a message.
type Error struct {
	Code      Code
	Op        string
	ProjectID int64
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Op, e.Msg)
	if e.ProjectID != 0 {
		s = fmt.Sprintf("%s (project %d)", s, e.ProjectID)
	}
	if e.Err != nil {
		s = fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by code so sentinel-style comparisons work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, op string, projectID int64, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, ProjectID: projectID, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, op string, projectID int64, err error, msg string) *Error {
	return &Error{Code: code, Op: op, ProjectID: projectID, Msg: msg, Err: err}
}

// CodeOf extracts the taxonomy code from err, or "" if err is not an
// apperr.Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
