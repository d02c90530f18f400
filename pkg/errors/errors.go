package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error carrying the remote status when one exists.
// Status is zero for failures that never produced an HTTP response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Subject string `json:"subject,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their sentinel.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Remote API failures.
var (
	ErrTransport    = New("TRANSPORT_ERROR", 0, "remote api unreachable")
	ErrParse        = New("PARSE_ERROR", 0, "unexpected response shape")
	ErrRefused      = New("REQUEST_REFUSED", http.StatusBadRequest, "request refused")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")
)

// Stage scheduling failures. All of them are recovered locally except the duplicate name.
var (
	ErrMissingFields      = New("MISSING_FIELDS", http.StatusBadRequest, "start date, end date and at least one evaluator are required")
	ErrMalformedDate      = New("MALFORMED_DATE", http.StatusBadRequest, "dates must use the DD-MM-YYYY format")
	ErrDateInPast         = New("DATE_IN_PAST", http.StatusBadRequest, "dates must not be earlier than today")
	ErrInvertedRange      = New("INVERTED_RANGE", http.StatusBadRequest, "end date cannot be earlier than start date")
	ErrPanelSizeViolation = New("PANEL_SIZE_VIOLATION", http.StatusBadRequest, "an evaluation panel needs between one and three distinct evaluators")
	ErrInvalidStageName   = New("INVALID_STAGE_NAME", http.StatusBadRequest, "unknown stage name")
	ErrPanelLimitReached  = New("PANEL_LIMIT_REACHED", http.StatusBadRequest, "only three evaluators can be selected")
	ErrDuplicateStageName = New("DUPLICATE_STAGE_NAME", http.StatusConflict, "stage already exists")
)

// DuplicateStageName returns the conflict error for a stage name that is already persisted.
// The name is kept in Subject so callers can render it.
func DuplicateStageName(name string) *Error {
	err := Clone(ErrDuplicateStageName, fmt.Sprintf("the stage %q already exists", name))
	err.Subject = name
	return err
}

// FromStatus maps a non-success HTTP status to the matching sentinel.
// message overrides the default text when non-empty.
func FromStatus(status int, message string) *Error {
	var base *Error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusConflict:
		base = ErrConflict
	case status >= http.StatusInternalServerError:
		base = ErrInternal
	default:
		base = ErrRefused
	}
	out := Clone(base, message)
	out.Status = status
	return out
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
