package errors

import (
	"fmt"
	"net/http"
)

// Kind tags an application error with the category that decides how it is rendered.
type Kind int

const (
	// KindTechnical is anything the caller cannot fix: store outages, programming defects.
	KindTechnical Kind = iota
	// KindValidation is malformed or out-of-range input. Always carries field details.
	KindValidation
	// KindBusiness is a known domain rule violation with its own status and code.
	KindBusiness
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	default:
		return "technical"
	}
}

// Error codes exposed to API clients.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeRouteNotFound      = "NOT_FOUND"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	MessageInvalidInput    = "Invalid input"
	MessageInternal        = "An unexpected error occurred"
	MessageRouteNotFound   = "Route not found"
	MessageTooManyRequests = "Too many requests"
)

// Common business errors
var (
	ErrUserNotFound   = NewBusinessError(http.StatusNotFound, CodeUserNotFound, "User not found")
	ErrDuplicateEmail = NewBusinessError(http.StatusConflict, CodeDuplicateEmail, "Email already exists")
)

// FieldError describes one violated constraint of an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single application error type. Kind selects which of the
// remaining fields are meaningful.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Details []FieldError
	Err     error
}

// NewValidationError creates a validation error from an ordered list of field violations.
func NewValidationError(details ...FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Code:    CodeValidationFailed,
		Message: MessageInvalidInput,
		Details: details,
	}
}

// NewBusinessError creates a domain rule violation with an explicit HTTP status and code.
func NewBusinessError(status int, code, message string) *Error {
	return &Error{
		Kind:    KindBusiness,
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NewTechnicalError wraps an unexpected failure. The message is for logs only.
func NewTechnicalError(message string, err error) *Error {
	return &Error{
		Kind:    KindTechnical,
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		if len(e.Details) == 0 {
			return "validation failed"
		}
		d := e.Details[0]
		if d.Field == "" {
			return fmt.Sprintf("validation failed: %s", d.Message)
		}
		return fmt.Sprintf("validation failed: %s - %s", d.Field, d.Message)
	case KindBusiness:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}
