package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal server error")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	ErrDuplicateCode      = errors.New("class code already in use")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAlreadyMember      = errors.New("student already joined this classroom")
	ErrCannotModifyGraded = errors.New("submission has been graded and can no longer be modified")

	// ErrInvalidGrade and ErrSubmissionNotFound wrap the generic sentinels so
	// callers can match either the specific or the broad kind with errors.Is.
	ErrInvalidGrade       = fmt.Errorf("grade must be between 0 and 100: %w", ErrInvalidInput)
	ErrSubmissionNotFound = fmt.Errorf("no submission exists for this task and student: %w", ErrNotFound)
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrDuplicateCode) || errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrAlreadyMember) || errors.Is(err, ErrCannotModifyGraded) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return http.StatusTooManyRequests
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
