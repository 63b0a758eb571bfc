package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// Error codes shared by the service envelope and the client.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeDuplicateAcceptance = "DUPLICATE_ACCEPTANCE"
	CodeAuthFailed          = "AUTH_FAILED"
	CodeTransport           = "TRANSPORT_ERROR"
	CodeBusy                = "BUSY"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewDuplicateAcceptance reports that the caller already holds the job.
func NewDuplicateAcceptance(jobID string) error {
	return NewDomainError(CodeDuplicateAcceptance, "you have already accepted this job", http.StatusConflict,
		map[string]any{"job_id": jobID})
}

// NewAuthFailed is the opaque identity provider failure.
func NewAuthFailed(message string, err error) error {
	return &DomainError{
		Code:       CodeAuthFailed,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// NewTransportError wraps network failures seen by the client.
func NewTransportError(err error) error {
	return &DomainError{
		Code:       CodeTransport,
		Message:    "unable to reach the job service",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewBusy rejects a re-submission while the same action is pending.
func NewBusy(action string) error {
	return NewDomainError(CodeBusy, fmt.Sprintf("%s already in progress", action), http.StatusTooManyRequests, nil)
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, "too many requests", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
		return FromStatus(fiberErr.Code, "", fiberErr.Message, nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

// FromStatus rebuilds a DomainError from a decoded error envelope.
func FromStatus(status int, code, message string, details map[string]any) error {
	if code == "" {
		code = codeForStatus(status)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
