// Package domain defines the shared domain vocabulary for retire-go.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "RT-CONF-4002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two domain errors are equal when their codes are equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Configuration errors (CONF).
//
// Every specific configuration error wraps ErrConfiguration, so callers can
// test errors.Is(err, ErrConfiguration) without enumerating codes.
var (
	// ErrConfiguration is the category sentinel for invalid controller configuration.
	ErrConfiguration = NewDomainError("RT-CONF-4000", "invalid configuration")

	// ErrNegativeDeferral indicates a negative minimum or maximum deferral.
	ErrNegativeDeferral = NewDomainError("RT-CONF-4001", "deferral must not be negative").WithCause(ErrConfiguration)

	// ErrDeferralRange indicates the minimum deferral exceeds the maximum.
	ErrDeferralRange = NewDomainError("RT-CONF-4002", "min deferral exceeds max deferral").WithCause(ErrConfiguration)

	// ErrNegativeThreshold indicates a negative request threshold.
	ErrNegativeThreshold = NewDomainError("RT-CONF-4003", "max requests must not be negative").WithCause(ErrConfiguration)

	// ErrInvalidWeight indicates a malformed request weight rule.
	ErrInvalidWeight = NewDomainError("RT-CONF-4004", "invalid request weight").WithCause(ErrConfiguration)
)

// Admin errors (ADMIN).
var (
	// ErrAlreadyRetiring indicates a retirement sequence is already in flight.
	ErrAlreadyRetiring = NewDomainError("RT-ADMIN-4090", "retirement already in flight")

	// ErrRetireNotAllowed indicates manual retirement is disabled on this host.
	ErrRetireNotAllowed = NewDomainError("RT-ADMIN-4030", "manual retirement disabled")

	// ErrUnauthorized indicates a missing or wrong admin token.
	ErrUnauthorized = NewDomainError("RT-ADMIN-4010", "admin token required")

	// ErrAccessDenied indicates the client IP is not in the admin allowlist.
	ErrAccessDenied = NewDomainError("RT-ADMIN-4031", "access denied")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("RT-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the process is retiring and not ready.
	ErrServiceUnavailable = NewDomainError("RT-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("RT-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("RT-SYS-4290", "too many requests")
)

// Worker errors (WORK).
var (
	// ErrSupervisorUnreachable indicates the process-group supervisor could not be reached.
	ErrSupervisorUnreachable = NewDomainError("RT-WORK-5020", "supervisor unreachable")

	// ErrSupervisorRejected indicates the supervisor refused the disconnect.
	ErrSupervisorRejected = NewDomainError("RT-WORK-5021", "supervisor rejected disconnect")
)
