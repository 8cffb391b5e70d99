package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("RT-TEST-1000", "test message"),
			expected: "[RT-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("RT-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[RT-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("RT-TEST-1000", "message 1")
	err2 := NewDomainError("RT-TEST-1000", "message 2")
	err3 := NewDomainError("RT-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("RT-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("RT-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}
	if errors.Unwrap(withCause) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(withCause), cause)
	}
}

func TestConfigurationErrors_MatchCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"negative deferral", ErrNegativeDeferral, "RT-CONF-4001"},
		{"deferral range", ErrDeferralRange.WithDetails("min=200ms max=100ms"), "RT-CONF-4002"},
		{"negative threshold", ErrNegativeThreshold, "RT-CONF-4003"},
		{"invalid weight", fmt.Errorf("load: %w", ErrInvalidWeight), "RT-CONF-4004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrConfiguration) {
				t.Errorf("errors.Is(%v, ErrConfiguration) = false", tt.err)
			}
			if got := GetErrorCode(tt.err); got != tt.code {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.code)
			}
		})
	}

	if errors.Is(ErrAlreadyRetiring, ErrConfiguration) {
		t.Error("admin errors must not match the configuration category")
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrAlreadyRetiring, "RT-ADMIN-4090") {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrAlreadyRetiring, "RT-ADMIN-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "") {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrSupervisorUnreachable)
	if !IsDomainError(wrapped, "RT-WORK-5020") {
		t.Error("IsDomainError should work with wrapped errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrRateLimited, "RT-SYS-4290"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrInternalServer), "RT-SYS-5000"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}
