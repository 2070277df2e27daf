package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "User not found",
				Err:     errors.New("document missing"),
			},
			wantMsg: "not_found: User not found (document missing)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: ErrUserNotFound,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrUserNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
		{
			name:   "wrapped with fmt",
			err:    fmt.Errorf("lookup: %w", ErrInvalidIDToken),
			target: ErrInvalidCredentials,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "message").WithDetail("reason", "required")

	assert.Equal(t, "message", err.Details["field"])
	assert.Equal(t, "required", err.Details["reason"])
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError},
		{"validation", NewDomainError(ErrorTypeValidation, "bad", nil), IsValidationError},
		{"unauthorized", ErrInvalidIDToken, IsUnauthorizedError},
		{"upstream", WrapUpstream("Error generating response", errors.New("timeout")), IsUpstreamError},
		{"internal", WrapInternal("Internal server error", errors.New("disk full")), IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(tt.err))
			assert.True(t, tt.checker(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.checker(errors.New("plain")))
			assert.False(t, tt.checker(nil))

			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, other.checker(tt.err), "%s should not match %s", tt.name, other.name)
				}
			}
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrUserNotFound))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad", nil).WithDetail("message", "message is required")

	assert.Equal(t, "message is required", GetErrorDetails(err)["message"])
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "User not found", GetErrorMessage(ErrUserNotFound))
	assert.Equal(t, "Invalid Firebase ID token", GetErrorMessage(fmt.Errorf("login: %w", ErrInvalidIDToken)))
	assert.Equal(t, "", GetErrorMessage(errors.New("plain")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("connection reset")
	err := WrapInternal("document store lookup failed", baseErr)

	assert.True(t, IsInternalError(err))
	assert.ErrorIs(t, err, baseErr)
	assert.Equal(t, "document store lookup failed", GetErrorMessage(err))
}

func TestWrapUpstream(t *testing.T) {
	baseErr := errors.New("quota exceeded")
	err := WrapUpstream("Error generating response", baseErr)

	require.True(t, IsUpstreamError(err))
	assert.ErrorIs(t, err, baseErr)
	assert.Equal(t, "Error generating response: quota exceeded", GetErrorMessage(err))
}
