package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/gemini-chat/backend/services"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{"not found", services.ErrUserNotFound, http.StatusNotFound, "not_found", "User not found"},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", "Invalid authentication credentials"},
		{"wrapped unauthorized", fmt.Errorf("verify: %w", services.ErrInvalidIDToken), http.StatusUnauthorized, "unauthorized", "Invalid Firebase ID token"},
		{"upstream", services.WrapUpstream("Error generating response", errors.New("quota exceeded")), http.StatusInternalServerError, "upstream_error", "Error generating response: quota exceeded"},
		{"internal", services.WrapInternal("document store lookup failed", errors.New("dial tcp")), http.StatusInternalServerError, "internal_error", "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteServiceError(w, tt.err))

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
		})
	}

	t.Run("validation details are kept", func(t *testing.T) {
		err := services.NewDomainError(services.ErrorTypeValidation, "Validation failed", nil).
			WithDetail("message", "message is required")

		w := httptest.NewRecorder()
		require.NoError(t, WriteServiceError(w, err))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "message is required", response.Details["message"])
	})
}
