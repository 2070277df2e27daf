package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/gemini-chat/backend/auth"
	"github.com/upb/gemini-chat/backend/internal/observability"
	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// LoginRequest carries the identity token presented at login
type LoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// LoginResponse is returned by POST /login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler handles login requests
type AuthHandler struct {
	verifier auth.CredentialVerifier
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(verifier auth.CredentialVerifier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		logger:   logger,
	}
}

// HandleLogin handles POST /login.
// The verified ID token is returned unchanged as the bearer token for later calls.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context(), h.logger)

	params, err := utils.RequestParams(r, "id_token")
	if err != nil {
		logger.Warn("failed to parse login request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req := LoginRequest{IDToken: params["id_token"]}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredential) {
			logger.Error("unexpected verifier error", zap.Error(err))
		}
		logger.Info("login rejected")
		HandleServiceError(w, services.ErrInvalidIDToken, logger)
		return
	}

	logger.Info("login succeeded", zap.String("subject", identity.Subject))

	if err := utils.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: req.IDToken,
		TokenType:   "bearer",
	}); err != nil {
		logger.Error("failed to write login response", zap.Error(err))
	}
}
