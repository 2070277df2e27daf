package handlers

import (
	"context"
	"net/http"

	"github.com/upb/gemini-chat/backend/internal/observability"
	"github.com/upb/gemini-chat/backend/middleware"
	"github.com/upb/gemini-chat/backend/repositories"
	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// ProfileService defines the profile lookup used by UserHandler
type ProfileService interface {
	GetProfile(ctx context.Context, subject string) (repositories.Document, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service ProfileService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service ProfileService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// HandleUserInfo handles GET /user_info.
// The stored profile record is returned as the body without projection.
func (h *UserHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	identity := middleware.GetIdentityFromContext(ctx)
	if identity == nil {
		HandleServiceError(w, services.ErrInvalidCredentials, logger)
		return
	}

	profile, err := h.service.GetProfile(ctx, identity.Subject)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, profile); err != nil {
		logger.Error("failed to write profile response", zap.Error(err))
	}
}
