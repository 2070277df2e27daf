package handlers

import (
	"context"
	"net/http"

	"github.com/upb/gemini-chat/backend/internal/observability"
	"github.com/upb/gemini-chat/backend/middleware"
	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// ChatRequest carries the user's message
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is returned by POST /chat
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatService defines the chat operation used by ChatHandler
type ChatService interface {
	Reply(ctx context.Context, subject, message string) (string, error)
}

// ChatHandler handles chat relay requests
type ChatHandler struct {
	service ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandleChat handles POST /chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	identity := middleware.GetIdentityFromContext(ctx)
	if identity == nil {
		HandleServiceError(w, services.ErrInvalidCredentials, logger)
		return
	}

	params, err := utils.RequestParams(r, "message")
	if err != nil {
		logger.Warn("failed to parse chat request", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req := ChatRequest{Message: params["message"]}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	logger.Debug("relaying chat message",
		zap.String("subject", identity.Subject),
		zap.Int("message_length", len(req.Message)))

	text, err := h.service.Reply(ctx, identity.Subject, req.Message)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, ChatResponse{Response: text}); err != nil {
		logger.Error("failed to write chat response", zap.Error(err))
	}
}
