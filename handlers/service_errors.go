package handlers

import (
	"net/http"

	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses.
// Internal causes are logged, never written to the client.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch errType := services.GetErrorType(err); errType {
	case services.ErrorTypeNotFound, services.ErrorTypeValidation, services.ErrorTypeUnauthorized:
	case services.ErrorTypeUpstream:
		logger.Warn("upstream call failed", zap.Error(err))
	case services.ErrorTypeInternal:
		logger.Error("internal server error", zap.Error(err))
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(errType)))
	}

	if writeErr := utils.WriteServiceError(w, err); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
