package utils

import (
	"net/http"

	"github.com/upb/gemini-chat/backend/services"
)

// WriteServiceError maps a domain error to its HTTP status and body.
// Internal and unrecognized errors never expose their cause.
func WriteServiceError(w http.ResponseWriter, err error) error {
	message := services.GetErrorMessage(err)

	switch services.GetErrorType(err) {
	case services.ErrorTypeNotFound:
		return WriteNotFound(w, message)
	case services.ErrorTypeValidation:
		return WriteBadRequest(w, message, services.GetErrorDetails(err))
	case services.ErrorTypeUnauthorized:
		return WriteUnauthorized(w, message)
	case services.ErrorTypeUpstream:
		return WriteUpstreamError(w, message)
	default:
		return WriteInternalServerError(w, "Internal server error")
	}
}
