package middleware

import (
	"net/http"
	"strings"

	"github.com/upb/gemini-chat/backend/auth"
	"github.com/upb/gemini-chat/backend/services"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	verifier auth.CredentialVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier auth.CredentialVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer credential and
// stores the resolved identity in the request context. Every rejection is
// written as services.ErrInvalidCredentials so callers cannot tell a
// missing header from a bad token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			m.reject(w, requestID)
			return
		}

		identity, err := m.verifier.Verify(ctx, token)
		if err != nil {
			m.logger.Warn("credential verification failed",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.reject(w, requestID)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", identity.Subject))

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, requestID string) {
	if err := utils.WriteServiceError(w, services.ErrInvalidCredentials); err != nil {
		m.logger.Error("failed to write unauthorized response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
