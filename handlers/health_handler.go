package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/gemini-chat/backend/repositories"
	"github.com/upb/gemini-chat/backend/services/providers"
	"github.com/upb/gemini-chat/backend/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProviderSource resolves the provider that serves chat requests
type ProviderSource interface {
	Default() (providers.Provider, error)
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store     repositories.HealthChecker
	providers ProviderSource
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. store may be nil when the
// document backend has no cheap health probe.
func NewHealthHandler(store repositories.HealthChecker, source ProviderSource, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		providers: source,
		logger:    logger,
	}
}

// HandleHealth handles GET /healthz
// Basic liveness check - always returns 200 if the process is serving
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	switch {
	case h.store == nil:
		checks["documents"] = "not_checked"
	default:
		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Warn("document store health check failed", zap.Error(err))
			checks["documents"] = "unhealthy"
			ready = false
		} else {
			checks["documents"] = "healthy"
		}
	}

	checks["providers"] = h.checkProvider(ctx)
	if checks["providers"] != "reachable" {
		ready = false
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !ready {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if err := utils.WriteJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// checkProvider asks the default provider whether it answers with the
// configured credentials.
func (h *HealthHandler) checkProvider(ctx context.Context) string {
	if h.providers == nil {
		return "none_configured"
	}
	provider, err := h.providers.Default()
	if err != nil {
		return "none_configured"
	}
	if !provider.IsAvailable(ctx) {
		h.logger.Warn("default provider is unreachable", zap.String("provider", provider.Name()))
		return "unreachable"
	}
	return "reachable"
}

// HandleNotFound writes the JSON 404 used for unknown routes
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, "")
}

// HandleMethodNotAllowed writes the JSON 405 used for known routes with the wrong method
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
