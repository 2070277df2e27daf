package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/gemini-chat/backend/app"
	"github.com/upb/gemini-chat/backend/handlers"
	"github.com/upb/gemini-chat/backend/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware. Credentials travel in the Authorization header, so
	// cookies are never allowed cross-origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(handlers.HandleNotFound)
	r.MethodNotAllowed(handlers.HandleMethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(deps.StoreHealth, deps.ProviderRegistry, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Verifier, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Profiles, deps.Logger)
	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Login exchanges a Firebase ID token for the bearer credential
	r.Post("/login", authHandler.HandleLogin)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Get("/user_info", userHandler.HandleUserInfo)
		r.Post("/chat", chatHandler.HandleChat)
	})

	return r
}
