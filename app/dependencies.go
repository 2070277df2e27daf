package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/gemini-chat/backend/auth"
	"github.com/upb/gemini-chat/backend/config"
	"github.com/upb/gemini-chat/backend/firebase"
	"github.com/upb/gemini-chat/backend/middleware"
	"github.com/upb/gemini-chat/backend/repositories"
	"github.com/upb/gemini-chat/backend/repositories/firestore"
	"github.com/upb/gemini-chat/backend/repositories/postgres"
	"github.com/upb/gemini-chat/backend/services/chat"
	"github.com/upb/gemini-chat/backend/services/profile"
	"github.com/upb/gemini-chat/backend/services/providers"
	"github.com/upb/gemini-chat/backend/services/providers/gemini"
	"github.com/upb/gemini-chat/backend/services/providers/openai"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Storage
	Documents   repositories.DocumentStore
	StoreHealth repositories.HealthChecker // nil when the backend has no probe

	// Provider Registry
	ProviderRegistry *providers.Registry

	// Services
	Profiles *profile.ProfileService
	Chat     *chat.ChatService

	// Auth
	Verifier       auth.CredentialVerifier
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDocuments(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	if err := deps.initProviders(cfg); err != nil {
		_ = deps.Documents.Close()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		_ = deps.Documents.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDocuments opens the configured profile document backend
func (d *Dependencies) initDocuments(ctx context.Context, cfg *config.Config) error {
	switch cfg.Documents.Backend {
	case config.BackendFirestore:
		store, err := firestore.NewStore(ctx, firestore.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.ServiceAccountKey,
			DatabaseID:      cfg.Documents.FirestoreDatabaseID,
		}, d.Logger)
		if err != nil {
			return err
		}
		d.Documents = store

	case config.BackendPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		if cfg.Documents.InitSchema {
			if err := db.InitSchema(ctx); err != nil {
				_ = db.Close()
				return err
			}
		}
		store := postgres.NewDocumentStore(db, d.Logger)
		d.Documents = store
		d.StoreHealth = store

	default:
		return fmt.Errorf("unknown document backend %q", cfg.Documents.Backend)
	}

	d.Logger.Info("document store initialized",
		zap.String("backend", cfg.Documents.Backend),
		zap.String("collection", cfg.Documents.ProfileCollection))
	return nil
}

// initProviders builds the provider registry. The configured default is
// always registered; other providers only when they have an API key.
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry, err := providers.NewRegistryBuilder().
		WithProviderBuilder(config.ProviderGemini, func(c providers.ProviderConfig) (providers.Provider, error) {
			return gemini.NewAdapter(c), nil
		}).
		WithProviderBuilder(config.ProviderOpenAI, func(c providers.ProviderConfig) (providers.Provider, error) {
			return openai.NewAdapter(c), nil
		}).
		Build(providerConfigs(cfg.Providers), cfg.Providers.Default)
	if err != nil {
		return err
	}

	if cfg.Providers.APIKey(cfg.Providers.Default) == "" {
		d.Logger.Warn("default provider has no API key, chat requests will fail",
			zap.String("provider", cfg.Providers.Default))
	}

	d.ProviderRegistry = registry
	d.Logger.Info("provider registry initialized",
		zap.Strings("providers", registry.ListProviders()),
		zap.String("default", cfg.Providers.Default))
	return nil
}

func providerConfigs(cfg config.ProvidersConfig) map[string]providers.ProviderConfig {
	configs := make(map[string]providers.ProviderConfig)

	if cfg.Default == config.ProviderGemini || cfg.Gemini.APIKey != "" {
		pc := providers.DefaultProviderConfig()
		pc.APIKey = cfg.Gemini.APIKey
		pc.Model = cfg.Gemini.Model
		pc.BaseURL = cfg.Gemini.BaseURL
		pc.Timeout = cfg.Gemini.Timeout
		configs[config.ProviderGemini] = pc
	}

	if cfg.Default == config.ProviderOpenAI || cfg.OpenAI.APIKey != "" {
		pc := providers.DefaultProviderConfig()
		pc.APIKey = cfg.OpenAI.APIKey
		pc.Model = cfg.OpenAI.Model
		pc.BaseURL = cfg.OpenAI.BaseURL
		pc.OrgID = cfg.OpenAI.OrgID
		pc.Timeout = cfg.OpenAI.Timeout
		configs[config.ProviderOpenAI] = pc
	}

	return configs
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	if cfg.Firebase.ProjectID == "" {
		d.Logger.Warn("firebase project not configured, all credentials will be rejected")
		d.Verifier = auth.RejectAll{}
		d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)
		return nil
	}

	validator, err := firebase.NewValidator(firebase.Config{
		ProjectID:   cfg.Firebase.ProjectID,
		JWKSURL:     cfg.Firebase.JWKSURL,
		CacheTTL:    cfg.Firebase.KeyCacheTTL,
		HTTPTimeout: cfg.Firebase.HTTPTimeout,
	})
	if err != nil {
		return err
	}

	d.Verifier = auth.NewVerifier(validator, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)
	d.Logger.Info("firebase token verification enabled",
		zap.String("project_id", cfg.Firebase.ProjectID))
	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.Profiles = profile.NewProfileService(d.Documents, cfg.Documents.ProfileCollection, d.Logger)
	d.Chat = chat.NewChatService(d.ProviderRegistry, d.Logger)
}

// Close gracefully shuts down all dependencies. It gives up waiting on a
// store that does not close before ctx is done.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Documents != nil {
		done := make(chan error, 1)
		go func() { done <- d.Documents.Close() }()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to close document store: %w", err))
			} else {
				d.Logger.Info("document store closed")
			}
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("document store did not close: %w", ctx.Err()))
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	return nil
}
