// Package profile serves the stored profile record of an authenticated user.
package profile

import (
	"context"
	"errors"

	"github.com/upb/gemini-chat/backend/repositories"
	"github.com/upb/gemini-chat/backend/services"
	"go.uber.org/zap"
)

// DefaultCollection is where profile documents live, keyed by subject
const DefaultCollection = "users"

// ProfileService reads user profile documents
type ProfileService struct {
	store      repositories.DocumentStore
	collection string
	logger     *zap.Logger
}

// NewProfileService creates a profile service over a document store
func NewProfileService(store repositories.DocumentStore, collection string, logger *zap.Logger) *ProfileService {
	if collection == "" {
		collection = DefaultCollection
	}
	return &ProfileService{
		store:      store,
		collection: collection,
		logger:     logger,
	}
}

// GetProfile returns the profile record stored under subject, unmodified.
// A missing record is services.ErrUserNotFound; any other store failure is internal.
func (s *ProfileService) GetProfile(ctx context.Context, subject string) (repositories.Document, error) {
	doc, err := s.store.Get(ctx, s.collection, subject)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return nil, services.ErrUserNotFound
		}
		s.logger.Error("failed to read profile",
			zap.String("collection", s.collection),
			zap.String("subject", subject),
			zap.Error(err))
		return nil, services.WrapInternal("Internal server error", err)
	}

	return doc, nil
}
