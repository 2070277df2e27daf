// Package firestore serves documents from Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/upb/gemini-chat/backend/repositories"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config holds the settings needed to reach a Firestore database
type Config struct {
	ProjectID string
	// CredentialsFile is a service account key. Empty means application
	// default credentials, or the emulator when FIRESTORE_EMULATOR_HOST is set.
	CredentialsFile string
	DatabaseID      string
}

// Store implements repositories.DocumentStore on Cloud Firestore
type Store struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewStore opens a Firestore client for the configured project
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore project ID is required")
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID == "" || cfg.DatabaseID == firestore.DefaultDatabaseID {
		client, err = firestore.NewClient(ctx, cfg.ProjectID, opts...)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.Info("firestore client created",
		zap.String("project_id", cfg.ProjectID),
		zap.String("database_id", cfg.DatabaseID))

	return &Store{client: client, logger: logger}, nil
}

// Get retrieves a document by collection and key
func (s *Store) Get(ctx context.Context, collection, key string) (repositories.Document, error) {
	// A key containing a slash would address a nested path, not a document in collection.
	if key == "" || strings.Contains(key, "/") {
		return nil, repositories.ErrDocumentNotFound
	}

	snap, err := s.client.Collection(collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repositories.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, key, err)
	}
	if !snap.Exists() {
		return nil, repositories.ErrDocumentNotFound
	}

	data := snap.Data()
	s.logger.Debug("document loaded",
		zap.String("collection", collection),
		zap.String("key", key),
		zap.Int("fields", len(data)))

	return repositories.Document(normalizeMap(data)), nil
}

// Close closes the Firestore client
func (s *Store) Close() error {
	return s.client.Close()
}

// normalizeMap makes Firestore values JSON friendly. Document references
// become their path; everything else is kept as returned by the SDK.
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case *firestore.DocumentRef:
		if val == nil {
			return nil
		}
		return val.Path
	default:
		return v
	}
}
