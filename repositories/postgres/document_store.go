package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/upb/gemini-chat/backend/repositories"
	"go.uber.org/zap"
)

// DocumentStore implements repositories.DocumentStore on a JSONB table
type DocumentStore struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *DB, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a document by collection and key
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (repositories.Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, key, err)
	}

	// UseNumber keeps integers exact when the document is written back out.
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	doc := repositories.Document{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, key, err)
	}

	s.logger.Debug("document loaded",
		zap.String("collection", collection),
		zap.String("key", key),
		zap.Int("fields", len(doc)))
	return doc, nil
}

// HealthCheck reports whether the database is reachable
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Close closes the underlying connection pool
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
