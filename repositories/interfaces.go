package repositories

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned when no document exists under the requested key
var ErrDocumentNotFound = errors.New("document not found")

// Document is a loosely typed record exactly as the store holds it
type Document map[string]interface{}

// DocumentStore reads documents by collection and key.
// Implementations are safe for concurrent use.
type DocumentStore interface {
	// Get returns the document stored under key, or ErrDocumentNotFound
	Get(ctx context.Context, collection, key string) (Document, error)

	// Close releases the underlying client
	Close() error
}

// HealthChecker is implemented by stores that can report connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
