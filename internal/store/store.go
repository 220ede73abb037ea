package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoDocument is returned when no policy document has ever been saved.
var ErrNoDocument = errors.New("store: no policy document")

// Document is a stored policy document revision. Body is the raw JSON as
// submitted; the store never interprets it.
type Document struct {
	Body      []byte    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store defines the interface for policy document persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetDocument retrieves the latest policy document.
	// Returns ErrNoDocument if nothing has been saved.
	GetDocument(ctx context.Context) (*Document, error)

	// SaveDocument persists a new policy document revision.
	SaveDocument(ctx context.Context, body []byte) error

	// Close releases any resources held by the store.
	// After Close is called, the store should not be used.
	Close() error
}
