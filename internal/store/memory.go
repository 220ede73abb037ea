package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It is suitable for development, testing, or single-instance deployments
// where the policy is seeded from a file at startup.
type MemoryStore struct {
	mu  sync.RWMutex
	doc *Document
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetDocument retrieves the latest policy document.
func (m *MemoryStore) GetDocument(ctx context.Context) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.doc == nil {
		return nil, ErrNoDocument
	}

	// Copy so callers cannot mutate the stored revision.
	body := make([]byte, len(m.doc.Body))
	copy(body, m.doc.Body)
	return &Document{Body: body, UpdatedAt: m.doc.UpdatedAt}, nil
}

// SaveDocument persists a new policy document revision.
func (m *MemoryStore) SaveDocument(ctx context.Context, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(body))
	copy(stored, body)
	m.doc = &Document{Body: stored, UpdatedAt: time.Now().UTC()}
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
