package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
// Revisions are append-only; GetDocument returns the newest one.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init creates the backing table if it does not exist.
func (p *PostgresStore) Init(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS policy_documents (
			id         BIGSERIAL PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to initialize policy_documents table: %w", err)
	}
	return nil
}

// GetDocument retrieves the latest policy document revision.
func (p *PostgresStore) GetDocument(ctx context.Context) (*Document, error) {
	var doc Document
	err := p.pool.QueryRow(ctx, `
		SELECT body, updated_at
		FROM policy_documents
		ORDER BY id DESC
		LIMIT 1`).Scan(&doc.Body, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return &doc, nil
}

// SaveDocument appends a new policy document revision.
func (p *PostgresStore) SaveDocument(ctx context.Context, body []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO policy_documents (body) VALUES ($1)`, body)
	return err
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
