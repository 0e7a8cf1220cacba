package store

import (
	"context"
	"encoding/json"
	"fmt"

	"mascot/database"

	"github.com/jackc/pgx/v5"
)

// PostgresBackend stores one JSONB document per record in the records table.
type PostgresBackend struct {
	db *database.DB
}

// NewPostgresBackend creates a backend over an existing connection pool.
func NewPostgresBackend(db *database.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Name identifies the backend in logs and health output.
func (p *PostgresBackend) Name() string {
	return "postgres"
}

// Ping verifies the connection pool is alive.
func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Get retrieves the document for an id.
func (p *PostgresBackend) Get(ctx context.Context, kind Kind, id int64) (Document, error) {
	query := `
		SELECT data
		FROM records
		WHERE kind = $1 AND id = $2
	`

	var raw []byte
	err := p.db.QueryRow(ctx, query, string(kind), id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record %d: %w", kind, id, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s record %d: %w", kind, id, err)
	}
	return doc, nil
}

// Put upserts the document for an id.
func (p *PostgresBackend) Put(ctx context.Context, kind Kind, id int64, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s record %d: %w", kind, id, err)
	}

	query := `
		INSERT INTO records (kind, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := p.db.Exec(ctx, query, string(kind), id, raw); err != nil {
		return fmt.Errorf("failed to upsert %s record %d: %w", kind, id, err)
	}
	return nil
}

// All returns every stored document of a kind, keyed by id.
func (p *PostgresBackend) All(ctx context.Context, kind Kind) (map[int64]Document, error) {
	query := `
		SELECT id, data
		FROM records
		WHERE kind = $1
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[int64]Document)
	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", kind, err)
		}

		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", kind, id, err)
		}
		out[id] = doc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s records: %w", kind, err)
	}
	return out, nil
}

// Count returns the number of stored documents of a kind.
func (p *PostgresBackend) Count(ctx context.Context, kind Kind) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM records
		WHERE kind = $1
	`

	var count int64
	if err := p.db.QueryRow(ctx, query, string(kind)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", kind, err)
	}
	return count, nil
}

// Close closes the underlying connection pool.
func (p *PostgresBackend) Close() error {
	p.db.Close()
	return nil
}
