package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/taskboard/pkg/storage/document"
)

// DefaultDocumentName is the row key used when none is configured.
const DefaultDocumentName = "taskboard"

// Backend keeps the whole document in one JSONB row.
type Backend struct {
	pool *pgxpool.Pool
	name string
}

func NewBackend(pool *pgxpool.Pool, name string) *Backend {
	if name == "" {
		name = DefaultDocumentName
	}
	return &Backend{pool: pool, name: name}
}

func (b *Backend) Name() string { return "postgres" }

func (b *Backend) Load(ctx context.Context) (document.Document, bool, error) {
	var body []byte
	err := b.pool.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, b.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return document.Document{}, false, nil
	}
	if err != nil {
		return document.Document{}, false, err
	}
	var doc document.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return document.Document{}, false, fmt.Errorf("decode document %q: %w", b.name, err)
	}
	return doc, true, nil
}

func (b *Backend) Save(ctx context.Context, doc document.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = b.pool.Exec(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, b.name, body)
	return err
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}
