package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// postgresBackend keeps every document in one key/value table. The
// JSONB column carries the same payloads the disk backend writes to
// files, so the two drivers are interchangeable.
type postgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) (Backend, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bot_state (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure bot_state table: %w", err)
	}
	return &postgresBackend{db: db}, nil
}

func (b *postgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var doc []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT doc FROM bot_state WHERE key = $1`, key).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (b *postgresBackend) Write(ctx context.Context, key string, val []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO bot_state (key, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		key, val)
	return err
}

func (b *postgresBackend) Erase(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM bot_state WHERE key = $1`, key)
	return err
}

func (b *postgresBackend) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM bot_state WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
