package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV persists balances in a single PostgreSQL table.
type PostgresKV struct {
	db *pgxpool.Pool
}

// NewPostgresKV builds a KV backed by PostgreSQL.
func NewPostgresKV(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

// EnsureSchema creates the balances table when it is missing.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS balances (
        key        TEXT PRIMARY KEY,
        amount     BIGINT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create balances table: %w", err)
	}
	return nil
}

// Get fetches the balance for key.
func (p *PostgresKV) Get(ctx context.Context, key string) (Amount, error) {
	var v int64
	err := p.db.QueryRow(ctx, `SELECT amount FROM balances WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unknown, nil
	}
	if err != nil {
		return Unknown, fmt.Errorf("select balance %s: %w", key, err)
	}
	return Of(v), nil
}

// Put upserts the balance for key, or deletes the row for an unknown amount.
func (p *PostgresKV) Put(ctx context.Context, key string, amount Amount) error {
	if !amount.Known {
		_, err := p.db.Exec(ctx, `DELETE FROM balances WHERE key = $1`, key)
		return err
	}
	_, err := p.db.Exec(ctx, `INSERT INTO balances (key, amount, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		key, amount.Value)
	return err
}
