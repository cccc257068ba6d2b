package state

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps durable console state in a single key-value table.
//
//	CREATE TABLE console_state (
//	    key        text PRIMARY KEY,
//	    value      text NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed store over a shared pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	const query = "SELECT value FROM console_state WHERE key = $1"
	var value string
	if err := p.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO console_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := p.pool.Exec(ctx, query, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM console_state WHERE key = $1", key)
	return err
}
