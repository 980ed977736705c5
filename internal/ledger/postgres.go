package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const balancesSchema = `
	CREATE TABLE IF NOT EXISTS balances (
		identity   TEXT PRIMARY KEY,
		balance    BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps balances in a Postgres table for deployments that
// own the ledger instead of calling out to a separate service.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if _, err := pool.Exec(ctx, balancesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure balances table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreditCoins(ctx context.Context, identity string, amount int) (int64, error) {
	query := `
		INSERT INTO balances (identity, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity)
		DO UPDATE SET balance = balances.balance + $2, updated_at = now()
		RETURNING balance
	`

	var balance int64
	if err := s.pool.QueryRow(ctx, query, identity, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit %s: %w", identity, err)
	}

	return balance, nil
}

// Balance returns the current balance for an identity, zero if the
// identity has never been credited.
func (s *PostgresStore) Balance(ctx context.Context, identity string) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx, `SELECT balance FROM balances WHERE identity = $1`, identity).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance for %s: %w", identity, err)
	}
	return balance, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
