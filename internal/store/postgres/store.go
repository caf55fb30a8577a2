package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres persistence for the processed set and the
// scan checkpoint. Expected schema:
//
//	CREATE TABLE processed_txs (
//	    tx_hash    TEXT PRIMARY KEY,
//	    marked_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE relayer_checkpoint (
//	    name               TEXT PRIMARY KEY,
//	    last_scanned_block BIGINT NOT NULL,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
type Store struct {
	pool *pgxpool.Pool
	name string
}

// NewStore connects to Postgres. name scopes the checkpoint row so
// several relayers can share one database.
func NewStore(ctx context.Context, dsn, name string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if name == "" {
		return nil, fmt.Errorf("checkpoint name is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, name: name}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Contains reports whether the transaction hash was already processed.
func (s *Store) Contains(ctx context.Context, txHash string) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM processed_txs WHERE tx_hash=$1)`, txHash)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("query processed: %w", err)
	}
	return exists, nil
}

// Mark records the transaction hash as processed.
func (s *Store) Mark(ctx context.Context, txHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO processed_txs (tx_hash, marked_at)
		VALUES ($1, now())
		ON CONFLICT (tx_hash) DO NOTHING
	`, txHash)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Load returns the stored checkpoint for this relayer name.
func (s *Store) Load(ctx context.Context) (uint64, bool, error) {
	var height int64
	row := s.pool.QueryRow(ctx, `SELECT last_scanned_block FROM relayer_checkpoint WHERE name=$1`, s.name)
	if err := row.Scan(&height); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query checkpoint: %w", err)
	}
	if height < 0 {
		return 0, false, fmt.Errorf("stored checkpoint is negative: %d", height)
	}
	return uint64(height), true, nil
}

// Save upserts the checkpoint for this relayer name.
func (s *Store) Save(ctx context.Context, height uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relayer_checkpoint (name, last_scanned_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_scanned_block = EXCLUDED.last_scanned_block, updated_at = now()
	`, s.name, int64(height))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
