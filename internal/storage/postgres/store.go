package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"stakeScope/internal/model"
)

// Store provides Postgres persistence for the workflow journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Append inserts one workflow record.
func (s *Store) Append(ctx context.Context, rec model.JournalRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO workflow_journal (
			ts, workflow, address, pool_id, amount, status, message, tx_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.Timestamp,
		rec.Workflow,
		rec.Address,
		int64(rec.PoolID),
		rec.Amount,
		rec.Status,
		rec.Message,
		rec.TxHash,
	)
	return err
}
