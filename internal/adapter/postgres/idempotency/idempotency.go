package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultRetention is how long a stored result is replayed.
const DefaultRetention = 24 * time.Hour

type Repository struct {
	pool      *pgxpool.Pool
	retention time.Duration
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, retention: DefaultRetention}
}

// WithRetention returns a copy of r that replays results for d.
func (r *Repository) WithRetention(d time.Duration) *Repository {
	return &Repository{pool: r.pool, retention: d}
}

// Check returns the stored result for key, if one younger than the
// retention window exists.
func (r *Repository) Check(ctx context.Context, userID uuid.UUID, opType, key string) ([]byte, bool, error) {
	query := `
		SELECT result_jsonb FROM processed_operations
		WHERE user_id = $1 AND operation_type = $2 AND idempotency_key = $3
		  AND created_at > NOW() - $4::float8 * INTERVAL '1 millisecond'`

	var result []byte
	err := r.pool.QueryRow(ctx, query, userID, opType, key, float64(r.retention.Milliseconds())).Scan(&result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return result, true, nil
}

// Store records the result of a processed operation. Storing again under an
// expired key replaces it; under a live key the first result is kept.
func (r *Repository) Store(ctx context.Context, userID uuid.UUID, opType, key string, resultJSON []byte) error {
	query := `
		INSERT INTO processed_operations (user_id, operation_type, idempotency_key, result_jsonb, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, operation_type, idempotency_key) DO UPDATE
		SET result_jsonb = EXCLUDED.result_jsonb, created_at = EXCLUDED.created_at
		WHERE processed_operations.created_at <= NOW() - $5::float8 * INTERVAL '1 millisecond'`

	if _, err := r.pool.Exec(ctx, query, userID, opType, key, resultJSON, float64(r.retention.Milliseconds())); err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
