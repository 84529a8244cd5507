package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetBalance returns a zero balance for users who never held credits.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (domaincredit.Balance, error) {
	b := domaincredit.Balance{UserID: userID, Amount: decimal.Zero}
	err := r.pool.QueryRow(ctx,
		`SELECT amount, updated_at FROM credit_balances WHERE user_id = $1`, userID,
	).Scan(&b.Amount, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return b, nil
		}
		return domaincredit.Balance{}, fmt.Errorf("querying balance: %w", err)
	}
	return b, nil
}

// Record locks the balance row, applies t through the domain rules and
// appends it to the ledger. Nothing is written if the balance would go negative.
func (r *Repository) Record(ctx context.Context, t domaincredit.Transaction) (domaincredit.Balance, error) {
	var next domaincredit.Balance
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO credit_balances (user_id, amount, updated_at)
			VALUES ($1, 0, $2)
			ON CONFLICT (user_id) DO NOTHING`, t.UserID, time.Now().UTC()); err != nil {
			return fmt.Errorf("ensuring balance row: %w", err)
		}

		current := domaincredit.Balance{UserID: t.UserID}
		if err := tx.QueryRow(ctx,
			`SELECT amount, updated_at FROM credit_balances WHERE user_id = $1 FOR UPDATE`, t.UserID,
		).Scan(&current.Amount, &current.UpdatedAt); err != nil {
			return fmt.Errorf("locking balance: %w", err)
		}

		applied, err := current.Apply(t)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE credit_balances SET amount = $1, updated_at = $2 WHERE user_id = $3`,
			applied.Amount, applied.UpdatedAt, t.UserID); err != nil {
			return fmt.Errorf("updating balance: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO credit_transactions (id, user_id, kind, amount, agent_id, description, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, t.UserID, string(t.Kind), t.Amount, t.AgentID, t.Description, t.CreatedAt); err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}
		next = applied
		return nil
	})
	if err != nil {
		return domaincredit.Balance{}, err
	}
	return next, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domaincredit.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, kind, amount, agent_id, description, created_at
		FROM credit_transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []domaincredit.Transaction
	for rows.Next() {
		var t domaincredit.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.AgentID, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
