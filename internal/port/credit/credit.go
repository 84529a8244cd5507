package credit

import (
	"context"

	"github.com/google/uuid"

	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
)

// Repository keeps balances and the transaction ledger in step.
type Repository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (domaincredit.Balance, error)
	// Record appends t to the ledger and applies it to the balance atomically.
	// It returns domaincredit.ErrInsufficientFunds if the balance would go negative.
	Record(ctx context.Context, t domaincredit.Transaction) (domaincredit.Balance, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domaincredit.Transaction, error)
}
