package credit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient credits")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

type Kind string

const (
	KindPurchase Kind = "purchase"
	KindUsage    Kind = "usage"
	KindRefund   Kind = "refund"
	KindPayout   Kind = "payout"
)

type Balance struct {
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (b Balance) Covers(cost decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(cost)
}

// Transaction is a signed ledger row: purchases and refunds are positive,
// usage charges are negative.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	AgentID     *uuid.UUID      `json:"agent_id,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewPurchase(userID uuid.UUID, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	return Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        KindPurchase,
		Amount:      amount,
		Description: fmt.Sprintf("Purchased %s credits", amount.StringFixed(2)),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func NewCharge(userID, agentID uuid.UUID, cost decimal.Decimal, agentName string) Transaction {
	return Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        KindUsage,
		Amount:      cost.Neg(),
		AgentID:     &agentID,
		Description: fmt.Sprintf("Call to %s", agentName),
		CreatedAt:   time.Now().UTC(),
	}
}

// NewPayout credits a developer with the price of a call to one of their agents.
func NewPayout(developerID, agentID uuid.UUID, amount decimal.Decimal, agentName string) Transaction {
	return Transaction{
		ID:          uuid.New(),
		UserID:      developerID,
		Kind:        KindPayout,
		Amount:      amount,
		AgentID:     &agentID,
		Description: fmt.Sprintf("Earnings from %s", agentName),
		CreatedAt:   time.Now().UTC(),
	}
}

// Apply returns the balance after t, refusing to go below zero.
func (b Balance) Apply(t Transaction) (Balance, error) {
	next := b.Amount.Add(t.Amount)
	if next.IsNegative() {
		return b, ErrInsufficientFunds
	}
	b.Amount = next
	b.UpdatedAt = t.CreatedAt
	return b, nil
}
