package credit_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agent-market/internal/domain/credit"
)

func TestNewPurchase_RejectsNonPositive(t *testing.T) {
	_, err := credit.NewPurchase(uuid.New(), decimal.Zero)
	assert.ErrorIs(t, err, credit.ErrInvalidAmount)

	_, err = credit.NewPurchase(uuid.New(), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, credit.ErrInvalidAmount)
}

func TestApply(t *testing.T) {
	user := uuid.New()
	b := credit.Balance{UserID: user, Amount: decimal.NewFromInt(10)}

	purchase, err := credit.NewPurchase(user, decimal.NewFromInt(5))
	require.NoError(t, err)
	b, err = b.Apply(purchase)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(b.Amount))

	charge := credit.NewCharge(user, uuid.New(), decimal.NewFromFloat(2.5), "bot")
	assert.True(t, charge.Amount.IsNegative())
	b, err = b.Apply(charge)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(12.5).Equal(b.Amount))

	tooMuch := credit.NewCharge(user, uuid.New(), decimal.NewFromInt(100), "bot")
	after, err := b.Apply(tooMuch)
	assert.ErrorIs(t, err, credit.ErrInsufficientFunds)
	assert.True(t, b.Amount.Equal(after.Amount))
}

func TestCovers(t *testing.T) {
	b := credit.Balance{Amount: decimal.NewFromInt(2)}
	assert.True(t, b.Covers(decimal.NewFromInt(2)))
	assert.False(t, b.Covers(decimal.NewFromFloat(2.01)))
}
