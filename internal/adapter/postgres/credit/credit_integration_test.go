//go:build integration

package credit_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgcredit "github.com/alanyang/agent-market/internal/adapter/postgres/credit"
	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/testutil"
)

func TestCreditRepo_ZeroBalanceForNewUser(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := pgcredit.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	b, err := repo.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, b.Amount.IsZero())
}

func TestCreditRepo_RecordPurchaseThenCharge(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgcredit.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	purchase, err := domaincredit.NewPurchase(user.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	b, err := repo.Record(ctx, purchase)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(b.Amount))

	txs, err := repo.ListTransactions(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domaincredit.KindPurchase, txs[0].Kind)
}

func TestCreditRepo_RecordRejectsOverdraft(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgcredit.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	purchase, _ := domaincredit.NewPurchase(user.ID, decimal.NewFromInt(1))
	_, err := repo.Record(ctx, purchase)
	require.NoError(t, err)

	charge := domaincredit.NewCharge(user.ID, user.ID, decimal.NewFromInt(2), "expensive")
	charge.AgentID = nil
	_, err = repo.Record(ctx, charge)
	assert.ErrorIs(t, err, domaincredit.ErrInsufficientFunds)

	b, err := repo.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(b.Amount), "failed charge must not move the balance")
}

func TestCreditRepo_ConcurrentPurchasesAllApplied(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgcredit.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _ := domaincredit.NewPurchase(user.ID, decimal.NewFromInt(2))
			_, err := repo.Record(ctx, p)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	b, err := repo.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(b.Amount))
}
