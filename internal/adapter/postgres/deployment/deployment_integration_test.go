//go:build integration

package deployment_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgagent "github.com/alanyang/agent-market/internal/adapter/postgres/agent"
	pgdeployment "github.com/alanyang/agent-market/internal/adapter/postgres/deployment"
	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/testutil"
)

func TestDeploymentRepo_Lifecycle(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	agents := pgagent.New(pool)
	repo := pgdeployment.New(pool)
	dev := testutil.SeedProfile(t, pool, domainprofile.RoleDeveloper)

	a, err := agents.Create(ctx, domainagent.New(dev.ID, "deployable", "", "ops", nil, decimal.Zero, "https://x.example.test"))
	require.NoError(t, err)

	d, err := repo.Create(ctx, domaindeployment.New(a.ID, dev.ID, "", a.APIEndpoint))
	require.NoError(t, err)
	assert.Equal(t, domaindeployment.StatusPending, d.Status)
	assert.Equal(t, "production", d.Environment)

	require.NoError(t, repo.UpdateStatus(ctx, d.ID, domaindeployment.StatusPending, domaindeployment.StatusActive, "healthy"))

	err = repo.UpdateStatus(ctx, d.ID, domaindeployment.StatusPending, domaindeployment.StatusFailed, "")
	assert.ErrorIs(t, err, domaindeployment.ErrInvalidTransition)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domaindeployment.StatusActive, got.Status)
	assert.Equal(t, "healthy", got.Detail)

	list, err := repo.List(ctx, domaindeployment.ListFilters{DeveloperID: &dev.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domaindeployment.ErrNotFound)
}
