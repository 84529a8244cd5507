//go:build integration

package notification_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgnotification "github.com/alanyang/agent-market/internal/adapter/postgres/notification"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/testutil"
)

func TestNotificationRepo_ReadFlow(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgnotification.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	first, err := repo.Create(ctx, domainnotification.New(user.ID, domainnotification.KindInfo, "welcome", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, domainnotification.New(user.ID, domainnotification.KindCredits, "topped up", "10 credits"))
	require.NoError(t, err)

	require.NoError(t, repo.MarkRead(ctx, user.ID, first.ID))

	unread, err := repo.List(ctx, user.ID, domainnotification.ListFilters{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "topped up", unread[0].Title)

	n, err := repo.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := repo.List(ctx, user.ID, domainnotification.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, domainnotification.Unread(all))
}

func TestNotificationRepo_MarkRead_OtherUser(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgnotification.New(pool)
	user := testutil.SeedProfile(t, pool, domainprofile.RoleUser)

	n, err := repo.Create(ctx, domainnotification.New(user.ID, domainnotification.KindInfo, "hi", ""))
	require.NoError(t, err)

	err = repo.MarkRead(ctx, uuid.New(), n.ID)
	assert.ErrorIs(t, err, domainnotification.ErrNotFound)
}
