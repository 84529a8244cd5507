package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/agent-market/internal/adapter/memory"
	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	"github.com/alanyang/agent-market/internal/domain/event"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	"github.com/alanyang/agent-market/internal/mocks"
	"github.com/alanyang/agent-market/internal/port/querycache"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type svcDeps struct {
	repo  *mocks.MockAgentRepository
	bus   *mocks.MockEventBus
	cache *memory.Cache
}

func newCatalogSvc(t *testing.T) (*catalogsvc.Service, svcDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := svcDeps{
		repo:  mocks.NewMockAgentRepository(ctrl),
		bus:   mocks.NewMockEventBus(ctrl),
		cache: memory.NewCache(),
	}
	t.Cleanup(d.cache.Wait)
	return catalogsvc.NewService(d.repo, d.cache, d.bus, time.Minute), d
}

func publishedAgent(name, category string, price string, featured bool, rating float64) domainagent.Agent {
	a := domainagent.New(uuid.New(), name, name+" description", category, []string{"tag-" + name},
		decimal.RequireFromString(price), "https://example.test/"+name)
	a.Status = domainagent.StatusPublished
	a.Featured = featured
	a.Rating = rating
	return a
}

func names(agents []domainagent.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.Name
	}
	return out
}

// ── Browse ────────────────────────────────────────────────────────────────────

func TestBrowse(t *testing.T) {
	catalog := []domainagent.Agent{
		publishedAgent("writer", "Writing", "2.00", false, 4.1),
		publishedAgent("coder", "Code", "0.50", true, 4.8),
		publishedAgent("editor", "writing", "1.00", true, 3.9),
	}
	writing := "WRITING"

	tests := []struct {
		name    string
		filters domainagent.ListFilters
		want    []string
	}{
		{name: "category is case-insensitive", filters: domainagent.ListFilters{Category: &writing, Sort: domainagent.SortPriceLow}, want: []string{"editor", "writer"}},
		{name: "query matches tags", filters: domainagent.ListFilters{Query: "tag-coder"}, want: []string{"coder"}},
		{name: "sort by price high", filters: domainagent.ListFilters{Sort: domainagent.SortPriceHigh}, want: []string{"writer", "editor", "coder"}},
		{name: "sort by rating", filters: domainagent.ListFilters{Sort: domainagent.SortRating}, want: []string{"coder", "writer", "editor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newCatalogSvc(t)
			d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(catalog, nil).Times(1)

			got, err := svc.Browse(context.Background(), tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestBrowse_ServedFromCache(t *testing.T) {
	svc, d := newCatalogSvc(t)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f domainagent.ListFilters) ([]domainagent.Agent, error) {
			require.NotNil(t, f.Status)
			assert.Equal(t, domainagent.StatusPublished, *f.Status)
			return []domainagent.Agent{publishedAgent("a", "x", "1", false, 0)}, nil
		}).Times(1)

	for i := 0; i < 3; i++ {
		_, err := svc.Browse(context.Background(), domainagent.ListFilters{})
		require.NoError(t, err)
	}
}

func TestBrowse_RefetchesAfterInvalidation(t *testing.T) {
	svc, d := newCatalogSvc(t)
	first := []domainagent.Agent{publishedAgent("old", "x", "1", false, 0)}
	second := []domainagent.Agent{publishedAgent("new", "x", "1", false, 0)}
	gomock.InOrder(
		d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(first, nil),
		d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(second, nil),
	)

	_, err := svc.Browse(context.Background(), domainagent.ListFilters{})
	require.NoError(t, err)

	d.cache.Invalidate(context.Background(), querykey.Agents, querycache.InvalidateOptions{})

	stale, err := svc.Browse(context.Background(), domainagent.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, names(stale), "stale value is served while revalidating")

	d.cache.Wait()
	fresh, err := svc.Browse(context.Background(), domainagent.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, names(fresh))
}

func TestBrowse_RepoError(t *testing.T) {
	svc, d := newCatalogSvc(t)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := svc.Browse(context.Background(), domainagent.ListFilters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browse agents")
	assert.Equal(t, 0, d.cache.Len(), "errors are not cached")
}

// ── Featured / Categories ─────────────────────────────────────────────────────

func TestFeatured_OnlyFeaturedByRating(t *testing.T) {
	svc, d := newCatalogSvc(t)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{
		publishedAgent("plain", "x", "1", false, 5),
		publishedAgent("good", "x", "1", true, 4),
		publishedAgent("best", "x", "1", true, 5),
	}, nil)

	got, err := svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"best", "good"}, names(got))
}

func TestCategories_Distinct(t *testing.T) {
	svc, d := newCatalogSvc(t)
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{
		publishedAgent("a", "Writing", "1", false, 0),
		publishedAgent("b", "writing", "1", false, 0),
		publishedAgent("c", "Code", "1", false, 0),
	}, nil)

	got, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Code", "Writing"}, got)
}

func TestDerivedKeys_RefetchFromRepository(t *testing.T) {
	svc, d := newCatalogSvc(t)
	alpha := publishedAgent("alpha", "dev", "1", true, 4)
	beta := publishedAgent("beta", "ops", "1", true, 5)
	before := []domainagent.Agent{alpha}
	after := []domainagent.Agent{alpha, beta}

	var mu sync.Mutex
	current := before
	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domainagent.ListFilters) ([]domainagent.Agent, error) {
			mu.Lock()
			defer mu.Unlock()
			return current, nil
		}).AnyTimes()

	ctx := context.Background()
	_, err := svc.Browse(ctx, domainagent.ListFilters{})
	require.NoError(t, err)
	_, err = svc.Featured(ctx)
	require.NoError(t, err)
	_, err = svc.Categories(ctx)
	require.NoError(t, err)

	mu.Lock()
	current = after
	mu.Unlock()
	for _, k := range []querykey.Key{querykey.Agents, querykey.Categories, querykey.FeaturedAgents} {
		d.cache.Invalidate(ctx, k, querycache.InvalidateOptions{Refetch: querycache.RefetchNone})
	}

	// Stale reads kick off the refetches.
	_, err = svc.Featured(ctx)
	require.NoError(t, err)
	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	d.cache.Wait()

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "alpha"}, names(featured))

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "ops"}, cats)
}

func TestPostReview_InvalidatesFeatured(t *testing.T) {
	svc, d := newCatalogSvc(t)
	a := publishedAgent("x", "y", "1", true, 3)

	d.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{a}, nil)
	_, err := svc.Featured(context.Background())
	require.NoError(t, err)

	d.repo.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.repo.EXPECT().AddReview(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rv domainagent.Review) (domainagent.Review, error) { return rv, nil })
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err = svc.PostReview(context.Background(), a.ID, uuid.New(), 5, "")
	require.NoError(t, err)

	_, state, ok := d.cache.Peek(context.Background(), querykey.FeaturedAgents)
	require.True(t, ok)
	assert.True(t, state.Invalidated)
}

// ── GetAgent ──────────────────────────────────────────────────────────────────

func TestGetAgent(t *testing.T) {
	tests := []struct {
		name    string
		status  domainagent.Status
		repoErr error
		wantErr error
	}{
		{name: "published", status: domainagent.StatusPublished},
		{name: "draft hidden", status: domainagent.StatusDraft, wantErr: domainagent.ErrNotFound},
		{name: "missing", repoErr: domainagent.ErrNotFound, wantErr: domainagent.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newCatalogSvc(t)
			a := publishedAgent("x", "y", "1", false, 0)
			a.Status = tt.status
			if tt.repoErr != nil {
				d.repo.EXPECT().GetByID(gomock.Any(), a.ID).Return(domainagent.Agent{}, tt.repoErr)
			} else {
				d.repo.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
			}

			got, err := svc.GetAgent(context.Background(), a.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, a.ID, got.ID)
		})
	}
}

// ── PostReview ────────────────────────────────────────────────────────────────

func TestPostReview_InvalidatesAndPublishes(t *testing.T) {
	svc, d := newCatalogSvc(t)
	a := publishedAgent("x", "y", "1", false, 0)
	userID := uuid.New()

	d.repo.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.repo.EXPECT().ListReviews(gomock.Any(), a.ID).Return([]domainagent.Review{}, nil)
	_, err := svc.Reviews(context.Background(), a.ID)
	require.NoError(t, err)

	d.repo.EXPECT().AddReview(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rv domainagent.Review) (domainagent.Review, error) { return rv, nil })
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e event.Event) {
			assert.Equal(t, event.TypeReviewPosted, e.Type)
			assert.Equal(t, a.ID, e.EntityID)
		}).Return(nil)

	rv, err := svc.PostReview(context.Background(), a.ID, userID, 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5, rv.Rating)

	_, state, ok := d.cache.Peek(context.Background(), querykey.AgentReviews.With(a.ID.String()))
	require.True(t, ok)
	assert.True(t, state.Invalidated)
}

func TestPostReview_RejectsBadRating(t *testing.T) {
	svc, d := newCatalogSvc(t)
	a := publishedAgent("x", "y", "1", false, 0)
	d.repo.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)

	_, err := svc.PostReview(context.Background(), a.ID, uuid.New(), 9, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
}
