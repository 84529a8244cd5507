package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	"github.com/alanyang/agent-market/internal/domain/event"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	portagent "github.com/alanyang/agent-market/internal/port/agent"
	portbus "github.com/alanyang/agent-market/internal/port/eventbus"
	"github.com/alanyang/agent-market/internal/port/querycache"
)

// FeaturedLimit caps the featured strip on the marketplace page.
const FeaturedLimit = 6

// Service serves the public catalog of published agents.
// [SRP] Read paths only, plus reviews. Listing management lives in the developer service.
type Service struct {
	repo      portagent.Repository
	cache     querycache.Cache
	bus       portbus.EventBus
	staleTime time.Duration
}

func NewService(repo portagent.Repository, cache querycache.Cache, bus portbus.EventBus, staleTime time.Duration) *Service {
	return &Service{repo: repo, cache: cache, bus: bus, staleTime: staleTime}
}

// published loads every published agent once per staleness window; filtering
// and sorting happen in memory on the cached slice.
func (s *Service) published(ctx context.Context) ([]domainagent.Agent, error) {
	return querycache.Get(ctx, s.cache, querykey.Agents.With("published"), s.staleTime, s.listPublished)
}

// listPublished reads the repository directly. Fetchers of keys derived from
// the published list use it so a refetch never starts from a stale parent.
func (s *Service) listPublished(ctx context.Context) ([]domainagent.Agent, error) {
	status := domainagent.StatusPublished
	return s.repo.List(ctx, domainagent.ListFilters{Status: &status})
}

func (s *Service) Browse(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error) {
	all, err := s.published(ctx)
	if err != nil {
		return nil, fmt.Errorf("browse agents: %w", err)
	}
	return domainagent.Filter(all, filters), nil
}

func (s *Service) Featured(ctx context.Context) ([]domainagent.Agent, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.FeaturedAgents, s.staleTime,
		func(ctx context.Context) ([]domainagent.Agent, error) {
			all, err := s.listPublished(ctx)
			if err != nil {
				return nil, err
			}
			var featured []domainagent.Agent
			for _, a := range all {
				if a.Featured {
					featured = append(featured, a)
				}
			}
			domainagent.SortBy(featured, domainagent.SortRating)
			if len(featured) > FeaturedLimit {
				featured = featured[:FeaturedLimit]
			}
			return featured, nil
		})
	if err != nil {
		return nil, fmt.Errorf("featured agents: %w", err)
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.Categories, s.staleTime,
		func(ctx context.Context) ([]string, error) {
			all, err := s.listPublished(ctx)
			if err != nil {
				return nil, err
			}
			return domainagent.Categories(all), nil
		})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetAgent returns a published agent. Drafts and archived listings read as not found.
func (s *Service) GetAgent(ctx context.Context, id uuid.UUID) (domainagent.Agent, error) {
	a, err := querycache.Get(ctx, s.cache, querykey.Agents.With(id.String()), s.staleTime,
		func(ctx context.Context) (domainagent.Agent, error) {
			return s.repo.GetByID(ctx, id)
		})
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("get agent: %w", err)
	}
	if !a.IsPublished() {
		return domainagent.Agent{}, fmt.Errorf("get agent: %w", domainagent.ErrNotFound)
	}
	return a, nil
}

func (s *Service) Reviews(ctx context.Context, agentID uuid.UUID) ([]domainagent.Review, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.AgentReviews.With(agentID.String()), s.staleTime,
		func(ctx context.Context) ([]domainagent.Review, error) {
			return s.repo.ListReviews(ctx, agentID)
		})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

func (s *Service) PostReview(ctx context.Context, agentID, userID uuid.UUID, rating int, comment string) (domainagent.Review, error) {
	if _, err := s.GetAgent(ctx, agentID); err != nil {
		return domainagent.Review{}, fmt.Errorf("post review: %w", err)
	}
	rv, err := domainagent.NewReview(agentID, userID, rating, comment)
	if err != nil {
		return domainagent.Review{}, fmt.Errorf("post review: %w", err)
	}
	created, err := s.repo.AddReview(ctx, rv)
	if err != nil {
		return domainagent.Review{}, fmt.Errorf("post review: %w", err)
	}

	s.cache.Invalidate(ctx, querykey.AgentReviews.With(agentID.String()), querycache.InvalidateOptions{})
	s.cache.Invalidate(ctx, querykey.Agents, querycache.InvalidateOptions{})
	s.cache.Invalidate(ctx, querykey.FeaturedAgents, querycache.InvalidateOptions{})

	if err := s.bus.Publish(ctx, event.New(event.TypeReviewPosted, agentID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish ReviewPosted event", "agent_id", agentID, "error", err)
	}
	return created, nil
}
