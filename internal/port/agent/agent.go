package agent

import (
	"context"

	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
)

// Repository manages agent listings and their reviews.
type Repository interface {
	CatalogReader

	Create(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error)
	Update(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error)
	// UpdateStatus is a compare-and-set: it fails if the stored status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domainagent.Status) error

	AddReview(ctx context.Context, r domainagent.Review) (domainagent.Review, error)
}
