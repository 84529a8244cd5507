package agent

import (
	"context"

	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
)

// CatalogReader is the read-only view the catalog and contact services need.
// [ISP] Neither service writes listings.
type CatalogReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domainagent.Agent, error)
	List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error)
	ListReviews(ctx context.Context, agentID uuid.UUID) ([]domainagent.Review, error)
}
