package deployment

import (
	"context"

	"github.com/google/uuid"

	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
)

type Repository interface {
	Create(ctx context.Context, d domaindeployment.Deployment) (domaindeployment.Deployment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domaindeployment.Deployment, error)
	List(ctx context.Context, filters domaindeployment.ListFilters) ([]domaindeployment.Deployment, error)
	// UpdateStatus is a compare-and-set on the current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domaindeployment.Status, detail string) error
}
