package profile

import (
	"context"

	"github.com/google/uuid"

	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domainprofile.Profile, error)
}
