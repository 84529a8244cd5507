package usage

import (
	"context"

	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
)

type Repository interface {
	Record(ctx context.Context, r domainusage.Record) error
	List(ctx context.Context, filters domainusage.ListFilters) ([]domainusage.Record, error)
}
