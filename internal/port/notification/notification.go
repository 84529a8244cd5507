package notification

import (
	"context"

	"github.com/google/uuid"

	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
)

type Repository interface {
	Create(ctx context.Context, n domainnotification.Notification) (domainnotification.Notification, error)
	List(ctx context.Context, userID uuid.UUID, filters domainnotification.ListFilters) ([]domainnotification.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
