package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyang/agent-market/internal/domain/event"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	portbus "github.com/alanyang/agent-market/internal/port/eventbus"
	portnotification "github.com/alanyang/agent-market/internal/port/notification"
	portnotifier "github.com/alanyang/agent-market/internal/port/notifier"
)

// Service stores a notification and announces it. Only the insert can fail;
// the event and the live push are best-effort.
type Service struct {
	repo     portnotification.Repository
	bus      portbus.EventBus
	notifier portnotifier.ViewerNotifier
}

func NewService(repo portnotification.Repository, bus portbus.EventBus, notifier portnotifier.ViewerNotifier) *Service {
	return &Service{repo: repo, bus: bus, notifier: notifier}
}

func (s *Service) Send(ctx context.Context, userID uuid.UUID, kind domainnotification.Kind, title, body string) (domainnotification.Notification, error) {
	created, err := s.repo.Create(ctx, domainnotification.New(userID, kind, title, body))
	if err != nil {
		return domainnotification.Notification{}, fmt.Errorf("send notification: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeNotificationCreated, created.ID).ForViewer(userID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish NotificationCreated event", "user_id", userID, "error", err)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyViewer(ctx, userID, created); err != nil {
			slog.ErrorContext(ctx, "failed to push notification", "user_id", userID, "error", err)
		}
	}
	return created, nil
}

// Notify is Send for callers that cannot act on failure.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind domainnotification.Kind, title, body string) {
	if _, err := s.Send(ctx, userID, kind, title, body); err != nil {
		slog.ErrorContext(ctx, "notification dropped", "user_id", userID, "kind", kind, "error", err)
	}
}
