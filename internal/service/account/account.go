package account

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	"github.com/alanyang/agent-market/internal/domain/event"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
	portcredit "github.com/alanyang/agent-market/internal/port/credit"
	portbus "github.com/alanyang/agent-market/internal/port/eventbus"
	portidempotency "github.com/alanyang/agent-market/internal/port/idempotency"
	portlocker "github.com/alanyang/agent-market/internal/port/locker"
	portnotification "github.com/alanyang/agent-market/internal/port/notification"
	portprofile "github.com/alanyang/agent-market/internal/port/profile"
	"github.com/alanyang/agent-market/internal/port/querycache"
	portusage "github.com/alanyang/agent-market/internal/port/usage"
	"github.com/alanyang/agent-market/internal/service/inbox"
)

const (
	// HistoryLimit bounds usage history and transaction lists.
	HistoryLimit = 100
	// NotificationLimit bounds the notification list.
	NotificationLimit = 50

	opPurchase = "credits.purchase"
)

// Dashboard is everything the user dashboard shows above the fold.
type Dashboard struct {
	Profile     domainprofile.Profile `json:"profile"`
	Usage       domainusage.Stats     `json:"usage"`
	Balance     domaincredit.Balance  `json:"balance"`
	UnreadCount int                   `json:"unread_count"`
}

// PurchaseResult is returned by Purchase and replayed for repeated idempotency keys.
type PurchaseResult struct {
	Balance     domaincredit.Balance     `json:"balance"`
	Transaction domaincredit.Transaction `json:"transaction"`
	Replayed    bool                     `json:"replayed"`
}

// Service backs the signed-in user's dashboard: profile, usage, credits and notifications.
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	profiles      portprofile.Repository
	usage         portusage.Repository
	credits       portcredit.Repository
	notifications portnotification.Repository
	inbox         *inbox.Service
	locker        portlocker.AdvisoryLocker
	idem          portidempotency.Store
	cache         querycache.Cache
	bus           portbus.EventBus
	staleTime     time.Duration
}

func NewService(
	profiles portprofile.Repository,
	usage portusage.Repository,
	credits portcredit.Repository,
	notifications portnotification.Repository,
	inbox *inbox.Service,
	locker portlocker.AdvisoryLocker,
	idem portidempotency.Store,
	cache querycache.Cache,
	bus portbus.EventBus,
	staleTime time.Duration,
) *Service {
	return &Service{
		profiles:      profiles,
		usage:         usage,
		credits:       credits,
		notifications: notifications,
		inbox:         inbox,
		locker:        locker,
		idem:          idem,
		cache:         cache,
		bus:           bus,
		staleTime:     staleTime,
	}
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (domainprofile.Profile, error) {
	p, err := querycache.Get(ctx, s.cache, querykey.UserProfile, s.staleTime,
		func(ctx context.Context) (domainprofile.Profile, error) {
			return s.profiles.GetByID(ctx, userID)
		})
	if err != nil {
		return domainprofile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Service) UsageStats(ctx context.Context, userID uuid.UUID) (domainusage.Stats, error) {
	st, err := querycache.Get(ctx, s.cache, querykey.UsageStats, s.staleTime,
		func(ctx context.Context) (domainusage.Stats, error) {
			records, err := s.usage.List(ctx, domainusage.ListFilters{UserID: &userID})
			if err != nil {
				return domainusage.Stats{}, err
			}
			return domainusage.Summarize(records), nil
		})
	if err != nil {
		return domainusage.Stats{}, fmt.Errorf("usage stats: %w", err)
	}
	return st, nil
}

func (s *Service) UsageHistory(ctx context.Context, userID uuid.UUID) ([]domainusage.Record, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.UsageHistory, s.staleTime,
		func(ctx context.Context) ([]domainusage.Record, error) {
			return s.usage.List(ctx, domainusage.ListFilters{UserID: &userID, Limit: HistoryLimit})
		})
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}
	return out, nil
}

func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (domaincredit.Balance, error) {
	b, err := querycache.Get(ctx, s.cache, querykey.Credits, s.staleTime,
		func(ctx context.Context) (domaincredit.Balance, error) {
			return s.credits.GetBalance(ctx, userID)
		})
	if err != nil {
		return domaincredit.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID) ([]domaincredit.Transaction, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.Transactions, s.staleTime,
		func(ctx context.Context) ([]domaincredit.Transaction, error) {
			return s.credits.ListTransactions(ctx, userID, HistoryLimit)
		})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// Purchase adds credits. A non-empty idempotencyKey that was already used
// returns the first result without charging again.
func (s *Service) Purchase(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (PurchaseResult, error) {
	t, err := domaincredit.NewPurchase(userID, amount)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("purchase credits: %w", err)
	}

	var result PurchaseResult
	err = s.locker.WithLock(ctx, domaincredit.LockKey(userID), func(ctx context.Context) error {
		if idempotencyKey != "" {
			stored, ok, err := s.idem.Check(ctx, userID, opPurchase, idempotencyKey)
			if err != nil {
				return err
			}
			if ok {
				if err := json.Unmarshal(stored, &result); err != nil {
					return fmt.Errorf("decoding stored result: %w", err)
				}
				result.Replayed = true
				return nil
			}
		}

		balance, err := s.credits.Record(ctx, t)
		if err != nil {
			return err
		}
		result = PurchaseResult{Balance: balance, Transaction: t}

		if idempotencyKey != "" {
			payload, _ := json.Marshal(result)
			if err := s.idem.Store(ctx, userID, opPurchase, idempotencyKey, payload); err != nil {
				slog.ErrorContext(ctx, "failed to store idempotency key", "user_id", userID, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("purchase credits: %w", err)
	}
	if result.Replayed {
		return result, nil
	}

	s.creditsChanged(ctx, userID)
	s.inbox.Notify(ctx, userID, domainnotification.KindCredits, "Credits added", t.Description)
	slog.InfoContext(ctx, "credits purchased", "user_id", userID, "amount", amount.String())
	return result, nil
}

func (s *Service) Notifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]domainnotification.Notification, error) {
	all, err := querycache.Get(ctx, s.cache, querykey.Notifications, s.staleTime,
		func(ctx context.Context) ([]domainnotification.Notification, error) {
			return s.notifications.List(ctx, userID, domainnotification.ListFilters{Limit: NotificationLimit})
		})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if !unreadOnly {
		return all, nil
	}
	out := make([]domainnotification.Notification, 0, len(all))
	for _, n := range all {
		if !n.IsRead() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	s.cache.Invalidate(ctx, querykey.Notifications, querycache.InvalidateOptions{})
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	s.cache.Invalidate(ctx, querykey.Notifications, querycache.InvalidateOptions{})
	return n, nil
}

// Dashboard reads the four queries of the dashboard page; each is cached on its own.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Profile, err = s.Profile(ctx, userID); err != nil {
		return Dashboard{}, err
	}
	if d.Usage, err = s.UsageStats(ctx, userID); err != nil {
		return Dashboard{}, err
	}
	if d.Balance, err = s.Balance(ctx, userID); err != nil {
		return Dashboard{}, err
	}
	ns, err := s.Notifications(ctx, userID, false)
	if err != nil {
		return Dashboard{}, err
	}
	d.UnreadCount = domainnotification.Unread(ns)
	return d, nil
}

func (s *Service) creditsChanged(ctx context.Context, userID uuid.UUID) {
	for _, k := range event.KeysFor(event.TypeCreditsChanged) {
		s.cache.Invalidate(ctx, k, querycache.InvalidateOptions{})
	}
	if err := s.bus.Publish(ctx, event.New(event.TypeCreditsChanged, userID).ForViewer(userID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish CreditsChanged event", "user_id", userID, "error", err)
	}
}
