package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	"github.com/alanyang/agent-market/internal/domain/event"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
	portagent "github.com/alanyang/agent-market/internal/port/agent"
	portagentapi "github.com/alanyang/agent-market/internal/port/agentapi"
	portcredit "github.com/alanyang/agent-market/internal/port/credit"
	portbus "github.com/alanyang/agent-market/internal/port/eventbus"
	portlocker "github.com/alanyang/agent-market/internal/port/locker"
	"github.com/alanyang/agent-market/internal/port/querycache"
	portusage "github.com/alanyang/agent-market/internal/port/usage"
	"github.com/alanyang/agent-market/internal/service/inbox"
)

// ErrUpstream means the agent did not deliver a usable reply.
var ErrUpstream = errors.New("agent did not answer")

// Result is what the caller gets back from one proxied call.
type Result struct {
	AgentID    uuid.UUID           `json:"agent_id"`
	Outcome    domainusage.Outcome `json:"outcome"`
	StatusCode int                 `json:"status_code"`
	Output     json.RawMessage     `json:"output,omitempty"`
	LatencyMS  int64               `json:"latency_ms"`
	Cost       decimal.Decimal     `json:"cost"`
	Charged    bool                `json:"charged"`
}

func (r Result) Succeeded() bool { return r.Outcome == domainusage.OutcomeSuccess }

// Service proxies a viewer's request to an external agent and settles the bill.
// [SRP] One call, one usage row, at most one charge. The catalog is read-only here.
type Service struct {
	agents  portagent.CatalogReader
	credits portcredit.Repository
	usage   portusage.Repository
	api     portagentapi.Client
	inbox   *inbox.Service
	locker  portlocker.AdvisoryLocker
	cache   querycache.Invalidator
	bus     portbus.EventBus
}

func NewService(
	agents portagent.CatalogReader,
	credits portcredit.Repository,
	usage portusage.Repository,
	api portagentapi.Client,
	inbox *inbox.Service,
	locker portlocker.AdvisoryLocker,
	cache querycache.Invalidator,
	bus portbus.EventBus,
) *Service {
	return &Service{
		agents:  agents,
		credits: credits,
		usage:   usage,
		api:     api,
		inbox:   inbox,
		locker:  locker,
		cache:   cache,
		bus:     bus,
	}
}

// Contact calls agentID with input on behalf of viewerID. Credits are only
// taken when the agent answers with a 2xx status.
func (s *Service) Contact(ctx context.Context, viewerID, agentID uuid.UUID, input json.RawMessage) (Result, error) {
	a, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return Result{}, fmt.Errorf("contact agent: %w", err)
	}
	if !a.IsPublished() {
		return Result{}, fmt.Errorf("contact agent: %w", domainagent.ErrNotPublished)
	}

	balance, err := s.credits.GetBalance(ctx, viewerID)
	if err != nil {
		return Result{}, fmt.Errorf("contact agent: %w", err)
	}
	if !balance.Covers(a.PricePerCall) {
		return Result{}, fmt.Errorf("contact agent: %w", domaincredit.ErrInsufficientFunds)
	}

	resp, callErr := s.api.Contact(ctx, portagentapi.Request{Endpoint: a.APIEndpoint, APIKey: a.APIKey, Input: input})

	rec := domainusage.New(viewerID, a.ID, a.DeveloperID)
	rec.StatusCode = resp.StatusCode
	rec.Latency = resp.Latency
	res := Result{
		AgentID:    a.ID,
		StatusCode: resp.StatusCode,
		Output:     resp.Body,
		LatencyMS:  resp.Latency.Milliseconds(),
		Cost:       decimal.Zero,
	}

	switch {
	case callErr != nil:
		rec.Outcome, rec.Error = domainusage.OutcomeFailure, callErr.Error()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		rec.Outcome, rec.Error = domainusage.OutcomeFailure, fmt.Sprintf("agent answered %d", resp.StatusCode)
	default:
		rec.Outcome, rec.Cost = domainusage.OutcomeSuccess, a.PricePerCall
	}
	res.Outcome = rec.Outcome

	if res.Succeeded() {
		res.Charged = s.settle(ctx, viewerID, a)
		if res.Charged {
			res.Cost = a.PricePerCall
		} else {
			rec.Cost = decimal.Zero
		}
	}

	if err := s.usage.Record(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to record usage", "agent_id", a.ID, "user_id", viewerID, "error", err)
	}
	s.publish(ctx, event.TypeUsageRecorded, rec.ID, viewerID, a.DeveloperID)

	slog.InfoContext(ctx, "agent contacted",
		"agent_id", a.ID,
		"user_id", viewerID,
		"outcome", rec.Outcome,
		"status", resp.StatusCode,
		"latency_ms", res.LatencyMS,
		"cost", res.Cost.String(),
	)

	if !res.Succeeded() {
		s.inbox.Notify(ctx, viewerID, domainnotification.KindContactFail,
			fmt.Sprintf("%s could not complete your request", a.Name), rec.Error)
		if callErr != nil {
			return res, fmt.Errorf("contact agent %s: %w: %w", a.ID, ErrUpstream, callErr)
		}
	}
	return res, nil
}

// settle charges the viewer and pays the developer. It reports whether the
// viewer was charged; a charge can lose a race with another spend.
func (s *Service) settle(ctx context.Context, viewerID uuid.UUID, a domainagent.Agent) bool {
	if !a.PricePerCall.IsPositive() {
		return false
	}

	err := s.locker.WithLock(ctx, domaincredit.LockKey(viewerID), func(ctx context.Context) error {
		_, err := s.credits.Record(ctx, domaincredit.NewCharge(viewerID, a.ID, a.PricePerCall, a.Name))
		return err
	})
	if err != nil {
		slog.WarnContext(ctx, "call succeeded but charge failed", "agent_id", a.ID, "user_id", viewerID, "error", err)
		return false
	}

	if a.DeveloperID != viewerID {
		err = s.locker.WithLock(ctx, domaincredit.LockKey(a.DeveloperID), func(ctx context.Context) error {
			_, err := s.credits.Record(ctx, domaincredit.NewPayout(a.DeveloperID, a.ID, a.PricePerCall, a.Name))
			return err
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to pay developer", "agent_id", a.ID, "developer_id", a.DeveloperID, "error", err)
		}
	}
	s.publish(ctx, event.TypeCreditsChanged, viewerID, viewerID, a.DeveloperID)
	return true
}

// publish invalidates the viewer's own keys right away and notifies both parties.
func (s *Service) publish(ctx context.Context, t event.Type, entityID uuid.UUID, viewers ...uuid.UUID) {
	for _, k := range event.KeysFor(t) {
		if k.Shared() {
			continue
		}
		s.cache.Invalidate(ctx, k, querycache.InvalidateOptions{Refetch: querycache.RefetchNone})
	}
	seen := make(map[uuid.UUID]bool, len(viewers))
	for _, v := range viewers {
		if seen[v] {
			continue
		}
		seen[v] = true
		if err := s.bus.Publish(ctx, event.New(t, entityID).ForViewer(v)); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "type", t, "viewer_id", v, "error", err)
		}
	}
}
