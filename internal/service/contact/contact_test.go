package contact_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	"github.com/alanyang/agent-market/internal/domain/event"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	"github.com/alanyang/agent-market/internal/mocks"
	portagentapi "github.com/alanyang/agent-market/internal/port/agentapi"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
	"github.com/alanyang/agent-market/internal/service/inbox"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type svcDeps struct {
	agents        *mocks.MockCatalogReader
	credits       *mocks.MockCreditRepository
	usage         *mocks.MockUsageRepository
	api           *mocks.MockAgentAPIClient
	notifications *mocks.MockNotificationRepository
	locker        *mocks.MockAdvisoryLocker
	cache         *mocks.MockQueryCache
	bus           *mocks.MockEventBus
	viewerID      uuid.UUID
	ctx           context.Context
	published     []event.Event
}

func newContactSvc(t *testing.T) (*contactsvc.Service, *svcDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := &svcDeps{
		agents:        mocks.NewMockCatalogReader(ctrl),
		credits:       mocks.NewMockCreditRepository(ctrl),
		usage:         mocks.NewMockUsageRepository(ctrl),
		api:           mocks.NewMockAgentAPIClient(ctrl),
		notifications: mocks.NewMockNotificationRepository(ctrl),
		locker:        mocks.NewMockAdvisoryLocker(ctrl),
		cache:         mocks.NewMockQueryCache(ctrl),
		bus:           mocks.NewMockEventBus(ctrl),
		viewerID:      uuid.New(),
	}
	d.ctx = viewer.WithID(context.Background(), d.viewerID)
	d.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e event.Event) { d.published = append(d.published, e) }).
		Return(nil).AnyTimes()
	d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	ib := inbox.NewService(d.notifications, d.bus, nil)
	svc := contactsvc.NewService(d.agents, d.credits, d.usage, d.api, ib, d.locker, d.cache, d.bus)
	return svc, d
}

func pricedAgent(price string) domainagent.Agent {
	a := domainagent.New(uuid.New(), "oracle", "", "qa", nil, decimal.RequireFromString(price), "https://oracle.example.test")
	a.Status = domainagent.StatusPublished
	a.APIKey = "sk-oracle"
	return a
}

func (d *svcDeps) publishedTypes() []event.Type {
	var out []event.Type
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

// ── Contact ───────────────────────────────────────────────────────────────────

func TestContact_SuccessChargesAndPays(t *testing.T) {
	svc, d := newContactSvc(t)
	a := pricedAgent("0.50")
	input := json.RawMessage(`{"q":"why"}`)

	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.credits.EXPECT().GetBalance(gomock.Any(), d.viewerID).Return(domaincredit.Balance{Amount: decimal.NewFromInt(1)}, nil)
	d.api.EXPECT().Contact(gomock.Any(), portagentapi.Request{Endpoint: a.APIEndpoint, APIKey: "sk-oracle", Input: input}).
		Return(portagentapi.Response{StatusCode: http.StatusOK, Body: json.RawMessage(`{"a":"because"}`), Latency: 120 * time.Millisecond}, nil)

	var kinds []domaincredit.Kind
	d.credits.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx domaincredit.Transaction) (domaincredit.Balance, error) {
			kinds = append(kinds, tx.Kind)
			return domaincredit.Balance{}, nil
		}).Times(2)
	d.usage.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r domainusage.Record) error {
			assert.Equal(t, domainusage.OutcomeSuccess, r.Outcome)
			assert.True(t, decimal.RequireFromString("0.50").Equal(r.Cost))
			return nil
		})

	res, err := svc.Contact(d.ctx, d.viewerID, a.ID, input)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.True(t, res.Charged)
	assert.Equal(t, int64(120), res.LatencyMS)
	assert.JSONEq(t, `{"a":"because"}`, string(res.Output))
	assert.Equal(t, []domaincredit.Kind{domaincredit.KindUsage, domaincredit.KindPayout}, kinds)
	assert.Contains(t, d.publishedTypes(), event.TypeCreditsChanged)
	assert.Contains(t, d.publishedTypes(), event.TypeUsageRecorded)
}

func TestContact_InsufficientFunds(t *testing.T) {
	svc, d := newContactSvc(t)
	a := pricedAgent("5")

	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.credits.EXPECT().GetBalance(gomock.Any(), d.viewerID).Return(domaincredit.Balance{Amount: decimal.NewFromInt(1)}, nil)

	_, err := svc.Contact(d.ctx, d.viewerID, a.ID, nil)
	assert.ErrorIs(t, err, domaincredit.ErrInsufficientFunds)
	assert.Empty(t, d.published)
}

func TestContact_UnpublishedAgent(t *testing.T) {
	svc, d := newContactSvc(t)
	a := pricedAgent("1")
	a.Status = domainagent.StatusDraft
	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)

	_, err := svc.Contact(d.ctx, d.viewerID, a.ID, nil)
	assert.ErrorIs(t, err, domainagent.ErrNotPublished)
}

func TestContact_Failures(t *testing.T) {
	tests := []struct {
		name     string
		resp     portagentapi.Response
		callErr  error
		wantErr  error
		wantCode int
	}{
		{name: "upstream 500", resp: portagentapi.Response{StatusCode: http.StatusInternalServerError}, wantCode: http.StatusInternalServerError},
		{name: "unreachable", callErr: errors.New("dial tcp: refused"), wantErr: contactsvc.ErrUpstream},
		{
			name:    "oversized 200 reply",
			resp:    portagentapi.Response{StatusCode: http.StatusOK},
			callErr: fmt.Errorf("reading agent response: %w", portagentapi.ErrResponseTooLarge),
			wantErr: portagentapi.ErrResponseTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newContactSvc(t)
			a := pricedAgent("1")

			d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
			d.credits.EXPECT().GetBalance(gomock.Any(), d.viewerID).Return(domaincredit.Balance{Amount: decimal.NewFromInt(2)}, nil)
			d.api.EXPECT().Contact(gomock.Any(), gomock.Any()).Return(tt.resp, tt.callErr)
			d.credits.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
			d.usage.EXPECT().Record(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, r domainusage.Record) error {
					assert.Equal(t, domainusage.OutcomeFailure, r.Outcome)
					assert.True(t, r.Cost.IsZero())
					assert.NotEmpty(t, r.Error)
					return nil
				})
			d.notifications.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, n domainnotification.Notification) (domainnotification.Notification, error) {
					assert.Equal(t, domainnotification.KindContactFail, n.Kind)
					assert.Equal(t, d.viewerID, n.UserID)
					return n, nil
				})

			res, err := svc.Contact(d.ctx, d.viewerID, a.ID, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, res.StatusCode)
			}
			assert.False(t, res.Succeeded())
			assert.False(t, res.Charged)
			assert.NotContains(t, d.publishedTypes(), event.TypeCreditsChanged)
		})
	}
}

func TestContact_LostChargeRaceStillReturnsOutput(t *testing.T) {
	svc, d := newContactSvc(t)
	a := pricedAgent("1")

	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.credits.EXPECT().GetBalance(gomock.Any(), d.viewerID).Return(domaincredit.Balance{Amount: decimal.NewFromInt(1)}, nil)
	d.api.EXPECT().Contact(gomock.Any(), gomock.Any()).Return(portagentapi.Response{StatusCode: http.StatusOK, Body: json.RawMessage(`{}`)}, nil)
	d.credits.EXPECT().Record(gomock.Any(), gomock.Any()).Return(domaincredit.Balance{}, domaincredit.ErrInsufficientFunds)
	d.usage.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Contact(d.ctx, d.viewerID, a.ID, nil)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.False(t, res.Charged)
	assert.True(t, res.Cost.IsZero())
}
