package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/agent-market/internal/adapter/memory"
	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaincredit "github.com/alanyang/agent-market/internal/domain/credit"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	"github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	"github.com/alanyang/agent-market/internal/mocks"
	portagentapi "github.com/alanyang/agent-market/internal/port/agentapi"
	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
	"github.com/alanyang/agent-market/internal/service/inbox"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type toolsDeps struct {
	profiles      *mocks.MockProfileRepository
	agents        *mocks.MockAgentRepository
	credits       *mocks.MockCreditRepository
	usage         *mocks.MockUsageRepository
	notifications *mocks.MockNotificationRepository
	api           *mocks.MockAgentAPIClient
	locker        *mocks.MockAdvisoryLocker
	bus           *mocks.MockEventBus
	reg           *SessionRegistry
	srv           *mcpserver.MCPServer
	svcs          Services
}

func newToolsDeps(t *testing.T) toolsDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := toolsDeps{
		profiles:      mocks.NewMockProfileRepository(ctrl),
		agents:        mocks.NewMockAgentRepository(ctrl),
		credits:       mocks.NewMockCreditRepository(ctrl),
		usage:         mocks.NewMockUsageRepository(ctrl),
		notifications: mocks.NewMockNotificationRepository(ctrl),
		api:           mocks.NewMockAgentAPIClient(ctrl),
		locker:        mocks.NewMockAdvisoryLocker(ctrl),
		bus:           mocks.NewMockEventBus(ctrl),
		reg:           NewSessionRegistry(),
		srv:           mcpserver.NewMCPServer("test", "0.0.0"),
	}
	d.reg.SetMCPServer(d.srv)

	cache := memory.NewCache()
	t.Cleanup(cache.Wait)
	ib := inbox.NewService(d.notifications, d.bus, d.reg)
	d.svcs = Services{
		Profiles: d.profiles,
		Catalog:  catalogsvc.NewService(d.agents, cache, d.bus, time.Minute),
		Contact:  contactsvc.NewService(d.agents, d.credits, d.usage, d.api, ib, d.locker, cache, d.bus),
		Account: accountsvc.NewService(d.profiles, d.usage, d.credits, d.notifications, ib,
			d.locker, mocks.NewMockIdempotencyStore(ctrl), cache, d.bus, time.Minute),
	}
	return d
}

// fakeSession is a minimal mcp-go client session with a buffered channel.
type fakeSession struct {
	id string
	ch chan mcpmcp.JSONRPCNotification
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id, ch: make(chan mcpmcp.JSONRPCNotification, 4)}
}

func (s *fakeSession) SessionID() string { return s.id }

func (s *fakeSession) NotificationChannel() chan<- mcpmcp.JSONRPCNotification { return s.ch }

func (s *fakeSession) Initialize() {}

func (s *fakeSession) Initialized() bool { return true }

func sessionCtx(d toolsDeps, s *fakeSession) context.Context {
	return d.srv.WithContext(context.Background(), s)
}

func makeReq(args map[string]any) mcpmcp.CallToolRequest {
	var req mcpmcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(r *mcpmcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	if tc, ok := r.Content[0].(mcpmcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func publishedAgent(price int64) domainagent.Agent {
	a := domainagent.New(uuid.New(), "translator", "translates text", "language", []string{"i18n"},
		decimal.NewFromInt(price), "https://translator.test")
	a.Status = domainagent.StatusPublished
	return a
}

// ── signInHandler ─────────────────────────────────────────────────────────────

func TestSignInHandler(t *testing.T) {
	viewerID := uuid.New()

	tests := []struct {
		name         string
		args         map[string]any
		setup        func(d toolsDeps)
		wantContains string
		wantBound    bool
	}{
		{
			name: "known profile binds the session",
			args: map[string]any{"viewer_id": viewerID.String()},
			setup: func(d toolsDeps) {
				d.profiles.EXPECT().GetByID(gomock.Any(), viewerID).
					Return(profile.Profile{ID: viewerID, Role: profile.RoleDeveloper}, nil)
			},
			wantContains: `"role":"developer"`,
			wantBound:    true,
		},
		{
			name:         "invalid viewer_id",
			args:         map[string]any{"viewer_id": "nope"},
			setup:        func(toolsDeps) {},
			wantContains: "error: invalid viewer_id",
		},
		{
			name: "unknown profile",
			args: map[string]any{"viewer_id": viewerID.String()},
			setup: func(d toolsDeps) {
				d.profiles.EXPECT().GetByID(gomock.Any(), viewerID).Return(profile.Profile{}, profile.ErrNotFound)
			},
			wantContains: "profile not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newToolsDeps(t)
			tt.setup(d)
			s := newFakeSession("s-1")

			res, err := signInHandler(d.reg, d.profiles)(sessionCtx(d, s), makeReq(tt.args))
			require.NoError(t, err)
			assert.Contains(t, resultText(res), tt.wantContains)
			assert.Equal(t, tt.wantBound, d.reg.IsConnected(viewerID))
		})
	}
}

func TestSignInHandler_NoSession(t *testing.T) {
	d := newToolsDeps(t)
	res, err := signInHandler(d.reg, d.profiles)(context.Background(), makeReq(map[string]any{"viewer_id": uuid.NewString()}))
	require.NoError(t, err)
	assert.Equal(t, "error: no session", resultText(res))
}

// ── searchAgentsHandler / getAgentHandler ─────────────────────────────────────

func TestSearchAgentsHandler(t *testing.T) {
	d := newToolsDeps(t)
	match := publishedAgent(1)
	other := publishedAgent(1)
	other.Name, other.Description, other.Tags = "summariser", "summaries", nil
	d.agents.EXPECT().List(gomock.Any(), gomock.Any()).Return([]domainagent.Agent{match, other}, nil)

	res, err := searchAgentsHandler(d.reg, d.svcs.Catalog)(context.Background(), makeReq(map[string]any{"query": "I18N"}))
	require.NoError(t, err)

	var got []domainagent.Agent
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
}

func TestGetAgentHandler(t *testing.T) {
	d := newToolsDeps(t)
	a := publishedAgent(2)
	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.agents.EXPECT().ListReviews(gomock.Any(), a.ID).Return(nil, nil)

	res, err := getAgentHandler(d.reg, d.svcs.Catalog)(context.Background(), makeReq(map[string]any{"agent_id": a.ID.String()}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), a.ID.String())
	assert.Contains(t, resultText(res), `"reviews":[]`)

	res, err = getAgentHandler(d.reg, d.svcs.Catalog)(context.Background(), makeReq(map[string]any{"agent_id": "x"}))
	require.NoError(t, err)
	assert.Equal(t, "error: invalid agent_id", resultText(res))
}

// ── contactAgentHandler ───────────────────────────────────────────────────────

func TestContactAgentHandler_RequiresSignIn(t *testing.T) {
	d := newToolsDeps(t)
	res, err := contactAgentHandler(d.reg, d.svcs.Contact)(sessionCtx(d, newFakeSession("anon")),
		makeReq(map[string]any{"agent_id": uuid.NewString(), "input": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, errSignIn, resultText(res))
}

func TestContactAgentHandler_FreeAgent(t *testing.T) {
	d := newToolsDeps(t)
	v := viewer.Viewer{ID: uuid.New(), Role: profile.RoleUser}
	s := newFakeSession("s-1")
	d.reg.Bind(s.SessionID(), v)

	a := publishedAgent(0)
	d.agents.EXPECT().GetByID(gomock.Any(), a.ID).Return(a, nil)
	d.credits.EXPECT().GetBalance(gomock.Any(), v.ID).Return(domaincredit.Balance{UserID: v.ID}, nil)
	d.api.EXPECT().Contact(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req portagentapi.Request) (portagentapi.Response, error) {
			assert.JSONEq(t, `{"input":"bonjour"}`, string(req.Input))
			return portagentapi.Response{StatusCode: 200, Body: json.RawMessage(`{"output":"hello"}`)}, nil
		})
	d.usage.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	res, err := contactAgentHandler(d.reg, d.svcs.Contact)(sessionCtx(d, s),
		makeReq(map[string]any{"agent_id": a.ID.String(), "input": "bonjour"}))
	require.NoError(t, err)

	var got contactsvc.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.True(t, got.Succeeded())
	assert.JSONEq(t, `{"output":"hello"}`, string(got.Output))
}

func TestToInput(t *testing.T) {
	assert.JSONEq(t, `{"q":1}`, string(toInput(`{"q":1}`)))
	assert.JSONEq(t, `{"input":"plain text"}`, string(toInput("plain text")))
}

// ── listNotificationsHandler ──────────────────────────────────────────────────

func TestListNotificationsHandler(t *testing.T) {
	d := newToolsDeps(t)
	v := viewer.Viewer{ID: uuid.New(), Role: profile.RoleUser}
	s := newFakeSession("s-1")
	d.reg.Bind(s.SessionID(), v)

	n := domainnotification.New(v.ID, domainnotification.KindCredits, "Credits added", "")
	d.notifications.EXPECT().List(gomock.Any(), v.ID, gomock.Any()).Return([]domainnotification.Notification{n}, nil)

	res, err := listNotificationsHandler(d.reg, d.svcs.Account)(sessionCtx(d, s), makeReq(map[string]any{"unread_only": true}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "Credits added")
}

// ── NotifyViewer ──────────────────────────────────────────────────────────────

func TestNotifyViewer_PushesToBoundSessions(t *testing.T) {
	d := newToolsDeps(t)
	v := viewer.Viewer{ID: uuid.New(), Role: profile.RoleUser}
	s := newFakeSession("s-push")
	require.NoError(t, d.srv.RegisterSession(context.Background(), s))
	d.reg.Bind(s.SessionID(), v)

	require.NoError(t, d.reg.NotifyViewer(context.Background(), v.ID, map[string]string{"title": "hi"}))

	select {
	case n := <-s.ch:
		assert.Equal(t, "notifications/message", n.Method)
		assert.Equal(t, "hi", n.Params.AdditionalFields["title"])
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}
