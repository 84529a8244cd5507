package developer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
	"github.com/alanyang/agent-market/internal/domain/event"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
	portagent "github.com/alanyang/agent-market/internal/port/agent"
	portagentapi "github.com/alanyang/agent-market/internal/port/agentapi"
	portdeployment "github.com/alanyang/agent-market/internal/port/deployment"
	portbus "github.com/alanyang/agent-market/internal/port/eventbus"
	"github.com/alanyang/agent-market/internal/port/querycache"
	portusage "github.com/alanyang/agent-market/internal/port/usage"
	"github.com/alanyang/agent-market/internal/service/inbox"
)

// Draft is what a developer submits to list a new agent.
type Draft struct {
	Name         string
	Description  string
	Category     string
	Tags         []string
	PricePerCall decimal.Decimal
	APIEndpoint  string
	APIKey       string
}

// Stats is the developer dashboard summary.
type Stats struct {
	Agents    int               `json:"agents"`
	Published int               `json:"published"`
	Revenue   decimal.Decimal   `json:"revenue"`
	Usage     domainusage.Stats `json:"usage"`
}

// Service manages a developer's listings and deployments.
// [SRP] Every method acts on behalf of developerID and refuses other developers' agents.
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	agents      portagent.Repository
	deployments portdeployment.Repository
	usage       portusage.Repository
	api         portagentapi.Client
	inbox       *inbox.Service
	cache       querycache.Cache
	bus         portbus.EventBus
	staleTime   time.Duration
}

func NewService(
	agents portagent.Repository,
	deployments portdeployment.Repository,
	usage portusage.Repository,
	api portagentapi.Client,
	inbox *inbox.Service,
	cache querycache.Cache,
	bus portbus.EventBus,
	staleTime time.Duration,
) *Service {
	return &Service{
		agents:      agents,
		deployments: deployments,
		usage:       usage,
		api:         api,
		inbox:       inbox,
		cache:       cache,
		bus:         bus,
		staleTime:   staleTime,
	}
}

func (s *Service) CreateAgent(ctx context.Context, developerID uuid.UUID, d Draft) (domainagent.Agent, error) {
	a := domainagent.New(developerID, d.Name, d.Description, d.Category, d.Tags, d.PricePerCall, d.APIEndpoint)
	a.APIKey = d.APIKey
	if err := a.Validate(); err != nil {
		return domainagent.Agent{}, fmt.Errorf("create agent: %w", err)
	}

	created, err := s.agents.Create(ctx, a)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("create agent: %w", err)
	}
	s.changed(ctx, event.TypeAgentUpdated, developerID, created.ID)
	return created, nil
}

func (s *Service) UpdateAgent(ctx context.Context, developerID, agentID uuid.UUID, u domainagent.Update) (domainagent.Agent, error) {
	a, err := s.owned(ctx, developerID, agentID)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("update agent: %w", err)
	}
	a.Apply(u)
	if err := a.Validate(); err != nil {
		return domainagent.Agent{}, fmt.Errorf("update agent: %w", err)
	}

	updated, err := s.agents.Update(ctx, a)
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("update agent: %w", err)
	}
	s.changed(ctx, event.TypeAgentUpdated, developerID, agentID)
	return updated, nil
}

// Publish lists a draft agent in the public catalog.
func (s *Service) Publish(ctx context.Context, developerID, agentID uuid.UUID) error {
	a, err := s.owned(ctx, developerID, agentID)
	if err != nil {
		return fmt.Errorf("publish agent: %w", err)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("publish agent: %w", err)
	}
	if err := s.transition(ctx, a, domainagent.StatusPublished); err != nil {
		return fmt.Errorf("publish agent: %w", err)
	}
	s.changed(ctx, event.TypeAgentPublished, developerID, agentID)
	return nil
}

func (s *Service) Archive(ctx context.Context, developerID, agentID uuid.UUID) error {
	a, err := s.owned(ctx, developerID, agentID)
	if err != nil {
		return fmt.Errorf("archive agent: %w", err)
	}
	if err := s.transition(ctx, a, domainagent.StatusArchived); err != nil {
		return fmt.Errorf("archive agent: %w", err)
	}
	s.changed(ctx, event.TypeAgentArchived, developerID, agentID)
	return nil
}

func (s *Service) ListAgents(ctx context.Context, developerID uuid.UUID) ([]domainagent.Agent, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.DeveloperAgents, s.staleTime,
		func(ctx context.Context) ([]domainagent.Agent, error) {
			return s.agents.List(ctx, domainagent.ListFilters{DeveloperID: &developerID})
		})
	if err != nil {
		return nil, fmt.Errorf("list developer agents: %w", err)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, developerID uuid.UUID) (Stats, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.DeveloperStats, s.staleTime,
		func(ctx context.Context) (Stats, error) {
			agents, err := s.agents.List(ctx, domainagent.ListFilters{DeveloperID: &developerID})
			if err != nil {
				return Stats{}, err
			}
			records, err := s.usage.List(ctx, domainusage.ListFilters{DeveloperID: &developerID})
			if err != nil {
				return Stats{}, err
			}
			st := Stats{Agents: len(agents), Usage: domainusage.Summarize(records)}
			for _, a := range agents {
				if a.IsPublished() {
					st.Published++
				}
			}
			st.Revenue = st.Usage.TotalCost
			return st, nil
		})
	if err != nil {
		return Stats{}, fmt.Errorf("developer stats: %w", err)
	}
	return out, nil
}

// Deploy records a deployment of the agent's endpoint and health-checks it.
// The deployment ends active if the endpoint answers, failed otherwise.
func (s *Service) Deploy(ctx context.Context, developerID, agentID uuid.UUID, environment string) (domaindeployment.Deployment, error) {
	a, err := s.owned(ctx, developerID, agentID)
	if err != nil {
		return domaindeployment.Deployment{}, fmt.Errorf("deploy agent: %w", err)
	}

	d, err := s.deployments.Create(ctx, domaindeployment.New(a.ID, developerID, environment, a.APIEndpoint))
	if err != nil {
		return domaindeployment.Deployment{}, fmt.Errorf("deploy agent: %w", err)
	}

	to, detail := domaindeployment.StatusActive, "endpoint reachable"
	if err := s.api.Probe(ctx, a.APIEndpoint, a.APIKey); err != nil {
		to, detail = domaindeployment.StatusFailed, err.Error()
	}
	if err := s.deployments.UpdateStatus(ctx, d.ID, domaindeployment.StatusPending, to, detail); err != nil {
		return domaindeployment.Deployment{}, fmt.Errorf("deploy agent: %w", err)
	}
	d.Status, d.Detail = to, detail
	d.UpdatedAt = time.Now().UTC()

	slog.InfoContext(ctx, "deployment finished", "deployment_id", d.ID, "agent_id", a.ID, "status", to)
	s.changed(ctx, event.TypeDeploymentUpdated, developerID, d.ID)
	s.inbox.Notify(ctx, developerID, domainnotification.KindDeployment,
		fmt.Sprintf("Deployment of %s is %s", a.Name, to), detail)
	return d, nil
}

func (s *Service) ListDeployments(ctx context.Context, developerID uuid.UUID) ([]domaindeployment.Deployment, error) {
	out, err := querycache.Get(ctx, s.cache, querykey.Deployments, s.staleTime,
		func(ctx context.Context) ([]domaindeployment.Deployment, error) {
			return s.deployments.List(ctx, domaindeployment.ListFilters{DeveloperID: &developerID})
		})
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	return out, nil
}

func (s *Service) StopDeployment(ctx context.Context, developerID, deploymentID uuid.UUID) error {
	d, err := s.deployments.GetByID(ctx, deploymentID)
	if err != nil {
		return fmt.Errorf("stop deployment: %w", err)
	}
	if d.DeveloperID != developerID {
		return fmt.Errorf("stop deployment: %w", domaindeployment.ErrNotFound)
	}
	if !d.Status.CanTransitionTo(domaindeployment.StatusStopped) {
		return fmt.Errorf("stop deployment from %s: %w", d.Status, domaindeployment.ErrInvalidTransition)
	}
	if err := s.deployments.UpdateStatus(ctx, d.ID, d.Status, domaindeployment.StatusStopped, "stopped by developer"); err != nil {
		return fmt.Errorf("stop deployment: %w", err)
	}
	s.changed(ctx, event.TypeDeploymentUpdated, developerID, d.ID)
	return nil
}

func (s *Service) owned(ctx context.Context, developerID, agentID uuid.UUID) (domainagent.Agent, error) {
	a, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return domainagent.Agent{}, err
	}
	if a.DeveloperID != developerID {
		return domainagent.Agent{}, domainagent.ErrNotOwner
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, a domainagent.Agent, to domainagent.Status) error {
	if !a.Status.CanTransitionTo(to) {
		return fmt.Errorf("%s to %s: %w", a.Status, to, domainagent.ErrInvalidStatus)
	}
	return s.agents.UpdateStatus(ctx, a.ID, a.Status, to)
}

// changed invalidates this viewer's copies of the affected queries right away
// and publishes the event so other instances and viewers catch up.
func (s *Service) changed(ctx context.Context, t event.Type, developerID, entityID uuid.UUID) {
	for _, k := range event.KeysFor(t) {
		s.cache.Invalidate(ctx, k, querycache.InvalidateOptions{Refetch: querycache.RefetchNone})
	}
	if err := s.bus.Publish(ctx, event.New(t, entityID).ForViewer(developerID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", t, "entity_id", entityID, "error", err)
	}
}
