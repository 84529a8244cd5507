package deployment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("deployment not found")
	ErrInvalidTransition = errors.New("invalid deployment status transition")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFailed  Status = "failed"
	StatusStopped Status = "stopped"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusFailed},
	StatusActive:  {StatusStopped, StatusFailed},
	StatusFailed:  {},
	StatusStopped: {},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool { return len(transitions[s]) == 0 }

type Deployment struct {
	ID          uuid.UUID `json:"id"`
	AgentID     uuid.UUID `json:"agent_id"`
	DeveloperID uuid.UUID `json:"developer_id"`
	Environment string    `json:"environment"`
	Endpoint    string    `json:"endpoint"`
	Status      Status    `json:"status"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func New(agentID, developerID uuid.UUID, environment, endpoint string) Deployment {
	now := time.Now().UTC()
	if environment == "" {
		environment = "production"
	}
	return Deployment{
		ID:          uuid.New(),
		AgentID:     agentID,
		DeveloperID: developerID,
		Environment: environment,
		Endpoint:    endpoint,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type ListFilters struct {
	DeveloperID *uuid.UUID
	AgentID     *uuid.UUID
	Status      *Status
}
