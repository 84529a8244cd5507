package usage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Record is one proxied call to an external agent.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AgentID     uuid.UUID       `json:"agent_id"`
	DeveloperID uuid.UUID       `json:"developer_id"`
	Outcome     Outcome         `json:"outcome"`
	StatusCode  int             `json:"status_code"`
	Latency     time.Duration   `json:"latency_ns"`
	Cost        decimal.Decimal `json:"cost"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func New(userID, agentID, developerID uuid.UUID) Record {
	return Record{
		ID:          uuid.New(),
		UserID:      userID,
		AgentID:     agentID,
		DeveloperID: developerID,
		Cost:        decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}

// Stats aggregates usage for a dashboard.
type Stats struct {
	TotalCalls   int             `json:"total_calls"`
	FailedCalls  int             `json:"failed_calls"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	AvgLatencyMS int64           `json:"avg_latency_ms"`
	ByAgent      []AgentStats    `json:"by_agent"`
}

type AgentStats struct {
	AgentID uuid.UUID       `json:"agent_id"`
	Calls   int             `json:"calls"`
	Cost    decimal.Decimal `json:"cost"`
}

// Summarize folds records into Stats. ByAgent keeps first-seen order.
func Summarize(records []Record) Stats {
	s := Stats{TotalCost: decimal.Zero, ByAgent: []AgentStats{}}
	var latency time.Duration
	idx := make(map[uuid.UUID]int)
	for _, r := range records {
		s.TotalCalls++
		if r.Outcome == OutcomeFailure {
			s.FailedCalls++
		}
		s.TotalCost = s.TotalCost.Add(r.Cost)
		latency += r.Latency

		i, ok := idx[r.AgentID]
		if !ok {
			i = len(s.ByAgent)
			idx[r.AgentID] = i
			s.ByAgent = append(s.ByAgent, AgentStats{AgentID: r.AgentID, Cost: decimal.Zero})
		}
		s.ByAgent[i].Calls++
		s.ByAgent[i].Cost = s.ByAgent[i].Cost.Add(r.Cost)
	}
	if s.TotalCalls > 0 {
		s.AvgLatencyMS = (latency / time.Duration(s.TotalCalls)).Milliseconds()
	}
	return s
}

type ListFilters struct {
	UserID      *uuid.UUID
	DeveloperID *uuid.UUID
	AgentID     *uuid.UUID
	Since       *time.Time
	Limit       int
}
