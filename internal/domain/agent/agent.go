package agent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("agent not found")
	ErrNotPublished  = errors.New("agent is not published")
	ErrNotOwner      = errors.New("agent belongs to another developer")
	ErrInvalidStatus = errors.New("invalid agent status transition")
	ErrInvalid       = errors.New("invalid agent")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusDraft, StatusArchived},
	StatusArchived:  {StatusDraft},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Agent struct {
	ID           uuid.UUID       `json:"id"`
	DeveloperID  uuid.UUID       `json:"developer_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	PricePerCall decimal.Decimal `json:"price_per_call"`
	APIEndpoint  string          `json:"api_endpoint"`
	APIKey       string          `json:"-"`
	Status       Status          `json:"status"`
	Featured     bool            `json:"featured"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"review_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func New(developerID uuid.UUID, name, description, category string, tags []string, price decimal.Decimal, endpoint string) Agent {
	now := time.Now().UTC()
	if tags == nil {
		tags = []string{}
	}
	return Agent{
		ID:           uuid.New(),
		DeveloperID:  developerID,
		Name:         name,
		Description:  description,
		Category:     category,
		Tags:         tags,
		PricePerCall: price,
		APIEndpoint:  endpoint,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks the fields a listing cannot be published without.
func (a Agent) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if a.PricePerCall.IsNegative() {
		return fmt.Errorf("%w: price_per_call must not be negative", ErrInvalid)
	}
	if !strings.HasPrefix(a.APIEndpoint, "http://") && !strings.HasPrefix(a.APIEndpoint, "https://") {
		return fmt.Errorf("%w: api_endpoint must be an http(s) URL", ErrInvalid)
	}
	return nil
}

func (a Agent) IsPublished() bool { return a.Status == StatusPublished }

// Matches reports whether the agent satisfies the catalog filters.
func (a Agent) Matches(f ListFilters) bool {
	if f.Category != nil && !strings.EqualFold(a.Category, *f.Category) {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price_low"
	SortPriceHigh Sort = "price_high"
	SortRating    Sort = "rating"
)

type ListFilters struct {
	DeveloperID *uuid.UUID
	Status      *Status
	Category    *string
	Query       string
	Sort        Sort
}

// Update carries optional field changes from a developer.
type Update struct {
	Name         *string
	Description  *string
	Category     *string
	Tags         []string
	PricePerCall *decimal.Decimal
	APIEndpoint  *string
	APIKey       *string
}

func (a *Agent) Apply(u Update) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.Category != nil {
		a.Category = *u.Category
	}
	if u.Tags != nil {
		a.Tags = u.Tags
	}
	if u.PricePerCall != nil {
		a.PricePerCall = *u.PricePerCall
	}
	if u.APIEndpoint != nil {
		a.APIEndpoint = *u.APIEndpoint
	}
	if u.APIKey != nil {
		a.APIKey = *u.APIKey
	}
	a.UpdatedAt = time.Now().UTC()
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	AgentID   uuid.UUID `json:"agent_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReview(agentID, userID uuid.UUID, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}
	return Review{
		ID:        uuid.New(),
		AgentID:   agentID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}, nil
}
