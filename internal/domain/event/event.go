package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/agent-market/internal/domain/querykey"
)

type Type string

const (
	TypeAgentPublished      Type = "agent_published"
	TypeAgentUpdated        Type = "agent_updated"
	TypeAgentArchived       Type = "agent_archived"
	TypeReviewPosted        Type = "review_posted"
	TypeDeploymentUpdated   Type = "deployment_updated"
	TypeUsageRecorded       Type = "usage_recorded"
	TypeCreditsChanged      Type = "credits_changed"
	TypeNotificationCreated Type = "notification_created"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelCatalog   Channel = "catalog"
	ChannelDeveloper Channel = "developer"
	ChannelAccount   Channel = "account"
)

// Channels lists every channel in subscription order.
var Channels = []Channel{ChannelCatalog, ChannelDeveloper, ChannelAccount}

var typeToChannel = map[Type]Channel{
	TypeAgentPublished:      ChannelCatalog,
	TypeAgentUpdated:        ChannelCatalog,
	TypeAgentArchived:       ChannelCatalog,
	TypeReviewPosted:        ChannelCatalog,
	TypeDeploymentUpdated:   ChannelDeveloper,
	TypeUsageRecorded:       ChannelAccount,
	TypeCreditsChanged:      ChannelAccount,
	TypeNotificationCreated: ChannelAccount,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// typeToKeys lists the cached queries an event makes stale.
var typeToKeys = map[Type][]querykey.Key{
	TypeAgentPublished:      {querykey.Agents, querykey.Categories, querykey.FeaturedAgents, querykey.DeveloperAgents},
	TypeAgentUpdated:        {querykey.Agents, querykey.Categories, querykey.FeaturedAgents, querykey.DeveloperAgents},
	TypeAgentArchived:       {querykey.Agents, querykey.Categories, querykey.FeaturedAgents, querykey.DeveloperAgents},
	TypeReviewPosted:        {querykey.AgentReviews, querykey.Agents, querykey.FeaturedAgents},
	TypeDeploymentUpdated:   {querykey.Deployments},
	TypeUsageRecorded:       {querykey.UsageStats, querykey.UsageHistory, querykey.DeveloperStats},
	TypeCreditsChanged:      {querykey.Credits, querykey.Transactions},
	TypeNotificationCreated: {querykey.Notifications},
}

// KeysFor returns the query keys invalidated by an event of type t.
func KeysFor(t Type) []querykey.Key { return typeToKeys[t] }

// Event carries identifiers only, not full state.
// ViewerID is uuid.Nil for public events; otherwise only that viewer's
// connections and cache scope are affected.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	ViewerID  uuid.UUID `json:"viewer_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// ForViewer scopes the event to a single viewer.
func (e Event) ForViewer(id uuid.UUID) Event {
	e.ViewerID = id
	return e
}

func (e Event) IsPublic() bool { return e.ViewerID == uuid.Nil }
