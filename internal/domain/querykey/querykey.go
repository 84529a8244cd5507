package querykey

import "strings"

const sep = "/"

// Key names one cached query result. Keys are opaque to the cache; the
// only property it inspects is whether the result is shared across viewers.
type Key string

const (
	Agents          Key = "agents"
	Categories      Key = "categories"
	FeaturedAgents  Key = "featured-agents"
	AgentReviews    Key = "agent-reviews"
	DeveloperAgents Key = "developer-agents"
	DeveloperStats  Key = "developer-stats"
	Deployments     Key = "deployments"
	UserProfile     Key = "user-profile"
	UsageStats      Key = "usage-stats"
	UsageHistory    Key = "usage-history"
	Credits         Key = "credits"
	Transactions    Key = "transactions"
	Notifications   Key = "notifications"
)

// shared keys hold catalog data that is identical for every viewer.
var shared = map[Key]bool{
	Agents:         true,
	Categories:     true,
	FeaturedAgents: true,
	AgentReviews:   true,
}

// With derives a child key, e.g. Agents.With(id) for a single agent.
// Invalidating the parent also invalidates every child.
func (k Key) With(parts ...string) Key {
	if len(parts) == 0 {
		return k
	}
	return Key(string(k) + sep + strings.Join(parts, sep))
}

// Root returns the key k was derived from, or k itself.
func (k Key) Root() Key {
	if i := strings.Index(string(k), sep); i >= 0 {
		return k[:i]
	}
	return k
}

// Covers reports whether invalidating k must also invalidate other.
func (k Key) Covers(other Key) bool {
	return other == k || strings.HasPrefix(string(other), string(k)+sep)
}

// Shared reports whether the result behind k is viewer-independent.
func (k Key) Shared() bool { return shared[k.Root()] }

func (k Key) String() string { return string(k) }
