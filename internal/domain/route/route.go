package route

import (
	"slices"
	"strings"

	"github.com/alanyang/agent-market/internal/domain/querykey"
)

// Entry binds a route pattern to the queries its pages read.
type Entry struct {
	Pattern string
	Keys    []querykey.Key
}

// Table is an immutable, ordered route → query-key mapping.
type Table struct {
	entries []Entry
}

func NewTable(entries ...Entry) Table {
	cp := make([]Entry, len(entries))
	for i, e := range entries {
		cp[i] = Entry{Pattern: e.Pattern, Keys: slices.Clone(e.Keys)}
	}
	return Table{entries: cp}
}

var DefaultTable = NewTable(
	Entry{Pattern: "/marketplace", Keys: []querykey.Key{querykey.Agents, querykey.Categories, querykey.FeaturedAgents}},
	Entry{Pattern: "/agents", Keys: []querykey.Key{querykey.Agents, querykey.AgentReviews}},
	Entry{Pattern: "/developer/dashboard", Keys: []querykey.Key{querykey.DeveloperAgents, querykey.DeveloperStats, querykey.Deployments}},
	Entry{Pattern: "/developer/agents", Keys: []querykey.Key{querykey.DeveloperAgents}},
	Entry{Pattern: "/user/dashboard", Keys: []querykey.Key{querykey.UserProfile, querykey.UsageStats, querykey.Credits, querykey.Notifications}},
	Entry{Pattern: "/user/usage", Keys: []querykey.Key{querykey.UsageStats, querykey.UsageHistory}},
	Entry{Pattern: "/user/credits", Keys: []querykey.Key{querykey.Credits, querykey.Transactions}},
	Entry{Pattern: "/user/notifications", Keys: []querykey.Key{querykey.Notifications}},
)

// Match returns the keys of every pattern that path starts with, in table
// order. Matching is a raw, case-sensitive prefix test and does not stop at
// the first hit. A key shared by several matching patterns appears once.
func (t Table) Match(path string) []querykey.Key {
	var keys []querykey.Key
	seen := make(map[querykey.Key]bool)
	for _, e := range t.entries {
		if !strings.HasPrefix(path, e.Pattern) {
			continue
		}
		for _, k := range e.Keys {
			if seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Lookup returns the keys of the pattern equal to route.
func (t Table) Lookup(route string) ([]querykey.Key, bool) {
	for _, e := range t.entries {
		if e.Pattern == route {
			return slices.Clone(e.Keys), true
		}
	}
	return nil, false
}

func (t Table) Patterns() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Pattern
	}
	return out
}

func (t Table) Len() int { return len(t.entries) }
