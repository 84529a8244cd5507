package route_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	"github.com/alanyang/agent-market/internal/domain/route"
	"github.com/alanyang/agent-market/internal/domain/viewer"
)

func TestMatch_PrefixOfEveryPattern(t *testing.T) {
	// Every pattern matches itself and any sub-path, and yields all its keys.
	for _, pattern := range route.DefaultTable.Patterns() {
		want, ok := route.DefaultTable.Lookup(pattern)
		require.True(t, ok)

		for _, path := range []string{pattern, pattern + "/child", pattern + "?tab=1"} {
			got := route.DefaultTable.Match(path)
			for _, k := range want {
				assert.Contains(t, got, k, "path %s", path)
			}
		}
	}
}

func TestMatch_SubPathMatchesSameKeys(t *testing.T) {
	assert.Equal(t,
		route.DefaultTable.Match("/user/credits"),
		route.DefaultTable.Match("/user/credits/purchase"),
	)
	assert.Equal(t, []querykey.Key{querykey.Credits, querykey.Transactions}, route.DefaultTable.Match("/user/credits/purchase"))
}

func TestMatch_CaseSensitive(t *testing.T) {
	assert.Empty(t, route.DefaultTable.Match("/Marketplace"))
	assert.Empty(t, route.DefaultTable.Match("/"))
}

func TestMatch_AllMatchingPatternsNoDuplicates(t *testing.T) {
	tbl := route.NewTable(
		route.Entry{Pattern: "/a", Keys: []querykey.Key{"one", "two"}},
		route.Entry{Pattern: "/a/b", Keys: []querykey.Key{"two", "three"}},
		route.Entry{Pattern: "/c", Keys: []querykey.Key{"four"}},
	)
	assert.Equal(t, []querykey.Key{"one", "two", "three"}, tbl.Match("/a/b/c"))
	assert.Equal(t, []querykey.Key{"one", "two"}, tbl.Match("/a"))
}

func TestLookup_ExactOnly(t *testing.T) {
	keys, ok := route.DefaultTable.Lookup("/marketplace")
	require.True(t, ok)
	assert.Equal(t, []querykey.Key{querykey.Agents, querykey.Categories, querykey.FeaturedAgents}, keys)

	_, ok = route.DefaultTable.Lookup("/marketplace/featured")
	assert.False(t, ok)
	_, ok = route.DefaultTable.Lookup("/unknown-route")
	assert.False(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	keys, _ := route.DefaultTable.Lookup("/user/credits")
	keys[0] = "mutated"

	again, _ := route.DefaultTable.Lookup("/user/credits")
	assert.Equal(t, querykey.Credits, again[0])
}

func TestNewTable_CopiesInput(t *testing.T) {
	keys := []querykey.Key{"x"}
	tbl := route.NewTable(route.Entry{Pattern: "/p", Keys: keys})
	keys[0] = "y"

	got, _ := tbl.Lookup("/p")
	assert.Equal(t, []querykey.Key{"x"}, got)
}

func TestGuard(t *testing.T) {
	user := viewer.Viewer{ID: uuid.New(), Role: profile.RoleUser}
	dev := viewer.Viewer{ID: uuid.New(), Role: profile.RoleDeveloper}

	tests := []struct {
		name     string
		path     string
		v        viewer.Viewer
		allowed  bool
		redirect string
	}{
		{name: "public marketplace anonymous", path: "/marketplace", v: viewer.Anonymous, allowed: true},
		{name: "user area anonymous", path: "/user/credits", v: viewer.Anonymous, redirect: route.SignInPath},
		{name: "user area signed in", path: "/user/credits/purchase", v: user, allowed: true},
		{name: "developer area anonymous", path: "/developer/dashboard", v: viewer.Anonymous, redirect: route.SignInPath},
		{name: "developer area plain user", path: "/developer/dashboard", v: user, redirect: route.UserDashboardPath},
		{name: "developer area developer", path: "/developer/agents/new", v: dev, allowed: true},
		{name: "lookalike prefix is public", path: "/users", v: viewer.Anonymous, allowed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := route.Guard(tt.path, tt.v)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}
