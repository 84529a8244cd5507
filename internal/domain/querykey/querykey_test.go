package querykey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyang/agent-market/internal/domain/querykey"
)

func TestWith_DerivesChildKey(t *testing.T) {
	k := querykey.AgentReviews.With("abc")
	assert.Equal(t, querykey.Key("agent-reviews/abc"), k)
	assert.Equal(t, querykey.AgentReviews, k.Root())
	assert.Equal(t, querykey.Agents, querykey.Agents.With())
}

func TestCovers(t *testing.T) {
	tests := []struct {
		name   string
		parent querykey.Key
		child  querykey.Key
		want   bool
	}{
		{name: "self", parent: querykey.Agents, child: querykey.Agents, want: true},
		{name: "child", parent: querykey.Agents, child: querykey.Agents.With("1"), want: true},
		{name: "grandchild", parent: querykey.Agents.With("1"), child: querykey.Agents.With("1", "x"), want: true},
		{name: "sibling prefix is not a child", parent: querykey.Credits, child: querykey.Key("credits-extra"), want: false},
		{name: "child does not cover parent", parent: querykey.Agents.With("1"), child: querykey.Agents, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.parent.Covers(tt.child))
		})
	}
}

func TestShared(t *testing.T) {
	assert.True(t, querykey.Agents.Shared())
	assert.True(t, querykey.AgentReviews.With("x").Shared())
	assert.False(t, querykey.Credits.Shared())
	assert.False(t, querykey.Notifications.Shared())
}
