package agent_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/alanyang/agent-market/internal/domain/agent"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "draft→published", from: StatusDraft, to: StatusPublished, want: true},
		{name: "draft→archived", from: StatusDraft, to: StatusArchived, want: true},
		{name: "published→draft", from: StatusPublished, to: StatusDraft, want: true},
		{name: "published→archived", from: StatusPublished, to: StatusArchived, want: true},
		{name: "archived→draft", from: StatusArchived, to: StatusDraft, want: true},

		{name: "archived→published invalid", from: StatusArchived, to: StatusPublished, want: false},
		{name: "draft→draft invalid", from: StatusDraft, to: StatusDraft, want: false},
		{name: "unknown invalid", from: Status("bogus"), to: StatusDraft, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestValidate(t *testing.T) {
	ok := New(uuid.New(), "Summarizer", "desc", "text", nil, decimal.NewFromFloat(0.5), "https://agent.example/run")
	require.NoError(t, ok.Validate())
	assert.Equal(t, StatusDraft, ok.Status)
	assert.NotNil(t, ok.Tags)

	noName := ok
	noName.Name = "  "
	assert.Error(t, noName.Validate())

	negative := ok
	negative.PricePerCall = decimal.NewFromInt(-1)
	assert.Error(t, negative.Validate())

	badURL := ok
	badURL.APIEndpoint = "ftp://agent"
	assert.Error(t, badURL.Validate())
}

func TestFilter(t *testing.T) {
	now := time.Now()
	text := "Text"
	agents := []Agent{
		{Name: "Summarizer", Category: "text", Tags: []string{"nlp"}, PricePerCall: decimal.NewFromInt(3), CreatedAt: now.Add(-2 * time.Hour), Rating: 4.5},
		{Name: "Painter", Category: "image", Description: "draws pictures", PricePerCall: decimal.NewFromInt(1), CreatedAt: now, Rating: 3},
		{Name: "Translator", Category: "text", PricePerCall: decimal.NewFromInt(2), CreatedAt: now.Add(-time.Hour), Rating: 4.9},
	}

	t.Run("default newest first", func(t *testing.T) {
		got := Filter(agents, ListFilters{})
		require.Len(t, got, 3)
		assert.Equal(t, "Painter", got[0].Name)
		assert.Equal(t, "Summarizer", got[2].Name)
	})

	t.Run("category is case-insensitive", func(t *testing.T) {
		got := Filter(agents, ListFilters{Category: &text, Sort: SortPriceLow})
		require.Len(t, got, 2)
		assert.Equal(t, "Translator", got[0].Name)
	})

	t.Run("query matches description and tags", func(t *testing.T) {
		assert.Len(t, Filter(agents, ListFilters{Query: "PICTURES"}), 1)
		assert.Len(t, Filter(agents, ListFilters{Query: "nlp"}), 1)
		assert.Empty(t, Filter(agents, ListFilters{Query: "video"}))
	})

	t.Run("rating and price high", func(t *testing.T) {
		assert.Equal(t, "Translator", Filter(agents, ListFilters{Sort: SortRating})[0].Name)
		assert.Equal(t, "Summarizer", Filter(agents, ListFilters{Sort: SortPriceHigh})[0].Name)
	})

	t.Run("input untouched", func(t *testing.T) {
		Filter(agents, ListFilters{Sort: SortPriceLow})
		assert.Equal(t, "Summarizer", agents[0].Name)
	})
}

func TestCategories(t *testing.T) {
	got := Categories([]Agent{{Category: "text"}, {Category: "Image"}, {Category: "Text"}, {Category: ""}})
	assert.Equal(t, []string{"Image", "text"}, got)
}

func TestApply(t *testing.T) {
	a := New(uuid.New(), "old", "d", "c", nil, decimal.Zero, "https://x")
	name := "new"
	price := decimal.NewFromFloat(1.25)
	a.Apply(Update{Name: &name, PricePerCall: &price, Tags: []string{"a"}})

	assert.Equal(t, "new", a.Name)
	assert.True(t, price.Equal(a.PricePerCall))
	assert.Equal(t, []string{"a"}, a.Tags)
	assert.Equal(t, "d", a.Description)
}

func TestNewReview_RatingBounds(t *testing.T) {
	_, err := NewReview(uuid.New(), uuid.New(), 0, "")
	assert.Error(t, err)
	_, err = NewReview(uuid.New(), uuid.New(), 6, "")
	assert.Error(t, err)
	r, err := NewReview(uuid.New(), uuid.New(), 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
}
