package agent

import (
	"slices"
	"strings"
)

// Filter returns the agents matching f, ordered by f.Sort. The input is not modified.
func Filter(agents []Agent, f ListFilters) []Agent {
	out := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if a.Matches(f) {
			out = append(out, a)
		}
	}
	SortBy(out, f.Sort)
	return out
}

func SortBy(agents []Agent, s Sort) {
	slices.SortStableFunc(agents, func(a, b Agent) int {
		switch s {
		case SortPriceLow:
			return a.PricePerCall.Cmp(b.PricePerCall)
		case SortPriceHigh:
			return b.PricePerCall.Cmp(a.PricePerCall)
		case SortRating:
			if a.Rating != b.Rating {
				if a.Rating > b.Rating {
					return -1
				}
				return 1
			}
			return b.ReviewCount - a.ReviewCount
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})
}

// Categories returns the distinct categories of agents, sorted case-insensitively.
func Categories(agents []Agent) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range agents {
		if a.Category == "" || seen[strings.ToLower(a.Category)] {
			continue
		}
		seen[strings.ToLower(a.Category)] = true
		out = append(out, a.Category)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
