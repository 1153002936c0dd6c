// Package search filters found items for the claim page.
package search

import (
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

// Filter is a free-text term plus a category. The zero value matches everything.
type Filter struct {
	Term     string
	Category string
}

// Matches reports whether item passes both the text and the category filter.
func (f Filter) Matches(item model.FoundItem) bool {
	return f.matchesTerm(item) && f.matchesCategory(item)
}

// matchesTerm is a case-insensitive substring test against the name,
// description and location. It is not tokenized or fuzzy.
func (f Filter) matchesTerm(item model.FoundItem) bool {
	q := strings.ToLower(f.Term)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.ItemName), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.LocationFound), q)
}

func (f Filter) matchesCategory(item model.FoundItem) bool {
	if f.Category == "" || f.Category == model.AllCategories {
		return true
	}
	return item.Category == f.Category
}

// Apply returns the items that match f, keeping their order.
func (f Filter) Apply(items []model.FoundItem) []model.FoundItem {
	out := make([]model.FoundItem, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
