package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/lostfound/internal/model"
)

var items = []model.FoundItem{
	{ID: 1, ItemName: "Blue Backpack", Category: "Accessories", LocationFound: "Library"},
	{ID: 2, ItemName: "iPhone 12", Category: "Electronics", Description: "cracked blue case", LocationFound: "Gym"},
	{ID: 3, ItemName: "Calculus textbook", Category: "Books", LocationFound: "Room 204"},
	{ID: 4, ItemName: "Locker key", Category: "Keys", LocationFound: "Blue hallway"},
}

func ids(in []model.FoundItem) []int64 {
	out := []int64{}
	for _, it := range in {
		out = append(out, it.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"zero value matches all", Filter{}, []int64{1, 2, 3, 4}},
		{"all categories passthrough", Filter{Category: model.AllCategories}, []int64{1, 2, 3, 4}},
		{"term in name, case-insensitive", Filter{Term: "BACKPACK"}, []int64{1}},
		{"term in description or location", Filter{Term: "blue"}, []int64{1, 2, 4}},
		{"substring, not tokens", Filter{Term: "alcul"}, []int64{3}},
		{"category exact", Filter{Category: "Electronics"}, []int64{2}},
		{"category is case-sensitive", Filter{Category: "electronics"}, []int64{}},
		{"term and category are ANDed", Filter{Term: "blue", Category: "Keys"}, []int64{4}},
		{"no match", Filter{Term: "umbrella"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(items)))
		})
	}
}

func TestMatchesMissingDescription(t *testing.T) {
	item := model.FoundItem{ItemName: "Hat", LocationFound: "Field", Category: "Clothing"}
	assert.False(t, Filter{Term: "wool"}.Matches(item))
	assert.True(t, Filter{Term: "fie"}.Matches(item))
}
