package model

import "time"

// FoundItem is an object handed in by a finder and waiting for, or past, admin review.
type FoundItem struct {
	ID            int64     `json:"id"`
	ItemName      string    `json:"item_name"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	LocationFound string    `json:"location_found"`
	DateFound     string    `json:"date_found"`
	FinderName    string    `json:"finder_name"`
	FinderEmail   string    `json:"finder_email"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Statuses shared by found items and claim requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusClaimed  = "claimed"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusClaimed:
		return true
	}
	return false
}

// AllCategories is the category filter value that matches every item.
const AllCategories = "All Categories"

// Categories lists the item categories in display order.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Books",
	"Accessories",
	"Sports Equipment",
	"Keys",
	"ID/Cards",
	"Other",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format used for DateFound.
const DateLayout = "2006-01-02"
