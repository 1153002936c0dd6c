package model

import "time"

// ClaimRequest is someone's assertion that a found item belongs to them.
type ClaimRequest struct {
	ID               int64     `json:"id"`
	ItemID           *int64    `json:"item_id"`
	ItemName         string    `json:"item_name"`
	ClaimantName     string    `json:"claimant_name"`
	ClaimantEmail    string    `json:"claimant_email"`
	ClaimantPhone    string    `json:"claimant_phone,omitempty"`
	ProofOfOwnership string    `json:"proof_of_ownership"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Stats holds the dashboard counters derived from the item and claim lists.
type Stats struct {
	PendingItems  int `json:"pending_items"`
	ApprovedItems int `json:"approved_items"`
	PendingClaims int `json:"pending_claims"`
	ClaimedItems  int `json:"claimed_items"`
	TotalItems    int `json:"total_items"`
	TotalClaims   int `json:"total_claims"`
}
