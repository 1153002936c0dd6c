package workflow

import "github.com/erazemk/lostfound/internal/model"

// Action is an admin operation on a single item or claim.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

type transition struct {
	from, to string
}

// itemTransitions lists every status change a found item can go through.
// approved -> claimed is only reached by approving a claim.
var itemTransitions = map[transition]bool{
	{model.StatusPending, model.StatusApproved}: true,
	{model.StatusPending, model.StatusRejected}: true,
	{model.StatusApproved, model.StatusClaimed}: true,
}

// claimTransitions lists every status change a claim can go through.
var claimTransitions = map[transition]bool{
	{model.StatusPending, model.StatusApproved}: true,
	{model.StatusPending, model.StatusRejected}: true,
}

// itemActionTargets maps the admin item actions to the status they move to.
// Whether the move is allowed is decided by itemTransitions.
var itemActionTargets = map[Action]string{
	ActionApprove: model.StatusApproved,
	ActionReject:  model.StatusRejected,
}

var claimActionTargets = map[Action]string{
	ActionApprove: model.StatusApproved,
	ActionReject:  model.StatusRejected,
}

// CanTransitionItem reports whether a found item may move from one status to another.
func CanTransitionItem(from, to string) bool {
	return itemTransitions[transition{from, to}]
}

// CanTransitionClaim reports whether a claim may move from one status to another.
func CanTransitionClaim(from, to string) bool {
	return claimTransitions[transition{from, to}]
}

// ItemActions returns the admin actions offered for an item in the given status.
// Delete is always offered.
func ItemActions(status string) []Action {
	var actions []Action
	for _, a := range []Action{ActionApprove, ActionReject} {
		if CanTransitionItem(status, itemActionTargets[a]) {
			actions = append(actions, a)
		}
	}
	return append(actions, ActionDelete)
}

// ClaimActions returns the admin actions offered for a claim in the given status.
func ClaimActions(status string) []Action {
	var actions []Action
	for _, a := range []Action{ActionApprove, ActionReject} {
		if CanTransitionClaim(status, claimActionTargets[a]) {
			actions = append(actions, a)
		}
	}
	return actions
}

// ComputeStats derives the dashboard counters from full item and claim lists.
func ComputeStats(items []model.FoundItem, claims []model.ClaimRequest) model.Stats {
	s := model.Stats{TotalItems: len(items), TotalClaims: len(claims)}
	for _, it := range items {
		switch it.Status {
		case model.StatusPending:
			s.PendingItems++
		case model.StatusApproved:
			s.ApprovedItems++
		case model.StatusClaimed:
			s.ClaimedItems++
		}
	}
	for _, c := range claims {
		if c.Status == model.StatusPending {
			s.PendingClaims++
		}
	}
	return s
}
