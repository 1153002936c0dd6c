// Package workflow implements the found item and claim lifecycle: reporting,
// claiming, and the admin moderation actions between them.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/erazemk/lostfound/internal/cache"
	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/search"
	"github.com/erazemk/lostfound/internal/store"
)

// Cache keys for the collections the service lists.
const (
	keyAllItems      = "items:all"
	keyApprovedItems = "items:approved"
	keyAllClaims     = "claims:all"
)

var collectionKeys = []string{keyAllItems, keyApprovedItems, keyAllClaims}

// Service runs the item and claim workflow on top of the store.
type Service struct {
	db       *sql.DB
	cache    cache.Cache
	inflight singleflight.Group

	// generation is bumped by every invalidation. A list read from the store
	// is only cached if no invalidation happened since the read began.
	generation atomic.Uint64
}

// New creates a workflow service. A nil cache disables list caching.
func New(db *sql.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{db: db, cache: c}
}

// Dashboard is everything the admin overview shows.
type Dashboard struct {
	Items  []model.FoundItem    `json:"items"`
	Claims []model.ClaimRequest `json:"claims"`
	Stats  model.Stats          `json:"stats"`
}

// ItemDetail is one item with every claim that references it.
type ItemDetail struct {
	Item   *model.FoundItem     `json:"item"`
	Claims []model.ClaimRequest `json:"claims"`
}

// ValidateReport checks a finder's submission without storing it.
func ValidateReport(in model.FoundItem) error {
	return validateReport(normalizeReport(in))
}

func normalizeReport(in model.FoundItem) model.FoundItem {
	return model.FoundItem{
		ItemName:      strings.TrimSpace(in.ItemName),
		Category:      strings.TrimSpace(in.Category),
		Description:   strings.TrimSpace(in.Description),
		LocationFound: strings.TrimSpace(in.LocationFound),
		DateFound:     strings.TrimSpace(in.DateFound),
		FinderName:    strings.TrimSpace(in.FinderName),
		FinderEmail:   strings.TrimSpace(in.FinderEmail),
		PhotoURL:      strings.TrimSpace(in.PhotoURL),
	}
}

// ReportItem validates a finder's submission and stores it as a pending item.
// Any status in the input is ignored.
func (s *Service) ReportItem(ctx context.Context, in model.FoundItem) (*model.FoundItem, error) {
	item := normalizeReport(in)
	if err := validateReport(item); err != nil {
		return nil, err
	}

	created, err := store.CreateFoundItem(ctx, s.db, &item)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("report_item").Inc()
		return nil, err
	}

	metrics.ItemsReportedTotal.Inc()
	s.invalidate(ctx)
	return created, nil
}

// ClaimableItems returns the approved items that match f, newest first.
func (s *Service) ClaimableItems(ctx context.Context, f search.Filter) ([]model.FoundItem, error) {
	items, err := s.listItems(ctx, keyApprovedItems, model.StatusApproved)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

// ClaimableItem returns an approved item by ID. Items in any other status are
// reported as not found.
func (s *Service) ClaimableItem(ctx context.Context, id int64) (*model.FoundItem, error) {
	item, err := store.GetFoundItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.Status != model.StatusApproved {
		return nil, ErrNotFound
	}
	return item, nil
}

// Item returns an item in any status together with its claims.
func (s *Service) Item(ctx context.Context, id int64) (*ItemDetail, error) {
	item, err := store.GetFoundItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	claims, err := store.ListClaimsForItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []model.ClaimRequest{}
	}
	return &ItemDetail{Item: item, Claims: claims}, nil
}

// SubmitClaim validates a claim and stores it as pending against an approved
// item, snapshotting the item's current name.
func (s *Service) SubmitClaim(ctx context.Context, itemID int64, in model.ClaimRequest) (*model.ClaimRequest, error) {
	claim := model.ClaimRequest{
		ClaimantName:     strings.TrimSpace(in.ClaimantName),
		ClaimantEmail:    strings.TrimSpace(in.ClaimantEmail),
		ClaimantPhone:    strings.TrimSpace(in.ClaimantPhone),
		ProofOfOwnership: strings.TrimSpace(in.ProofOfOwnership),
	}
	if err := validateClaim(claim); err != nil {
		return nil, err
	}

	created, err := store.CreateClaim(ctx, s.db, itemID, &claim)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, store.ErrStatusConflict):
		return nil, ErrItemNotClaimable
	case err != nil:
		metrics.OperationErrorsTotal.WithLabelValues("submit_claim").Inc()
		return nil, err
	}

	metrics.ClaimsSubmittedTotal.Inc()
	s.invalidate(ctx)
	return created, nil
}

// Dashboard loads all items and claims, newest first, and derives the counters.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.listItems(gctx, keyAllItems, "")
		d.Items = items
		return err
	})
	g.Go(func() error {
		claims, err := s.listClaims(gctx)
		d.Claims = claims
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Stats = ComputeStats(d.Items, d.Claims)
	return &d, nil
}

// ApproveItem moves a pending item to approved.
func (s *Service) ApproveItem(ctx context.Context, id int64) error {
	return s.applyItemAction(ctx, ActionApprove, id)
}

// RejectItem moves a pending item to rejected.
func (s *Service) RejectItem(ctx context.Context, id int64) error {
	return s.applyItemAction(ctx, ActionReject, id)
}

func (s *Service) applyItemAction(ctx context.Context, action Action, id int64) error {
	to := itemActionTargets[action]
	return s.mutate(ctx, "item", action, id, func() error {
		item, err := store.GetFoundItem(ctx, s.db, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}
		if !CanTransitionItem(item.Status, to) {
			return ErrInvalidTransition
		}
		// The store re-checks the status, so a concurrent change still loses.
		return translate(store.TransitionFoundItem(ctx, s.db, id, item.Status, to))
	})
}

// DeleteItem permanently removes an item in any status. Its pending claims
// are rejected and all its claims lose the reference to it.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.mutate(ctx, "item", ActionDelete, id, func() error {
		rejected, err := store.DeleteFoundItem(ctx, s.db, id)
		if err != nil {
			return translate(err)
		}
		if rejected > 0 {
			slog.Info("pending claims rejected with deleted item", "item_id", id, "claims", rejected)
		}
		return nil
	})
}

// ApproveClaim resolves a pending claim for its claimant. The referenced item
// becomes claimed and competing pending claims are rejected.
func (s *Service) ApproveClaim(ctx context.Context, id int64) error {
	return s.mutate(ctx, "claim", ActionApprove, id, func() error {
		claim, err := s.pendingClaim(ctx, id, ActionApprove)
		if err != nil {
			return err
		}
		if claim.ItemID == nil {
			return ErrInvalidTransition
		}
		item, err := store.GetFoundItem(ctx, s.db, *claim.ItemID)
		if err != nil {
			return err
		}
		if item == nil || !CanTransitionItem(item.Status, model.StatusClaimed) {
			return ErrInvalidTransition
		}
		return translate(store.ApproveClaim(ctx, s.db, id))
	})
}

// RejectClaim moves a pending claim to rejected.
func (s *Service) RejectClaim(ctx context.Context, id int64) error {
	return s.mutate(ctx, "claim", ActionReject, id, func() error {
		if _, err := s.pendingClaim(ctx, id, ActionReject); err != nil {
			return err
		}
		return translate(store.RejectClaim(ctx, s.db, id))
	})
}

// pendingClaim loads a claim and checks that action may be applied to it.
func (s *Service) pendingClaim(ctx context.Context, id int64, action Action) (*model.ClaimRequest, error) {
	claim, err := store.GetClaim(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrNotFound
	}
	if !CanTransitionClaim(claim.Status, claimActionTargets[action]) {
		return nil, ErrInvalidTransition
	}
	return claim, nil
}

// mutate runs fn at most once at a time per entity and action. A caller that
// arrives while the same mutation is in flight waits for it and shares its
// result instead of issuing a second store call.
func (s *Service) mutate(ctx context.Context, entity string, action Action, id int64, fn func() error) error {
	key := fmt.Sprintf("%s:%s:%d", entity, action, id)
	label := entity + "_" + string(action)

	executed := false
	_, err, _ := s.inflight.Do(key, func() (any, error) {
		executed = true
		return nil, fn()
	})

	if !executed {
		metrics.DuplicateActionsSuppressedTotal.WithLabelValues(label).Inc()
		slog.Warn("duplicate action suppressed", "entity", entity, "action", action, "id", id)
		return err
	}

	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidTransition) {
			metrics.OperationErrorsTotal.WithLabelValues(label).Inc()
		}
		return err
	}

	metrics.ModerationActionsTotal.WithLabelValues(label).Inc()
	s.invalidate(ctx)
	return nil
}

func (s *Service) listItems(ctx context.Context, key, status string) ([]model.FoundItem, error) {
	var items []model.FoundItem
	if ok, err := cache.GetJSON(ctx, s.cache, key, &items); err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		return items, nil
	}

	gen := s.generation.Load()
	items, err := store.ListFoundItems(ctx, s.db, status)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	s.fill(ctx, gen, key, items)
	return items, nil
}

func (s *Service) listClaims(ctx context.Context) ([]model.ClaimRequest, error) {
	var claims []model.ClaimRequest
	if ok, err := cache.GetJSON(ctx, s.cache, keyAllClaims, &claims); err != nil {
		slog.Warn("cache read failed", "key", keyAllClaims, "error", err)
	} else if ok {
		return claims, nil
	}

	gen := s.generation.Load()
	claims, err := store.ListClaims(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []model.ClaimRequest{}
	}
	s.fill(ctx, gen, keyAllClaims, claims)
	return claims, nil
}

// fill caches a list that was read from the store while the cache was at
// generation gen. If an invalidation ran since then the list may predate a
// committed mutation and is dropped instead. The second check covers an
// invalidation that lands between the first check and the write.
func (s *Service) fill(ctx context.Context, gen uint64, key string, v any) {
	if s.generation.Load() != gen {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.Error("cache invalidation failed", "key", key, "error", err)
		}
	}
}

// invalidate drops every cached collection so the next read refetches.
func (s *Service) invalidate(ctx context.Context) {
	// The request may already be cancelled; the invalidation must still land.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, collectionKeys...); err != nil {
		slog.Error("cache invalidation failed", "error", err)
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrStatusConflict):
		return ErrInvalidTransition
	}
	return err
}

func validateReport(item model.FoundItem) error {
	required := []struct{ field, value string }{
		{"item_name", item.ItemName},
		{"category", item.Category},
		{"location_found", item.LocationFound},
		{"date_found", item.DateFound},
		{"finder_name", item.FinderName},
		{"finder_email", item.FinderEmail},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Message: "required"}
		}
	}
	if !model.ValidCategory(item.Category) {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if _, err := time.Parse(model.DateLayout, item.DateFound); err != nil {
		return &ValidationError{Field: "date_found", Message: "must be a date in YYYY-MM-DD format"}
	}
	if !validEmail(item.FinderEmail) {
		return &ValidationError{Field: "finder_email", Message: "invalid email address"}
	}
	return nil
}

func validateClaim(c model.ClaimRequest) error {
	required := []struct{ field, value string }{
		{"claimant_name", c.ClaimantName},
		{"claimant_email", c.ClaimantEmail},
		{"proof_of_ownership", c.ProofOfOwnership},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Message: "required"}
		}
	}
	if !validEmail(c.ClaimantEmail) {
		return &ValidationError{Field: "claimant_email", Message: "invalid email address"}
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
