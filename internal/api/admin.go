package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/workflow"
)

// AdminHandler handles the moderation endpoints.
type AdminHandler struct {
	DB      *sql.DB
	Service *workflow.Service
}

// ListItems handles GET /api/admin/items?status=.
func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidStatus(status) {
		jsonError(w, http.StatusBadRequest, "unknown status: "+status)
		return
	}

	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		serviceError(w, err, "list items")
		return
	}
	if status == "" {
		jsonResponse(w, http.StatusOK, d.Items)
		return
	}

	items := []model.FoundItem{}
	for _, it := range d.Items {
		if it.Status == status {
			items = append(items, it)
		}
	}
	jsonResponse(w, http.StatusOK, items)
}

// GetItem handles GET /api/admin/items/{id}. Items in any status are
// returned together with their claims.
func (h *AdminHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	d, err := h.Service.Item(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// ListClaims handles GET /api/admin/claims.
func (h *AdminHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		serviceError(w, err, "list claims")
		return
	}
	jsonResponse(w, http.StatusOK, d.Claims)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		serviceError(w, err, "load stats")
		return
	}
	jsonResponse(w, http.StatusOK, d.Stats)
}

// ApproveItem handles POST /api/admin/items/{id}/approve.
func (h *AdminHandler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, workflow.ActionApprove, h.Service.ApproveItem)
}

// RejectItem handles POST /api/admin/items/{id}/reject.
func (h *AdminHandler) RejectItem(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, workflow.ActionReject, h.Service.RejectItem)
}

// DeleteItem handles DELETE /api/admin/items/{id}.
func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
		serviceError(w, err, "delete item")
		return
	}

	slog.Info("item deleted", "user", GetClaims(r.Context()).Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ApproveClaim handles POST /api/admin/claims/{id}/approve.
func (h *AdminHandler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	h.claimAction(w, r, workflow.ActionApprove, h.Service.ApproveClaim)
}

// RejectClaim handles POST /api/admin/claims/{id}/reject.
func (h *AdminHandler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	h.claimAction(w, r, workflow.ActionReject, h.Service.RejectClaim)
}

func (h *AdminHandler) itemAction(w http.ResponseWriter, r *http.Request, action workflow.Action, apply func(context.Context, int64) error) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := apply(r.Context(), id); err != nil {
		serviceError(w, err, string(action)+" item")
		return
	}
	slog.Info("item moderated", "user", GetClaims(r.Context()).Username, "action", action, "item_id", id)

	item, err := store.GetFoundItem(r.Context(), h.DB, id)
	if err != nil || item == nil {
		jsonResponse(w, http.StatusOK, map[string]string{"message": "item updated"})
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

func (h *AdminHandler) claimAction(w http.ResponseWriter, r *http.Request, action workflow.Action, apply func(context.Context, int64) error) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	if err := apply(r.Context(), id); err != nil {
		serviceError(w, err, string(action)+" claim")
		return
	}
	slog.Info("claim resolved", "user", GetClaims(r.Context()).Username, "action", action, "claim_id", id)

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil || claim == nil {
		jsonResponse(w, http.StatusOK, map[string]string{"message": "claim updated"})
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}
