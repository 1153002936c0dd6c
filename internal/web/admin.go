package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/workflow"
)

type adminPage struct {
	PageData
	Tab       string
	Dashboard *workflow.Dashboard
}

// AdminPage handles GET /admin.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tab := r.URL.Query().Get("tab")
	if tab != "claims" {
		tab = "items"
	}

	page := &adminPage{
		PageData: PageData{
			Title:   "Admin Dashboard",
			User:    claims,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
		Tab: tab,
	}

	d, err := s.Service.Dashboard(r.Context())
	if err != nil {
		slog.Error("failed to load dashboard", "error", err)
		page.Error = "The dashboard could not be loaded."
		d = &workflow.Dashboard{}
	}
	page.Dashboard = d

	s.Templates.Render(w, "admin.html", page)
}

// ItemActionSubmit handles POST /admin/items/{id}/{approve|reject|delete}.
func (s *Server) ItemActionSubmit(w http.ResponseWriter, r *http.Request) {
	actions := map[workflow.Action]func(context.Context, int64) error{
		workflow.ActionApprove: s.Service.ApproveItem,
		workflow.ActionReject:  s.Service.RejectItem,
		workflow.ActionDelete:  s.Service.DeleteItem,
	}
	s.moderate(w, r, "items", "Item", actions)
}

// ClaimActionSubmit handles POST /admin/claims/{id}/{approve|reject}.
func (s *Server) ClaimActionSubmit(w http.ResponseWriter, r *http.Request) {
	actions := map[workflow.Action]func(context.Context, int64) error{
		workflow.ActionApprove: s.Service.ApproveClaim,
		workflow.ActionReject:  s.Service.RejectClaim,
	}
	s.moderate(w, r, "claims", "Claim", actions)
}

// moderate applies the {action} to the {id} and sends the admin back to the
// dashboard tab with the outcome.
func (s *Server) moderate(w http.ResponseWriter, r *http.Request, tab, noun string, actions map[workflow.Action]func(context.Context, int64) error) {
	claims := GetWebClaims(r.Context())

	action := workflow.Action(r.PathValue("action"))
	apply, ok := actions[action]
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	q := url.Values{"tab": {tab}}
	err = apply(r.Context(), id)
	switch {
	case err == nil:
		slog.Info("moderation action", "user", claims.Username, "entity", tab, "action", action, "id", id)
		q.Set("success", noun+" "+pastTense(action)+".")
	case errors.Is(err, workflow.ErrNotFound):
		q.Set("error", noun+" no longer exists.")
	case errors.Is(err, workflow.ErrInvalidTransition):
		q.Set("error", noun+" was already handled.")
	default:
		slog.Error("moderation action failed", "entity", tab, "action", action, "id", id, "error", err)
		q.Set("error", "Action failed. Please try again.")
	}

	http.Redirect(w, r, "/admin?"+q.Encode(), http.StatusSeeOther)
}

func pastTense(a workflow.Action) string {
	switch a {
	case workflow.ActionApprove:
		return "approved"
	case workflow.ActionReject:
		return "rejected"
	case workflow.ActionDelete:
		return "deleted"
	}
	return string(a)
}
