package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/search"
	"github.com/erazemk/lostfound/internal/workflow"
)

// PublicHandler serves the unauthenticated report and claim flows.
type PublicHandler struct {
	Service *workflow.Service
	Photos  photos.Store
}

type claimRequest struct {
	ItemID           int64  `json:"item_id"`
	ClaimantName     string `json:"claimant_name"`
	ClaimantEmail    string `json:"claimant_email"`
	ClaimantPhone    string `json:"claimant_phone"`
	ProofOfOwnership string `json:"proof_of_ownership"`
}

// Categories handles GET /api/categories.
func (h *PublicHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories)
}

// Upload handles POST /api/uploads. The multipart "file" part is normalized
// to JPEG and stored; the response carries the URL to reference it by.
func (h *PublicHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, photos.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(photos.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	photo, err := photos.Process(file)
	if err != nil {
		if !errors.Is(err, photos.ErrUnsupportedFormat) {
			slog.Warn("photo rejected", "error", err)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.Photos.Put(r.Context(), photo)
	if err != nil {
		slog.Error("failed to store photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"file_url": url})
}

// Report handles POST /api/items.
func (h *PublicHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req model.FoundItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.ReportItem(r.Context(), req)
	if err != nil {
		serviceError(w, err, "report item")
		return
	}

	slog.Info("item reported", "item_id", item.ID, "category", item.Category)
	jsonResponse(w, http.StatusCreated, item)
}

// List handles GET /api/items?q=&category=. Only approved items are listed.
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := search.Filter{
		Term:     r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	items, err := h.Service.ClaimableItems(r.Context(), filter)
	if err != nil {
		serviceError(w, err, "list items")
		return
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.ClaimableItem(r.Context(), id)
	if err != nil {
		serviceError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// SubmitClaim handles POST /api/claims.
func (h *PublicHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	claim, err := h.Service.SubmitClaim(r.Context(), req.ItemID, model.ClaimRequest{
		ClaimantName:     req.ClaimantName,
		ClaimantEmail:    req.ClaimantEmail,
		ClaimantPhone:    req.ClaimantPhone,
		ProofOfOwnership: req.ProofOfOwnership,
	})
	if err != nil {
		serviceError(w, err, "submit claim")
		return
	}

	slog.Info("claim submitted", "claim_id", claim.ID, "item_id", req.ItemID)
	jsonResponse(w, http.StatusCreated, claim)
}
