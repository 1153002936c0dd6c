package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/search"
	"github.com/erazemk/lostfound/internal/workflow"
)

// recentItems is how many approved items the home page shows.
const recentItems = 6

// HomePage handles GET /.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	items, err := s.Service.ClaimableItems(r.Context(), search.Filter{})
	if err != nil {
		slog.Error("failed to list items for home page", "error", err)
	}
	if len(items) > recentItems {
		items = items[:recentItems]
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Items []model.FoundItem
	}{
		PageData: PageData{Title: "Lost & Found"},
		Items:    items,
	})
}

type reportPage struct {
	PageData
	Form       model.FoundItem
	Categories []string
}

func (s *Server) renderReport(w http.ResponseWriter, status int, form model.FoundItem, errMsg string) {
	s.Templates.RenderStatus(w, status, "report.html", &reportPage{
		PageData:   PageData{Title: "Report a Found Item", Error: errMsg},
		Form:       form,
		Categories: model.Categories,
	})
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, http.StatusOK, model.FoundItem{}, "")
}

// ReportSubmit handles POST /report. The form may carry an optional photo.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, photos.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(photos.MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderReport(w, http.StatusBadRequest, model.FoundItem{}, "The photo is too large or the form is invalid.")
		return
	}

	form := model.FoundItem{
		ItemName:      r.FormValue("item_name"),
		Category:      r.FormValue("category"),
		Description:   r.FormValue("description"),
		LocationFound: r.FormValue("location_found"),
		DateFound:     r.FormValue("date_found"),
		FinderName:    r.FormValue("finder_name"),
		FinderEmail:   r.FormValue("finder_email"),
	}

	// Check the fields first so a rejected report never stores a photo.
	if err := workflow.ValidateReport(form); err != nil {
		s.renderReport(w, http.StatusBadRequest, form, "Please check the form: "+err.Error())
		return
	}

	if r.MultipartForm != nil {
		file, _, err := r.FormFile("photo")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			s.renderReport(w, http.StatusBadRequest, form, "The photo could not be read.")
			return
		default:
			defer file.Close()
			url, problem := s.storePhoto(r, file)
			if problem != "" {
				s.renderReport(w, http.StatusBadRequest, form, problem)
				return
			}
			form.PhotoURL = url
		}
	}

	item, err := s.Service.ReportItem(r.Context(), form)
	if err != nil && form.PhotoURL != "" {
		s.discardPhoto(r, form.PhotoURL)
		form.PhotoURL = ""
	}
	if errors.Is(err, workflow.ErrValidation) {
		s.renderReport(w, http.StatusBadRequest, form, "Please check the form: "+err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to report item", "error", err)
		s.renderReport(w, http.StatusInternalServerError, form, "Something went wrong. Please try again.")
		return
	}

	slog.Info("item reported", "item_id", item.ID, "category", item.Category)
	s.Templates.Render(w, "report_done.html", &struct {
		PageData
		Item *model.FoundItem
	}{
		PageData: PageData{Title: "Item Reported"},
		Item:     item,
	})
}

// storePhoto normalizes and stores an uploaded photo. It returns the photo
// URL, or a message for the visitor if the photo was not stored.
func (s *Server) storePhoto(r *http.Request, file io.Reader) (url, problem string) {
	photo, err := photos.Process(file)
	if err != nil {
		slog.Warn("photo rejected", "error", err)
		return "", "Only JPEG and PNG photos up to 10 MB are accepted."
	}
	url, err = s.Photos.Put(r.Context(), photo)
	if err != nil {
		slog.Error("failed to store photo", "error", err)
		return "", "The photo could not be saved. Please try again."
	}
	return url, ""
}

func (s *Server) discardPhoto(r *http.Request, url string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	if err := s.Photos.Delete(ctx, url); err != nil {
		slog.Error("failed to discard photo of rejected report", "url", url, "error", err)
	}
}

// ClaimPage handles GET /claim?q=&category=.
func (s *Server) ClaimPage(w http.ResponseWriter, r *http.Request) {
	filter := search.Filter{
		Term:     r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	if filter.Category == "" {
		filter.Category = model.AllCategories
	}

	page := &struct {
		PageData
		Items      []model.FoundItem
		Filter     search.Filter
		Categories []string
	}{
		PageData:   PageData{Title: "Find Your Lost Item"},
		Filter:     filter,
		Categories: append([]string{model.AllCategories}, model.Categories...),
	}

	items, err := s.Service.ClaimableItems(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list claimable items", "error", err)
		page.Error = "Items could not be loaded. Please try again."
	}
	page.Items = items

	s.Templates.Render(w, "claim.html", page)
}

type claimItemPage struct {
	PageData
	Item *model.FoundItem
	Form model.ClaimRequest
}

// ClaimItemPage handles GET /claim/{id}.
func (s *Server) ClaimItemPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.claimableItem(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, "claim_item.html", &claimItemPage{
		PageData: PageData{Title: "Claim " + item.ItemName},
		Item:     item,
	})
}

// ClaimSubmit handles POST /claim/{id}.
func (s *Server) ClaimSubmit(w http.ResponseWriter, r *http.Request) {
	item, ok := s.claimableItem(w, r)
	if !ok {
		return
	}

	form := model.ClaimRequest{
		ClaimantName:     r.FormValue("claimant_name"),
		ClaimantEmail:    r.FormValue("claimant_email"),
		ClaimantPhone:    r.FormValue("claimant_phone"),
		ProofOfOwnership: r.FormValue("proof_of_ownership"),
	}
	page := &claimItemPage{
		PageData: PageData{Title: "Claim " + item.ItemName},
		Item:     item,
		Form:     form,
	}

	claim, err := s.Service.SubmitClaim(r.Context(), item.ID, form)
	switch {
	case errors.Is(err, workflow.ErrValidation):
		page.Error = "Please check the form: " + err.Error()
		s.Templates.RenderStatus(w, http.StatusBadRequest, "claim_item.html", page)
		return
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, workflow.ErrItemNotClaimable):
		page.Error = "This item is no longer open for claims."
		s.Templates.RenderStatus(w, http.StatusConflict, "claim_item.html", page)
		return
	case err != nil:
		slog.Error("failed to submit claim", "error", err)
		page.Error = "Something went wrong. Please try again."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "claim_item.html", page)
		return
	}

	slog.Info("claim submitted", "claim_id", claim.ID, "item_id", item.ID)
	s.Templates.Render(w, "claim_done.html", &struct {
		PageData
		Claim *model.ClaimRequest
	}{
		PageData: PageData{Title: "Claim Submitted"},
		Claim:    claim,
	})
}

// claimableItem loads the approved item named by the {id} path value, or
// writes a 404 and returns false.
func (s *Server) claimableItem(w http.ResponseWriter, r *http.Request) (*model.FoundItem, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	item, err := s.Service.ClaimableItem(r.Context(), id)
	if errors.Is(err, workflow.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return item, true
}
