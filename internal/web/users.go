package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// UsersPage handles GET /admin/users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	page := &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: PageData{
			Title:   "Users",
			User:    claims,
			Error:   r.URL.Query().Get("error"),
			Success: r.URL.Query().Get("success"),
		},
		Roles: []string{model.RoleModerator, model.RoleAdmin},
	}

	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		page.Error = "Users could not be loaded."
	}
	page.Users = users

	s.Templates.Render(w, "users.html", page)
}

// usersRedirect sends the admin back to the users page with a message.
func usersRedirect(w http.ResponseWriter, r *http.Request, key, msg string) {
	http.Redirect(w, r, "/admin/users?"+url.Values{key: {msg}}.Encode(), http.StatusSeeOther)
}

// UserCreateSubmit handles POST /admin/users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || !model.ValidRole(role) {
		usersRedirect(w, r, "error", "Enter a username and pick a role.")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		usersRedirect(w, r, "error", "Password must be at least 8 characters.")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, hash, role); err != nil {
		usersRedirect(w, r, "error", "Username already exists.")
		return
	}

	slog.Info("user created", "user", claims.Username, "new_user", username, "role", role)
	usersRedirect(w, r, "success", "User "+username+" created.")
}

// UserResetPasswordSubmit handles POST /admin/users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		usersRedirect(w, r, "error", "Password must be at least 8 characters.")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	err = store.UpdateUserPassword(r.Context(), s.DB, id, hash)
	if errors.Is(err, store.ErrNotFound) {
		usersRedirect(w, r, "error", "User not found.")
		return
	}
	if err != nil {
		slog.Error("failed to reset password", "error", err)
		usersRedirect(w, r, "error", "Password could not be reset.")
		return
	}

	slog.Info("user password reset", "user", claims.Username, "target_id", id)
	usersRedirect(w, r, "success", "Password reset.")
}

// UserDeleteSubmit handles POST /admin/users/{id}/delete (admin only).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if id == claims.UserID {
		usersRedirect(w, r, "error", "You cannot delete yourself.")
		return
	}

	err = store.DeleteUser(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		usersRedirect(w, r, "error", "User not found.")
		return
	}
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		usersRedirect(w, r, "error", "User could not be deleted.")
		return
	}

	slog.Info("user deleted", "user", claims.Username, "target_id", id)
	usersRedirect(w, r, "success", "User deleted.")
}

// SettingsPage handles GET /admin/settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings.html", &PageData{
		Title: "Settings",
		User:  GetWebClaims(r.Context()),
	})
}

// SettingsSubmit handles POST /admin/settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	page := &PageData{Title: "Settings", User: claims}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		page.Error = "Enter your current and new password."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "settings.html", page)
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		page.Error = "New password must be at least 8 characters."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "settings.html", page)
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		page.Error = "Your account could not be loaded."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "settings.html", page)
		return
	}

	if !auth.CheckPassword(user, currentPassword) {
		page.Error = "Current password is incorrect."
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "settings.html", page)
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err == nil {
		err = store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, hash)
	}
	if err != nil {
		slog.Error("failed to change password", "error", err)
		page.Error = "Password could not be saved."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "settings.html", page)
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	page.Success = "Password changed."
	s.Templates.Render(w, "settings.html", page)
}
