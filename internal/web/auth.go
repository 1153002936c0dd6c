package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &loginPage{PageData: PageData{Title: "Admin Login"}})
}

type loginPage struct {
	PageData
	Username string
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	page := &loginPage{PageData: PageData{Title: "Admin Login"}, Username: username}

	if username == "" || password == "" {
		page.Error = "Enter your username and password."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", page)
		return
	}

	token, claims, err := auth.Login(r.Context(), s.DB, s.JWTSecret, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		page.Error = "Invalid username or password."
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", page)
		return
	}
	if err != nil {
		slog.Error("login error", "error", err)
		page.Error = "Login failed. Please try again."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", page)
		return
	}

	slog.Info("user logged in", "user", claims.Username, "role", claims.Role)
	setAuthCookie(w, token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout. The session token is revoked, not just
// dropped from the browser.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		if claims, err := auth.Verify(r.Context(), s.DB, s.JWTSecret, cookie.Value); err == nil {
			if err := auth.Logout(r.Context(), s.DB, claims); err != nil {
				slog.Error("failed to revoke token", "error", err)
			} else {
				slog.Info("user logged out", "user", claims.Username)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
