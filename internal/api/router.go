package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *workflow.Service, photoStore photos.Store) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	publicHandler := &PublicHandler{Service: svc, Photos: photoStore}
	adminHandler := &AdminHandler{DB: db, Service: svc}
	usersHandler := &UsersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireModerator := RequireRole(model.RoleModerator)

	// Public: login and the finder/claimant flows.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/categories", publicHandler.Categories)
	mux.HandleFunc("POST /api/uploads", publicHandler.Upload)
	mux.HandleFunc("POST /api/items", publicHandler.Report)
	mux.HandleFunc("GET /api/items", publicHandler.List)
	mux.HandleFunc("GET /api/items/{id}", publicHandler.Get)
	mux.HandleFunc("POST /api/claims", publicHandler.SubmitClaim)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Moderation (moderator+).
	mux.Handle("GET /api/admin/items", authMW(requireModerator(http.HandlerFunc(adminHandler.ListItems))))
	mux.Handle("GET /api/admin/items/{id}", authMW(requireModerator(http.HandlerFunc(adminHandler.GetItem))))
	mux.Handle("GET /api/admin/claims", authMW(requireModerator(http.HandlerFunc(adminHandler.ListClaims))))
	mux.Handle("GET /api/admin/stats", authMW(requireModerator(http.HandlerFunc(adminHandler.Stats))))
	mux.Handle("POST /api/admin/items/{id}/approve", authMW(requireModerator(http.HandlerFunc(adminHandler.ApproveItem))))
	mux.Handle("POST /api/admin/items/{id}/reject", authMW(requireModerator(http.HandlerFunc(adminHandler.RejectItem))))
	mux.Handle("DELETE /api/admin/items/{id}", authMW(requireModerator(http.HandlerFunc(adminHandler.DeleteItem))))
	mux.Handle("POST /api/admin/claims/{id}/approve", authMW(requireModerator(http.HandlerFunc(adminHandler.ApproveClaim))))
	mux.Handle("POST /api/admin/claims/{id}/reject", authMW(requireModerator(http.HandlerFunc(adminHandler.RejectClaim))))

	// Users (admin only).
	mux.Handle("GET /api/admin/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/admin/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/admin/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/admin/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
