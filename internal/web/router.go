package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/workflow"
	webembed "github.com/erazemk/lostfound/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *workflow.Service, photoStore photos.Store) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Service:   svc,
		Photos:    photoStore,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /{$}", s.HomePage)
	mux.HandleFunc("GET /report", s.ReportPage)
	mux.HandleFunc("POST /report", s.ReportSubmit)
	mux.HandleFunc("GET /claim", s.ClaimPage)
	mux.HandleFunc("GET /claim/{id}", s.ClaimItemPage)
	mux.HandleFunc("POST /claim/{id}", s.ClaimSubmit)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /admin", cookieAuth(http.HandlerFunc(s.AdminPage)))
	mux.Handle("POST /admin/items/{id}/{action}", cookieAuth(http.HandlerFunc(s.ItemActionSubmit)))
	mux.Handle("POST /admin/claims/{id}/{action}", cookieAuth(http.HandlerFunc(s.ClaimActionSubmit)))

	mux.Handle("GET /admin/users", cookieAuth(http.HandlerFunc(s.UsersPage)))
	mux.Handle("POST /admin/users", cookieAuth(http.HandlerFunc(s.UserCreateSubmit)))
	mux.Handle("POST /admin/users/{id}/password", cookieAuth(http.HandlerFunc(s.UserResetPasswordSubmit)))
	mux.Handle("POST /admin/users/{id}/delete", cookieAuth(http.HandlerFunc(s.UserDeleteSubmit)))

	mux.Handle("GET /admin/settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /admin/settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
