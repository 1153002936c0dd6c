package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/store"
)

// PhotoHandler serves photos kept by the database photo backend at
// GET /photos/{key}.
func PhotoHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, mime, err := store.GetPhoto(r.Context(), db, r.PathValue("key"))
		if err != nil {
			slog.Error("failed to get photo", "error", err)
			http.Error(w, "failed to get photo", http.StatusInternalServerError)
			return
		}
		if data == nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", mime)
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
		w.Write(data)
	}
}
