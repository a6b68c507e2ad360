package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/task-board/internal/domain"
)

// HandleHealthz responds with a 200 OK and a JSON body indicating the process is up.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz reports whether the database answers and which schema
// migration it is on.
func HandleReadyz(db domain.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Error("readiness ping", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		version, err := db.SchemaVersion(r.Context())
		if err != nil {
			slog.Error("readiness schema version", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "schema": version})
	}
}
