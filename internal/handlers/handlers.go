package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/database"
	"teletext-archive/internal/logging"
	"teletext-archive/internal/thumbnail"
)

// Handlers bundles the collaborators every endpoint needs.
type Handlers struct {
	resolver  *archive.Resolver
	scheduler *thumbnail.Scheduler
	store     *thumbnail.Store
	db        *database.Database
}

// New creates the handler set.
func New(resolver *archive.Resolver, scheduler *thumbnail.Scheduler, store *thumbnail.Store, db *database.Database) *Handlers {
	return &Handlers{
		resolver:  resolver,
		scheduler: scheduler,
		store:     store,
		db:        db,
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// resolvePath validates the "path" query parameter and returns its absolute
// location, writing the error response itself on failure.
func (h *Handlers) resolvePath(w http.ResponseWriter, raw string) (string, bool) {
	abs, err := h.resolver.Resolve(raw)
	if err != nil {
		if errors.Is(err, archive.ErrInvalidPath) {
			writeError(w, http.StatusBadRequest, "invalid path")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to resolve path")
		}
		return "", false
	}
	return abs, true
}
