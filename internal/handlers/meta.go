package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"teletext-archive/internal/database"
	"teletext-archive/internal/logging"
)

// GetMeta handles GET /api/meta?path=.
func (h *Handlers) GetMeta(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.resolvePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	rel, err := h.resolver.Relative(abs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}

	meta, err := h.db.GetFolderMeta(r.Context(), rel)
	if err != nil {
		logging.Error("failed to load metadata for %q: %v", rel, err)
		writeError(w, http.StatusInternalServerError, "failed to load metadata")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// metaUpdate is the PUT /api/meta request body.
type metaUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateMeta handles PUT /api/meta?path=.
func (h *Handlers) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.resolvePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	var update metaUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.resolver.Relative(abs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}

	meta := database.FolderMeta{
		Path:        rel,
		Title:       update.Title,
		Description: update.Description,
	}
	if err := h.db.SetFolderMeta(r.Context(), meta); err != nil {
		logging.Error("failed to save metadata for %q: %v", rel, err)
		writeError(w, http.StatusInternalServerError, "failed to save metadata")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}
