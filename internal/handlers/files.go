package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/filesystem"
	"teletext-archive/internal/logging"
)

// maxUploadBytes bounds a single page upload. Teletext snapshots are tiny;
// anything bigger is not a page.
const maxUploadBytes = 10 << 20

// CreateFolder handles POST /api/folder?path=.
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.Query().Get("path")
	if rawPath == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, ok := h.resolvePath(w, rawPath)
	if !ok {
		return
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		logging.Error("failed to create folder %s: %v", abs, err)
		writeError(w, http.StatusInternalServerError, "failed to create folder")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"path": rawPath})
}

// UploadPage handles POST /api/upload?path=. The multipart "file" part must
// be named NNN.html with NNN a valid page number. A stale sibling thumbnail
// is removed so the next folder view regenerates it from the new content.
func (h *Handlers) UploadPage(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.resolvePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if _, ok := archive.ParsePageFileName(name); !ok {
		writeError(w, http.StatusBadRequest, "file name must be a 3-digit page number with .html extension")
		return
	}

	target := filepath.Join(abs, name)
	out, err := os.Create(target)
	if err != nil {
		logging.Error("failed to create page file %s: %v", target, err)
		writeError(w, http.StatusInternalServerError, "failed to store page")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(target)
		logging.Error("failed to write page file %s: %v", target, err)
		writeError(w, http.StatusInternalServerError, "failed to store page")
		return
	}
	if err := out.Close(); err != nil {
		logging.Error("failed to close page file %s: %v", target, err)
		writeError(w, http.StatusInternalServerError, "failed to store page")
		return
	}

	// New content invalidates the old artifact
	pngPath := archive.ThumbnailPath(target)
	if err := os.Remove(pngPath); err == nil {
		h.store.Invalidate(pngPath)
	}

	logging.Info("page uploaded: %s", target)
	writeJSON(w, http.StatusCreated, map[string]string{"file": name})
}

// renameRequest is the POST /api/rename body.
type renameRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// RenameFolder handles POST /api/rename. The rename itself retries briefly
// on transient errors (editors holding the folder open), and folder
// metadata follows the new path.
func (h *Handlers) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPath == "" || req.NewPath == "" {
		writeError(w, http.StatusBadRequest, "oldPath and newPath are required")
		return
	}

	oldAbs, ok := h.resolvePath(w, req.OldPath)
	if !ok {
		return
	}
	newAbs, ok := h.resolvePath(w, req.NewPath)
	if !ok {
		return
	}

	if info, err := os.Stat(oldAbs); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if _, err := os.Stat(newAbs); err == nil {
		writeError(w, http.StatusConflict, "target already exists")
		return
	}

	if err := filesystem.RenameWithRetry(oldAbs, newAbs, filesystem.DefaultRetryConfig()); err != nil {
		logging.Error("failed to rename %s -> %s: %v", oldAbs, newAbs, err)
		writeError(w, http.StatusInternalServerError, "failed to rename folder")
		return
	}

	oldRel, _ := h.resolver.Relative(oldAbs)
	newRel, _ := h.resolver.Relative(newAbs)
	if err := h.db.RenameFolderMeta(r.Context(), oldRel, newRel); err != nil {
		logging.Warn("metadata not moved after rename: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": req.NewPath})
}

// DeleteFolder handles DELETE /api/folder?path=. The archive root cannot be
// deleted.
func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.Query().Get("path")
	if rawPath == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, ok := h.resolvePath(w, rawPath)
	if !ok {
		return
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	if err := filesystem.RemoveAllWithRetry(abs, filesystem.DefaultRetryConfig()); err != nil {
		logging.Error("failed to delete folder %s: %v", abs, err)
		writeError(w, http.StatusInternalServerError, "failed to delete folder")
		return
	}

	rel, _ := h.resolver.Relative(abs)
	if err := h.db.DeleteFolderMeta(r.Context(), rel); err != nil {
		logging.Warn("metadata not removed after delete: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": rawPath})
}

// DeletePage handles DELETE /api/page?path=&number=. Both the HTML page and
// its thumbnail artifact are removed.
func (h *Handlers) DeletePage(w http.ResponseWriter, r *http.Request) {
	abs, ok := h.resolvePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	number, err := strconv.Atoi(r.URL.Query().Get("number"))
	if err != nil || number < archive.MinPageNumber || number > archive.MaxPageNumber {
		writeError(w, http.StatusBadRequest, "number must be a page number in [100, 999]")
		return
	}

	// Pages come in both extensions; prefer .html, same as the inventory
	htmlPath := ""
	for _, ext := range []string{".html", ".htm"} {
		candidate := filepath.Join(abs, fmt.Sprintf("%03d%s", number, ext))
		if _, err := os.Stat(candidate); err == nil {
			htmlPath = candidate
			break
		}
	}
	if htmlPath == "" {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	if err := os.Remove(htmlPath); err != nil {
		logging.Error("failed to delete page %s: %v", htmlPath, err)
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}
	pngPath := archive.ThumbnailPath(htmlPath)
	if err := os.Remove(pngPath); err == nil {
		h.store.Invalidate(pngPath)
	}

	writeJSON(w, http.StatusOK, map[string]int{"deleted": number})
}
