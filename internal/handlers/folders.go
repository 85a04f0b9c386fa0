package handlers

import (
	"net/http"
	"os"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/database"
	"teletext-archive/internal/logging"
)

// PageView is one page entry in a folder listing, with the static URL
// convention the frontend turns into links and <img> references.
type PageView struct {
	Number       int    `json:"number"`
	HasThumbnail bool   `json:"hasThumbnail"`
	PageURL      string `json:"pageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// FolderView is the folder browsing response.
type FolderView struct {
	Path    string              `json:"path"`
	Meta    database.FolderMeta `json:"meta"`
	Folders []string            `json:"folders"`
	Pages   []PageView          `json:"pages"`
	// Groups and Years are filled at the archive root only
	Groups map[string][]string `json:"groups,omitempty"`
	Years  []string            `json:"years,omitempty"`
}

// GetFolder handles GET /api/folders?path=. Besides the listing, it kicks
// off background thumbnail generation for the folder; the response never
// waits on it. Missing artifacts simply show as hasThumbnail=false until a
// later listing.
func (h *Handlers) GetFolder(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.Query().Get("path")

	abs, ok := h.resolvePath(w, rawPath)
	if !ok {
		return
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	folders, err := archive.ListFolders(abs)
	if err != nil {
		logging.Error("failed to list folders in %s: %v", abs, err)
		writeError(w, http.StatusInternalServerError, "failed to list folder")
		return
	}

	pages, err := archive.ListPages(abs)
	if err != nil {
		logging.Error("failed to list pages in %s: %v", abs, err)
		writeError(w, http.StatusInternalServerError, "failed to list folder")
		return
	}

	rel, err := h.resolver.Relative(abs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}

	meta, err := h.db.GetFolderMeta(r.Context(), rel)
	if err != nil {
		logging.Warn("metadata lookup failed for %q: %v", rel, err)
		meta = database.FolderMeta{Path: rel}
	}

	view := FolderView{
		Path:    rel,
		Meta:    meta,
		Folders: folders,
		Pages:   make([]PageView, 0, len(pages)),
	}
	for _, page := range pages {
		view.Pages = append(view.Pages, PageView{
			Number:       page.Number,
			HasThumbnail: page.HasThumbnail,
			PageURL:      pageURL(rel, page.FileName),
			ThumbnailURL: pageURL(rel, thumbnailName(page.Number)),
		})
	}

	if rel == "" {
		view.Groups = archive.GroupByYear(folders)
		view.Years = archive.SortedYears(view.Groups)
	}

	// Fill in any missing thumbnails behind the response
	if len(pages) > 0 {
		h.scheduler.RunDetached(abs)
	}

	writeJSON(w, http.StatusOK, view)
}
