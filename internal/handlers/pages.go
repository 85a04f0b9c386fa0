package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"teletext-archive/internal/logging"

	"github.com/gorilla/mux"
)

// pageURL builds the static URL for a file inside an archive folder,
// following the convention {base}/{folderPath}/{fileName}.
func pageURL(relFolder, fileName string) string {
	if relFolder == "" {
		return "/pages/" + url.PathEscape(fileName)
	}
	segments := strings.Split(relFolder, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/pages/" + path.Join(append(segments, url.PathEscape(fileName))...)
}

// thumbnailName returns the artifact file name for a page number.
func thumbnailName(number int) string {
	return fmt.Sprintf("%03d.png", number)
}

// ServePage handles GET /pages/{path}. HTML pages are served straight off
// disk; PNG thumbnails go through the store so hot artifacts come from the
// in-memory cache.
func (h *Handlers) ServePage(w http.ResponseWriter, r *http.Request) {
	rawPath := mux.Vars(r)["path"]

	abs, ok := h.resolvePath(w, rawPath)
	if !ok {
		return
	}

	info, err := os.Stat(abs)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if info.IsDir() {
		writeError(w, http.StatusBadRequest, "not a file")
		return
	}

	if strings.HasSuffix(abs, ".png") {
		buf, err := h.store.Read(abs)
		if err != nil {
			logging.Warn("failed to read thumbnail %s: %v", abs, err)
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, info.Name(), info.ModTime(), bytes.NewReader(buf))
		return
	}

	http.ServeFile(w, r, abs)
}
