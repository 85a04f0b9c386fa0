package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"teletext-archive/internal/logging"
	"teletext-archive/internal/thumbnail"
)

// progressEvent is the SSE payload. Intermediate events carry progress and
// running totals; the final event additionally reports success and the
// collected item errors.
type progressEvent struct {
	Progress  int      `json:"progress"`
	Current   int      `json:"current"`
	Total     int      `json:"total"`
	Generated []string `json:"generated"`
	Success   *bool    `json:"success,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
}

// Regenerate handles POST /api/regenerate?path=. It re-renders every page
// of the folder unconditionally and streams one SSE frame per completed
// page. The connection closes after the final frame.
//
// The batch deliberately runs on a background context: if the client
// disconnects mid-stream, writing stops but queued artifacts are still
// generated.
func (h *Handlers) Regenerate(w http.ResponseWriter, r *http.Request) {
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientGone := false
	writeFrame := func(p thumbnail.Progress) {
		if clientGone {
			return
		}
		if r.Context().Err() != nil {
			clientGone = true
			logging.Debug("regenerate stream: client disconnected, batch continues")
			return
		}

		event := progressEvent{
			Progress:  p.Percent,
			Current:   p.Current,
			Total:     p.Total,
			Generated: p.Generated,
			Skipped:   p.Skipped,
		}
		if event.Generated == nil {
			event.Generated = []string{}
		}
		if p.Final {
			success := p.Success
			event.Success = &success
			event.Errors = p.Errors
		}

		payload, err := json.Marshal(event)
		if err != nil {
			logging.Error("regenerate stream: failed to marshal event: %v", err)
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			clientGone = true
			return
		}
		flusher.Flush()
	}

	result := h.scheduler.Run(context.Background(), abs, thumbnail.Options{
		Force: true,
		OnProgress: writeFrame,
	})

	if result.Skipped {
		logging.Info("regenerate: batch for %s already in flight", abs)
	}
	if result.Err != nil {
		logging.Error("regenerate batch for %s failed: %v", abs, result.Err)
	}
}
