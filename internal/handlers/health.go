package handlers

import (
	"net/http"
	"os"

	"teletext-archive/internal/startup"
)

// HealthCheck handles GET /healthz: the process is up.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LivenessCheck handles GET /livez.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessCheck handles GET /readyz: ready means the archive root is
// reachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.resolver.Root()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "archive unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetVersion handles GET /version.
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}
