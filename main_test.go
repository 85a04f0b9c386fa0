package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/database"
	"teletext-archive/internal/handlers"
	"teletext-archive/internal/render"
	"teletext-archive/internal/thumbnail"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	resolver, err := archive.NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backend := render.NewBackend(render.DefaultOptions())
	t.Cleanup(backend.Close)
	store := thumbnail.NewStore(0)
	scheduler := thumbnail.NewScheduler(backend, thumbnail.NewCodec(250), store, 1)

	return setupRouter(handlers.New(resolver, scheduler, store, db))
}

func TestRouterDispatch(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/livez", http.StatusOK},
		{"GET", "/readyz", http.StatusOK},
		{"GET", "/version", http.StatusOK},
		{"GET", "/api/folders?path=", http.StatusOK},
		{"POST", "/api/folders", http.StatusMethodNotAllowed},
		{"GET", "/api/folder", http.StatusMethodNotAllowed},
		{"PUT", "/api/regenerate", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, rec.Code, tt.want)
		}
	}
}

func TestRouterServesVersionJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
}
