package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/database"
	"teletext-archive/internal/handlers"
	"teletext-archive/internal/logging"
	"teletext-archive/internal/middleware"
	"teletext-archive/internal/render"
	"teletext-archive/internal/startup"
	"teletext-archive/internal/thumbnail"
	"teletext-archive/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	resolver, err := archive.NewResolver(config.ArchiveDir)
	if err != nil {
		startup.LogFatal("Archive resolver error: %v", err)
	}

	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize metadata database: %v", err)
	}

	if err := thumbnail.InitVips(); err != nil {
		logging.Warn("libvips unavailable, using pure-Go image path: %v", err)
	}

	backend := render.NewBackend(render.Options{
		MaxConcurrent:  config.RenderWorkers,
		Timeout:        config.RenderTimeout,
		ViewportWidth:  config.ViewportWidth,
		ViewportHeight: config.ViewportHeight,
	})

	codec := thumbnail.NewCodec(config.ThumbnailSize)
	store := thumbnail.NewStore(thumbnail.DefaultCacheBytes)
	scheduler := thumbnail.NewScheduler(backend, codec, store,
		workers.ForRender(config.RenderWorkers))

	h := handlers.New(resolver, scheduler, store, db)

	router := setupRouter(h)

	metricsConfig := middleware.DefaultMetricsConfig()
	router.Use(middleware.Metrics(metricsConfig))

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open for the whole batch
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    ":" + config.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, backend, db)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/folders", h.GetFolder).Methods("GET")
	api.HandleFunc("/folder", h.CreateFolder).Methods("POST")
	api.HandleFunc("/folder", h.DeleteFolder).Methods("DELETE")
	api.HandleFunc("/meta", h.GetMeta).Methods("GET")
	api.HandleFunc("/meta", h.UpdateMeta).Methods("PUT")
	api.HandleFunc("/regenerate", h.Regenerate).Methods("POST")
	api.HandleFunc("/upload", h.UploadPage).Methods("POST")
	api.HandleFunc("/rename", h.RenameFolder).Methods("POST")
	api.HandleFunc("/page", h.DeletePage).Methods("DELETE")

	r.HandleFunc("/pages/{path:.*}", h.ServePage).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, backend *render.Backend, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("HTTP server shutdown error: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server stopped")

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Error("Metrics server shutdown error: %v", err)
		}
		startup.LogShutdownStepComplete("Metrics server stopped")
	}

	backend.Close()
	startup.LogShutdownStepComplete("Render backend closed")

	if err := db.Close(); err != nil {
		logging.Error("Database close error: %v", err)
	}
	startup.LogShutdownStepComplete("Database closed")

	thumbnail.ShutdownVips()
	startup.LogShutdownComplete()
}
