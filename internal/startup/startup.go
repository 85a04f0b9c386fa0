package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"teletext-archive/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	ArchiveDir  string
	DataDir     string
	Port        string
	MetricsPort string

	RenderWorkers  int
	RenderTimeout  time.Duration
	ViewportWidth  int
	ViewportHeight int
	ThumbnailSize  int

	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	archiveDir := getEnv("ARCHIVE_DIR", "/archive")
	dataDir := getEnv("DATA_DIR", "/data")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	renderWorkers := getEnvInt("RENDER_WORKERS", 3)
	renderTimeoutStr := getEnv("RENDER_TIMEOUT", "15s")
	viewportWidth := getEnvInt("VIEWPORT_WIDTH", 800)
	viewportHeight := getEnvInt("VIEWPORT_HEIGHT", 600)
	thumbnailSize := getEnvInt("THUMBNAIL_SIZE", 250)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  ARCHIVE_DIR:       %s", archiveDir)
	logging.Info("  DATA_DIR:          %s", dataDir)
	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  RENDER_WORKERS:    %d", renderWorkers)
	logging.Info("  RENDER_TIMEOUT:    %s", renderTimeoutStr)
	logging.Info("  VIEWPORT:          %dx%d", viewportWidth, viewportHeight)
	logging.Info("  THUMBNAIL_SIZE:    %d", thumbnailSize)
	logging.Info("  LOG_STATIC_FILES:  %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS: %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	renderTimeout, err := time.ParseDuration(renderTimeoutStr)
	if err != nil {
		logging.Warn("  Invalid RENDER_TIMEOUT, using default: 15s")
		renderTimeout = 15 * time.Second
	}
	if renderWorkers < 1 {
		logging.Warn("  RENDER_WORKERS must be at least 1, using 1")
		renderWorkers = 1
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	archiveDir, err = filepath.Abs(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive directory path: %w", err)
	}
	logging.Info("  Archive directory (absolute): %s", archiveDir)

	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	logging.Info("  Data directory (absolute): %s", dataDir)

	// The archive must exist; the server never creates it
	info, err := os.Stat(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("archive directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive path %s is not a directory", archiveDir)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable (required for metadata): %w", err)
	}
	logging.Info("  [OK] Data directory is writable")

	if err := testWriteAccess(archiveDir); err != nil {
		logging.Warn("  Archive directory is not writable: %v", err)
		logging.Warn("  Thumbnail generation and uploads will fail until that is fixed")
	}

	return &Config{
		ArchiveDir:      archiveDir,
		DataDir:         dataDir,
		Port:            port,
		MetricsPort:     metricsPort,
		RenderWorkers:   renderWorkers,
		RenderTimeout:   renderTimeout,
		ViewportWidth:   viewportWidth,
		ViewportHeight:  viewportHeight,
		ThumbnailSize:   thumbnailSize,
		LogStaticFiles:  logStaticFiles,
		LogHealthChecks: logHealthChecks,
		MetricsEnabled:  metricsEnabled,
		DatabasePath:    filepath.Join(dataDir, "archive.db"),
	}, nil
}

func printBanner() {
	logging.Printf("teletext-archive %s (%s) built %s with %s",
		Version, Commit, BuildTime, GoVersion)
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		logging.Warn("Invalid %s value %q, using default %d", key, os.Getenv(key), fallback)
	}
	return fallback
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:  %v", config.StartupDuration)
	logging.Info("  Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:       DISABLED")
	}
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
