package render

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"teletext-archive/internal/logging"
	"teletext-archive/internal/metrics"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer produces a raw screenshot buffer for a local HTML file. The
// production implementation drives headless Chrome; tests substitute fakes.
type Renderer interface {
	Render(ctx context.Context, htmlPath string) ([]byte, error)
	Close()
}

// Options configures the Chrome render backend.
type Options struct {
	// MaxConcurrent is the global ceiling on simultaneously open tabs.
	// Each tab is a full renderer; keep this small.
	MaxConcurrent int
	// Timeout is the hard per-render deadline covering navigation and
	// capture.
	Timeout time.Duration
	// ViewportWidth and ViewportHeight set the initial logical viewport.
	ViewportWidth  int
	ViewportHeight int
}

// DefaultOptions returns the production defaults: 3 tabs, 15s deadline,
// 800x600 viewport.
func DefaultOptions() Options {
	return Options{
		MaxConcurrent:  3,
		Timeout:        15 * time.Second,
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

// consecutive crash count that triggers an allocator relaunch
const crashRestartThreshold = 3

// Backend renders pages in a shared headless Chrome instance, one fresh tab
// per render. The browser allocator is started lazily on first use and torn
// down by Close. The concurrency ceiling is enforced here, process-wide,
// regardless of how many batches are running.
type Backend struct {
	opts  Options
	slots chan struct{}

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	crashes     int
	closed      bool
}

// NewBackend creates a Chrome render backend. The browser process is not
// launched until the first Render call.
func NewBackend(opts Options) *Backend {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth = DefaultOptions().ViewportWidth
		opts.ViewportHeight = DefaultOptions().ViewportHeight
	}
	return &Backend{
		opts:  opts,
		slots: make(chan struct{}, opts.MaxConcurrent),
	}
}

// Render loads the HTML file in a new tab and captures a full-page PNG
// screenshot. It blocks while all slots are busy. Failures are classified:
// TimeoutError for deadline overruns, CrashError for everything else, and
// ErrBackendUnavailable when no browser can be launched at all.
func (b *Backend) Render(ctx context.Context, htmlPath string) ([]byte, error) {
	select {
	case b.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-b.slots }()

	metrics.RendersActive.Inc()
	defer metrics.RendersActive.Dec()

	allocCtx, err := b.allocator()
	if err != nil {
		metrics.RendersTotal.WithLabelValues("unavailable").Inc()
		return nil, err
	}

	// Fresh tab per render so a crashed page never contaminates the next.
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelCaller context.CancelFunc
		tabCtx, cancelCaller = context.WithDeadline(tabCtx, deadline)
		defer cancelCaller()
	}

	url := fileURL(htmlPath)
	logging.Debug("rendering %s (viewport %dx%d)", url, b.opts.ViewportWidth, b.opts.ViewportHeight)

	var buf []byte
	start := time.Now()
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(b.opts.ViewportWidth), int64(b.opts.ViewportHeight)),
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var captureErr error
			buf, captureErr = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return captureErr
		}),
	)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, b.classify(htmlPath, err)
	}

	b.mu.Lock()
	b.crashes = 0
	b.mu.Unlock()

	metrics.RendersTotal.WithLabelValues("ok").Inc()
	return buf, nil
}

// Close tears down the browser allocator. In-flight renders fail; later
// Render calls return ErrBackendUnavailable.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCtx = nil
		b.allocCancel = nil
	}
	logging.Info("render backend closed")
}

// allocator returns the shared exec allocator, launching it on first use.
func (b *Backend) allocator() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBackendUnavailable
	}
	if b.allocCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("allow-file-access-from-files", true),
		)
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		logging.Info("render backend: browser allocator started (max %d tabs, timeout %s)",
			b.opts.MaxConcurrent, b.opts.Timeout)
	}
	return b.allocCtx, nil
}

// classify converts a chromedp error into the pipeline's error taxonomy and
// records crash bookkeeping.
func (b *Backend) classify(htmlPath string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		metrics.RendersTotal.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		metrics.RendersTotal.WithLabelValues("timeout").Inc()
		logging.Warn("render timeout for %s after %s", htmlPath, b.opts.Timeout)
		return &TimeoutError{Path: htmlPath, Timeout: b.opts.Timeout}
	}

	metrics.RendersTotal.WithLabelValues("crash").Inc()
	logging.Warn("render crash for %s: %v", htmlPath, err)

	// A possibly corrupted browser must not be reused indefinitely.
	// After enough consecutive crashes, discard the allocator; the next
	// render launches a fresh browser.
	b.mu.Lock()
	b.crashes++
	if b.crashes >= crashRestartThreshold && b.allocCancel != nil {
		logging.Warn("render backend: %d consecutive crashes, relaunching browser", b.crashes)
		b.allocCancel()
		b.allocCtx = nil
		b.allocCancel = nil
		b.crashes = 0
		metrics.RendererRestarts.Inc()
	}
	b.mu.Unlock()

	return &CrashError{Path: htmlPath, Err: err}
}

// fileURL converts an absolute filesystem path to a file:// URL.
func fileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}
