package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/logging"
	"teletext-archive/internal/metrics"
	"teletext-archive/internal/render"

	"github.com/google/uuid"
)

// Progress is one batch progress event. Events are emitted in actual task
// completion order; Current never decreases and the final event always has
// Current == Total.
type Progress struct {
	Percent   int      `json:"progress"`
	Current   int      `json:"current"`
	Total     int      `json:"total"`
	Generated []string `json:"generated"`
	Final     bool     `json:"-"`
	Success   bool     `json:"-"`
	Errors    []string `json:"-"`
	Skipped   bool     `json:"-"`
}

// Options controls a single batch run.
type Options struct {
	// Force regenerates every page regardless of existing artifacts.
	Force bool
	// OnProgress, if set, receives an event after task completions.
	OnProgress func(Progress)
	// ProgressEvery throttles intermediate events to every Nth
	// completion (default 1). The final event is never throttled.
	ProgressEvery int
}

// Result aggregates one batch invocation. Item failures land in Errors and
// never fail the batch; only Err (backend-level abort) does.
type Result struct {
	ID        string
	Folder    string
	Total     int
	Generated []string
	Errors    []string
	Skipped   bool
	Err       error
}

// task is one unit of work. It carries no retry state; a failed task is
// simply reported.
type task struct {
	htmlPath string
	pngPath  string
}

// Scheduler drives thumbnail generation for archive folders through a
// fixed-size worker pool. One scheduler is shared by all request handlers;
// the render backend's global slot ceiling holds across overlapping
// batches.
type Scheduler struct {
	renderer render.Renderer
	codec    *Codec
	store    *Store
	workers  int

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewScheduler creates a scheduler running at most workers simultaneous
// tasks per batch.
func NewScheduler(renderer render.Renderer, codec *Codec, store *Store, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		renderer: renderer,
		codec:    codec,
		store:    store,
		workers:  workers,
		inflight: make(map[string]struct{}),
	}
}

// Run generates thumbnails for every pending page of a folder and blocks
// until the batch settles. If another batch is already running for the same
// folder the call returns immediately with Skipped set, rather than
// double-rendering.
func (s *Scheduler) Run(ctx context.Context, folderAbs string, opts Options) *Result {
	result := &Result{
		ID:     uuid.NewString(),
		Folder: folderAbs,
	}

	key := filepath.Clean(folderAbs)
	if !s.acquire(key) {
		logging.Debug("batch %s: folder %s already in flight, skipping", result.ID, folderAbs)
		result.Skipped = true
		s.emit(opts, finalEvent(result))
		return result
	}
	defer s.release(key)

	pending, err := s.pendingTasks(folderAbs, opts.Force)
	if err != nil {
		result.Err = err
		s.emit(opts, finalEvent(result))
		return result
	}
	result.Total = len(pending)

	if len(pending) == 0 {
		s.emit(opts, finalEvent(result))
		return result
	}

	logging.Info("batch %s: generating %d thumbnails in %s (force=%v)",
		result.ID, len(pending), folderAbs, opts.Force)
	metrics.BatchesActive.Inc()
	defer metrics.BatchesActive.Dec()
	start := time.Now()
	defer func() { metrics.BatchDuration.Observe(time.Since(start).Seconds()) }()

	s.runPool(ctx, pending, opts, result)

	s.emit(opts, finalEvent(result))
	logging.Info("batch %s: done, %d generated, %d failed",
		result.ID, len(result.Generated), len(result.Errors))
	return result
}

// RunDetached starts background generation for a folder and returns
// immediately. All errors are contained here: a detached batch can never
// take the process down.
func (s *Scheduler) RunDetached(folderAbs string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("detached batch for %s panicked: %v", folderAbs, r)
			}
		}()
		result := s.Run(context.Background(), folderAbs, Options{})
		if result.Err != nil {
			logging.Error("detached batch for %s failed: %v", folderAbs, result.Err)
		}
		for _, msg := range result.Errors {
			logging.Warn("detached batch for %s: %s", folderAbs, msg)
		}
	}()
}

// pendingTasks computes the work set from the folder inventory.
func (s *Scheduler) pendingTasks(folderAbs string, force bool) ([]task, error) {
	pages, err := archive.ListPages(folderAbs)
	if err != nil {
		return nil, err
	}

	var pending []task
	for _, page := range pages {
		htmlPath := filepath.Join(folderAbs, page.FileName)
		if !force && !s.store.NeedsGeneration(htmlPath) {
			metrics.ThumbnailsSkipped.Inc()
			continue
		}
		pending = append(pending, task{
			htmlPath: htmlPath,
			pngPath:  archive.ThumbnailPath(htmlPath),
		})
	}
	return pending, nil
}

// taskResult reports one finished task back to the collector.
type taskResult struct {
	artifact string
	err      error
}

// runPool executes tasks with bounded concurrency and collects outcomes.
// One task's failure never cancels its siblings; only a backend that cannot
// launch at all aborts the rest of the batch.
func (s *Scheduler) runPool(ctx context.Context, pending []task, opts Options, result *Result) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan task, len(pending))
	for _, t := range pending {
		tasks <- t
	}
	close(tasks)

	results := make(chan taskResult, len(pending))

	workerCount := s.workers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}
	for i := 0; i < workerCount; i++ {
		go func() {
			for t := range tasks {
				results <- s.process(runCtx, t)
			}
		}()
	}

	every := opts.ProgressEvery
	if every < 1 {
		every = 1
	}

	total := len(pending)
	for current := 1; current <= total; current++ {
		res := <-results

		if res.err != nil {
			result.Errors = append(result.Errors, res.err.Error())
			if errors.Is(res.err, render.ErrBackendUnavailable) && result.Err == nil {
				// No task can possibly proceed; stop feeding the
				// browser and fail the batch as a whole.
				result.Err = res.err
				cancel()
			}
		} else {
			result.Generated = append(result.Generated, res.artifact)
			metrics.ThumbnailsGenerated.Inc()
		}

		if current < total && current%every != 0 {
			continue
		}
		s.emit(opts, Progress{
			Percent:   current * 100 / total,
			Current:   current,
			Total:     total,
			Generated: append([]string(nil), result.Generated...),
		})
	}
}

// process runs one task: render, normalize, persist. Every failure is
// wrapped with the artifact name and a stage recorded in metrics.
func (s *Scheduler) process(ctx context.Context, t task) taskResult {
	name := filepath.Base(t.pngPath)

	raw, err := s.renderer.Render(ctx, t.htmlPath)
	if err != nil {
		metrics.ThumbnailsFailed.WithLabelValues("render").Inc()
		return taskResult{err: fmt.Errorf("%s: %w", name, err)}
	}

	buf, err := s.codec.Normalize(raw)
	if err != nil {
		metrics.ThumbnailsFailed.WithLabelValues("encode").Inc()
		return taskResult{err: fmt.Errorf("%s: %w", name, err)}
	}

	if err := s.store.Persist(t.pngPath, buf); err != nil {
		metrics.ThumbnailsFailed.WithLabelValues("persist").Inc()
		return taskResult{err: fmt.Errorf("%s: %w", name, err)}
	}

	return taskResult{artifact: name}
}

func (s *Scheduler) emit(opts Options, p Progress) {
	if opts.OnProgress != nil {
		opts.OnProgress(p)
	}
}

func (s *Scheduler) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Scheduler) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// finalEvent builds the terminal progress event for a settled batch.
func finalEvent(result *Result) Progress {
	percent := 100
	current := result.Total
	return Progress{
		Percent:   percent,
		Current:   current,
		Total:     result.Total,
		Generated: append([]string(nil), result.Generated...),
		Final:     true,
		Success:   result.Err == nil,
		Errors:    append([]string(nil), result.Errors...),
		Skipped:   result.Skipped,
	}
}
