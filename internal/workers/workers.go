package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of render workers to run.
//
// Each worker holds a full headless-browser tab, so the count is derived
// from available CPUs but hard-capped: memory cost per worker dwarfs CPU
// cost. The limit parameter caps the worker count; use 0 for no limit.
//
// Can be overridden with the RENDER_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("RENDER_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS reflects container CPU limits in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForRender returns the worker count for render tasks. Rendering is
// browser-bound rather than CPU-bound, so one worker per CPU with a cap
// keeps memory in check.
func ForRender(limit int) int {
	return Count(1.0, limit)
}
