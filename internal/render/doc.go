// Package render rasterizes archived HTML pages with a pool of headless
// Chrome tabs. Concurrency is bounded process-wide; every render carries
// its own hard timeout.
package render
