package middleware

import (
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum Content-Length to compress, when declared.
	MinSize int
	// SkipContentTypes lists content-type prefixes never compressed.
	SkipContentTypes []string
	// SkipPaths lists path prefixes never compressed.
	SkipPaths []string
}

// DefaultCompressionConfig returns the default configuration. PNG
// thumbnails are already compressed and SSE streams must not be buffered,
// so both are exempt.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		SkipContentTypes: []string{
			"image/",
			"video/",
			"text/event-stream",
		},
		SkipPaths: []string{"/api/regenerate"},
	}
}

var gzipPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(nil)
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	config      CompressionConfig
	gz          *gzip.Writer
	wroteHeader bool
	compressing bool
}

func (grw *gzipResponseWriter) WriteHeader(code int) {
	if grw.wroteHeader {
		return
	}
	grw.wroteHeader = true

	contentType := grw.Header().Get("Content-Type")
	skip := false
	for _, prefix := range grw.config.SkipContentTypes {
		if strings.HasPrefix(contentType, prefix) {
			skip = true
			break
		}
	}

	// Tiny responses with a declared length are not worth the gzip overhead
	if !skip && grw.config.MinSize > 0 {
		if length, err := strconv.Atoi(grw.Header().Get("Content-Length")); err == nil && length < grw.config.MinSize {
			skip = true
		}
	}

	if !skip {
		grw.Header().Set("Content-Encoding", "gzip")
		grw.Header().Del("Content-Length")
		grw.gz = gzipPool.Get().(*gzip.Writer)
		grw.gz.Reset(grw.ResponseWriter)
		grw.compressing = true
	}

	grw.ResponseWriter.WriteHeader(code)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	if !grw.wroteHeader {
		grw.WriteHeader(http.StatusOK)
	}
	if grw.compressing {
		return grw.gz.Write(b)
	}
	return grw.ResponseWriter.Write(b)
}

func (grw *gzipResponseWriter) Flush() {
	if grw.compressing {
		grw.gz.Flush()
	}
	if f, ok := grw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (grw *gzipResponseWriter) close() {
	if grw.compressing {
		grw.gz.Close()
		gzipPool.Put(grw.gz)
		grw.gz = nil
	}
}

// Compression returns a middleware that gzips responses for clients that
// accept it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			grw := &gzipResponseWriter{ResponseWriter: w, config: config}
			defer grw.close()
			next.ServeHTTP(grw, r)
		})
	}
}
