package thumbnail

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"teletext-archive/internal/archive"
	"teletext-archive/internal/filesystem"
	"teletext-archive/internal/logging"
	"teletext-archive/internal/metrics"
)

// DefaultCacheBytes bounds the in-memory thumbnail byte cache.
const DefaultCacheBytes = 32 * 1024 * 1024

// Store decides when a page needs a thumbnail and persists normalized
// artifacts. The decision is a pure existence check: a present artifact is
// assumed valid, with no hash or mtime comparison. Writes are atomic from a
// reader's perspective (temp file + rename).
//
// A bounded in-memory byte cache shadows hot thumbnails for the serving
// layer; it is overwritten on every Persist so an explicit regeneration is
// never served stale.
type Store struct {
	retry filesystem.RetryConfig

	mu         sync.Mutex
	cache      map[string][]byte
	cacheBytes int
	maxBytes   int
}

// NewStore creates a Store with the given in-memory cache budget in bytes.
// A non-positive budget disables the cache.
func NewStore(maxBytes int) *Store {
	return &Store{
		retry:    filesystem.DefaultRetryConfig(),
		cache:    make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

// NeedsGeneration reports whether the page at htmlPath lacks its sibling
// thumbnail artifact.
func (s *Store) NeedsGeneration(htmlPath string) bool {
	_, err := os.Stat(archive.ThumbnailPath(htmlPath))
	return err != nil
}

// Persist writes the artifact buffer to pngPath, overwriting any existing
// file. The buffer lands in a temp file in the same directory first, then
// renames over the destination so concurrent readers never observe a torn
// file. The in-memory cache entry is replaced in the same call.
func (s *Store) Persist(pngPath string, buf []byte) error {
	dir := filepath.Dir(pngPath)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(pngPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact %s: %w", pngPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp artifact %s: %w", tmpPath, err)
	}

	if err := filesystem.RenameWithRetry(tmpPath, pngPath, s.retry); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move artifact into place at %s: %w", pngPath, err)
	}

	s.put(pngPath, buf)
	logging.Debug("thumbnail persisted: %s (%d bytes)", pngPath, len(buf))
	return nil
}

// Read returns the artifact bytes at pngPath, preferring the in-memory
// cache.
func (s *Store) Read(pngPath string) ([]byte, error) {
	key := filepath.Clean(pngPath)

	s.mu.Lock()
	if buf, ok := s.cache[key]; ok {
		s.mu.Unlock()
		metrics.ThumbnailCacheHits.WithLabelValues("hit").Inc()
		return buf, nil
	}
	s.mu.Unlock()
	metrics.ThumbnailCacheHits.WithLabelValues("miss").Inc()

	buf, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, err
	}
	s.put(pngPath, buf)
	return buf, nil
}

// Invalidate drops the cache entry for pngPath, for callers that delete
// artifacts directly.
func (s *Store) Invalidate(pngPath string) {
	key := filepath.Clean(pngPath)
	s.mu.Lock()
	if buf, ok := s.cache[key]; ok {
		s.cacheBytes -= len(buf)
		delete(s.cache, key)
	}
	s.mu.Unlock()
}

// put stores a cache entry, evicting arbitrary entries to stay under the
// byte budget. Entries larger than the whole budget are not cached.
func (s *Store) put(pngPath string, buf []byte) {
	if s.maxBytes <= 0 || len(buf) > s.maxBytes {
		return
	}
	key := filepath.Clean(pngPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.cache[key]; ok {
		s.cacheBytes -= len(old)
	}
	for evictKey, evictBuf := range s.cache {
		if s.cacheBytes+len(buf) <= s.maxBytes {
			break
		}
		if evictKey == key {
			continue
		}
		s.cacheBytes -= len(evictBuf)
		delete(s.cache, evictKey)
	}
	s.cache[key] = buf
	s.cacheBytes += len(buf)
}
