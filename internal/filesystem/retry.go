// Package filesystem provides filesystem operations with bounded retry for
// transient OS-level errors (NFS stale handles, short-lived locks on rename).
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"teletext-archive/internal/logging"
	"teletext-archive/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for transient filesystem errors
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isTransientError reports whether an error is worth retrying: an NFS stale
// file handle, or a resource temporarily held by another process (the rename
// race seen when an editor still has the destination open).
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ESTALE, syscall.EBUSY, syscall.ETXTBSY:
			return true
		}
	}

	return false
}

// Do runs fn with retry on transient errors, using exponential backoff
// capped at config.MaxBackoff. The operation name labels metrics and logs.
func Do(operation string, config RetryConfig, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s succeeded on retry %d", operation, attempt)
				metrics.FilesystemRetrySuccess.WithLabelValues(operation).Inc()
			}
			return nil
		}

		lastErr = err

		if !isTransientError(err) {
			return err
		}

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			metrics.FilesystemRetryAttempts.WithLabelValues(operation).Inc()
			logging.Debug("%s transient error (%v), retrying in %v (attempt %d/%d)",
				operation, err, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("%s failed after %d retries: %v", operation, config.MaxRetries, lastErr)
	metrics.FilesystemRetryFailures.WithLabelValues(operation).Inc()
	return lastErr
}

// RenameWithRetry performs os.Rename with retry on transient errors
func RenameWithRetry(oldPath, newPath string, config RetryConfig) error {
	return Do("rename", config, func() error {
		return os.Rename(oldPath, newPath)
	})
}

// RemoveAllWithRetry performs os.RemoveAll with retry on transient errors
func RemoveAllWithRetry(path string, config RetryConfig) error {
	return Do("remove", config, func() error {
		return os.RemoveAll(path)
	})
}

// StatWithRetry performs os.Stat with retry on transient errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := Do("stat", config, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	return info, err
}
