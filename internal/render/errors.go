package render

import (
	"errors"
	"fmt"
	"time"
)

// ErrBackendUnavailable means no renderer can be launched at all (browser
// binary missing, or the backend already closed). Callers treat this as
// fatal for the whole batch, unlike per-page failures.
var ErrBackendUnavailable = errors.New("render backend unavailable")

// TimeoutError reports a render that exceeded its hard deadline. Timeouts
// are kept distinct from crashes because they do not poison the browser
// process and need no pool recovery.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("render of %s timed out after %s", e.Path, e.Timeout)
}

// CrashError reports a renderer that died or failed unexpectedly. Repeated
// crashes cause the backend to discard and relaunch its browser allocator.
type CrashError struct {
	Path string
	Err  error
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("render of %s failed: %v", e.Path, e.Err)
}

func (e *CrashError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a render timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
