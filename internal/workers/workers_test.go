package workers

import (
	"runtime"
	"testing"
)

func TestCountRespectsLimit(t *testing.T) {
	if got := Count(1.0, 2); got > 2 {
		t.Errorf("Count(1.0, 2) = %d, exceeds limit", got)
	}
}

func TestCountMinimumOne(t *testing.T) {
	if got := Count(0.0, 0); got != 1 {
		t.Errorf("Count(0.0, 0) = %d, want floor of 1", got)
	}
}

func TestCountUnlimited(t *testing.T) {
	want := runtime.GOMAXPROCS(0)
	if got := Count(1.0, 0); got != want {
		t.Errorf("Count(1.0, 0) = %d, want %d", got, want)
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("RENDER_WORKERS", "7")
	if got := Count(1.0, 0); got != 7 {
		t.Errorf("Count = %d, want env override 7", got)
	}
}

func TestCountEnvOverrideCapped(t *testing.T) {
	t.Setenv("RENDER_WORKERS", "50")
	if got := Count(1.0, 4); got != 4 {
		t.Errorf("Count = %d, want limit 4", got)
	}
}

func TestCountEnvOverrideInvalid(t *testing.T) {
	for _, bad := range []string{"abc", "-1", "0"} {
		t.Setenv("RENDER_WORKERS", bad)
		if got := Count(1.0, 0); got < 1 {
			t.Errorf("Count with RENDER_WORKERS=%q = %d, want a sane fallback", bad, got)
		}
	}
}

func TestForRender(t *testing.T) {
	if got := ForRender(3); got < 1 || got > 3 {
		t.Errorf("ForRender(3) = %d, want within [1, 3]", got)
	}
}
