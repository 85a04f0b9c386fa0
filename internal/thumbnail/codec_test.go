package thumbnail

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// makeScreenshot produces a PNG buffer of the given dimensions.
func makeScreenshot(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test screenshot: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeProducesFixedSquare(t *testing.T) {
	codec := NewCodec(250)

	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"landscape viewport", 800, 600},
		{"portrait", 600, 800},
		{"already square", 250, 250},
		{"tiny", 40, 30},
		{"tall page capture", 800, 2400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := makeScreenshot(t, tt.width, tt.height)

			out, err := codec.Normalize(raw)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}

			img, format, err := image.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output does not decode: %v", err)
			}
			if format != "png" {
				t.Errorf("output format = %q, want png", format)
			}
			if img.Bounds().Dx() != 250 || img.Bounds().Dy() != 250 {
				t.Errorf("output dimensions = %dx%d, want 250x250",
					img.Bounds().Dx(), img.Bounds().Dy())
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	codec := NewCodec(250)
	raw := makeScreenshot(t, 800, 600)

	first, err := codec.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	second, err := codec.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Normalize not deterministic for identical input")
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	codec := NewCodec(250)

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty buffer", nil},
		{"garbage bytes", []byte("this is not an image")},
		{"truncated png", makeScreenshot(t, 100, 100)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Normalize(tt.raw)
			if err == nil {
				t.Fatal("Normalize succeeded on bad input")
			}
			var codecErr *CodecError
			if !errors.As(err, &codecErr) {
				t.Errorf("error type = %T, want *CodecError", err)
			}
		})
	}
}

func TestNewCodecDefaultsSize(t *testing.T) {
	if got := NewCodec(0).Size(); got != DefaultSize {
		t.Errorf("NewCodec(0).Size() = %d, want %d", got, DefaultSize)
	}
	if got := NewCodec(128).Size(); got != 128 {
		t.Errorf("NewCodec(128).Size() = %d, want 128", got)
	}
}
