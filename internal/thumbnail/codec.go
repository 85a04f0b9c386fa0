package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"teletext-archive/internal/logging"

	// Screenshot buffers are PNG from Chrome, but decoders for the other
	// common raster formats are registered so a substituted renderer works
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the square thumbnail edge length in pixels.
const DefaultSize = 250

// CodecError reports a screenshot buffer that could not be normalized.
// It is an item-level failure; the batch continues.
type CodecError struct {
	Reason string
	Err    error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("thumbnail codec: %s: %v", e.Reason, e.Err)
	}
	return "thumbnail codec: " + e.Reason
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Codec normalizes raw screenshots into fixed-size square PNG thumbnails
// using a cover fit: scale to fill, crop overflow, centered. Aspect ratio
// is never distorted. The transform is deterministic for identical input.
type Codec struct {
	size int
}

// NewCodec creates a codec producing size x size thumbnails. Non-positive
// sizes fall back to DefaultSize.
func NewCodec(size int) *Codec {
	if size <= 0 {
		size = DefaultSize
	}
	return &Codec{size: size}
}

// Size returns the configured thumbnail edge length.
func (c *Codec) Size() int {
	return c.size
}

// Normalize converts a raw screenshot buffer into the persisted thumbnail
// format. libvips is used when available (decode-time shrinking keeps
// memory flat); otherwise the pure-Go path decodes, cover-fits and
// re-encodes with imaging.
func (c *Codec) Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &CodecError{Reason: "empty screenshot buffer"}
	}

	if IsVipsAvailable() {
		out, err := normalizeWithVips(raw, c.size)
		if err == nil {
			return out, nil
		}
		logging.Debug("vips normalize failed (%v), falling back to pure-Go path", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &CodecError{Reason: "undecodable screenshot buffer", Err: err}
	}
	logging.Debug("normalizing %s screenshot %dx%d to %dx%d",
		format, img.Bounds().Dx(), img.Bounds().Dy(), c.size, c.size)

	thumb := imaging.Fill(img, c.size, c.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, &CodecError{Reason: "failed to encode thumbnail", Err: err}
	}

	return buf.Bytes(), nil
}
