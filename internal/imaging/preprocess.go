// Package imaging normalizes incoming photos before they are sent to the
// model gateway: oversized images are scaled down and everything is
// re-encoded as JPEG at a fixed quality, so repeat submissions of the same
// photo produce the same artifact.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Preprocessor is a pure transform; it never touches the network.
type Preprocessor struct {
	// MaxDimension caps the longer image side in pixels.
	MaxDimension int
	// JPEGQuality is the re-encode quality (1-100).
	JPEGQuality int
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		MaxDimension: 1024,
		JPEGQuality:  85,
	}
}

// Normalize decodes raw image bytes, scales the image down if its longer
// side exceeds MaxDimension, and re-encodes it as JPEG. The returned MIME
// type is always image/jpeg.
func (p *Preprocessor) Normalize(raw []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if longer := max(width, height); longer > p.MaxDimension {
		scale := float64(p.MaxDimension) / float64(longer)
		width = int(float64(width) * scale)
		height = int(float64(height) * scale)
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: p.JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
