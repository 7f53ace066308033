package attachments

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Image payload bounds. The vision model rejects inputs below 32px in either
// dimension, so undersized images are upscaled to at least 64px; oversized
// images are thumbnailed to keep the encoded payload within request limits.
const (
	minInputDimension  = 32
	upscaleTarget      = 64
	maxOutputDimension = 1200
	jpegQuality        = 85
)

// normalizeImage decodes the image, enforces the dimension bounds preserving
// aspect ratio, and re-encodes to a base64 JPEG data URI.
func (s *Service) normalizeImage(data []byte) (string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: invalid dimensions %dx%d", ErrImageDecode, width, height)
	}

	targetW, targetH := boundedDimensions(width, height)

	// JPEG encoding requires an opaque RGB raster; redraw through RGBA even
	// when the dimensions are already compliant.
	rgb := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	if targetW == width && targetH == height {
		xdraw.Draw(rgb, rgb.Bounds(), src, bounds.Min, xdraw.Src)
	} else if targetW > width || targetH > height {
		// Upscaling: quality resampling so the vision model gets a usable raster
		xdraw.CatmullRom.Scale(rgb, rgb.Bounds(), src, bounds, xdraw.Src, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(rgb, rgb.Bounds(), src, bounds, xdraw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg (source format %s): %w", format, err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:image/jpeg;base64," + encoded, nil
}

// boundedDimensions computes output dimensions satisfying both bounds while
// preserving aspect ratio within rounding. An image already within bounds is
// returned unchanged.
func boundedDimensions(width, height int) (int, int) {
	outW, outH := width, height

	upscaled := false
	if outW < minInputDimension || outH < minInputDimension {
		upscaled = true
		scale := math.Max(
			float64(upscaleTarget)/float64(outW),
			float64(upscaleTarget)/float64(outH),
		)
		// Ceil guarantees both dimensions reach the target after scaling
		outW = int(math.Ceil(float64(outW) * scale))
		outH = int(math.Ceil(float64(outH) * scale))
	}

	if max(outW, outH) > maxOutputDimension {
		scale := float64(maxOutputDimension) / float64(max(outW, outH))
		outW = int(math.Round(float64(outW) * scale))
		outH = int(math.Round(float64(outH) * scale))
		if outW < 1 {
			outW = 1
		}
		if outH < 1 {
			outH = 1
		}
	}

	// An upscaled image must end at or above the target on both sides.
	// Extreme aspect ratios cannot satisfy that and the size cap while
	// keeping proportions, so the short side is floored at the target,
	// distorting aspect only in that degenerate case.
	if upscaled {
		outW = max(outW, upscaleTarget)
		outH = max(outH, upscaleTarget)
	}

	return outW, outH
}
