package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/models"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

// encodePNG renders a solid test image of the given size as PNG bytes.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// decodeDataURI decodes a JPEG data URI back into an image.
func decodeDataURI(t *testing.T, dataURI string) image.Image {
	t.Helper()

	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(dataURI, prefix), "unexpected data URI prefix: %.40s", dataURI)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, prefix))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalize_ImageWithinBounds(t *testing.T) {
	svc := newTestService()

	result := svc.Normalize(context.Background(), "photo.png", encodePNG(t, 200, 150))

	require.Equal(t, models.ContentTypeImage, result.Type)
	assert.True(t, result.HasImage())
	assert.False(t, result.HasText())

	img := decodeDataURI(t, result.ImageDataURI)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestNormalize_UndersizedImageUpscaled(t *testing.T) {
	svc := newTestService()

	result := svc.Normalize(context.Background(), "tiny.png", encodePNG(t, 8, 16))
	require.True(t, result.HasImage())

	img := decodeDataURI(t, result.ImageDataURI)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	assert.GreaterOrEqual(t, w, 64)
	assert.GreaterOrEqual(t, h, 64)
	// 8x16 keeps its 1:2 shape after upscaling
	assert.Equal(t, h, w*2)
}

func TestNormalize_OversizedImageDownscaled(t *testing.T) {
	svc := newTestService()

	result := svc.Normalize(context.Background(), "big.png", encodePNG(t, 2400, 1200))
	require.True(t, result.HasImage())

	img := decodeDataURI(t, result.ImageDataURI)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	assert.Equal(t, 1200, w)
	assert.Equal(t, 600, h)
}

func TestNormalize_Failures(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"empty filename", "", []byte("payload")},
		{"empty data", "photo.png", nil},
		{"unsupported extension", "notes.txt", []byte("plain text")},
		{"no extension", "README", []byte("plain text")},
		{"corrupt image", "photo.jpg", []byte("not an image at all")},
		{"corrupt pdf", "report.pdf", []byte("%PDF-1.4 truncated garbage")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Normalize(context.Background(), tt.filename, tt.data)

			require.NotNil(t, result)
			assert.False(t, result.HasImage())
			assert.False(t, result.HasText())
			assert.Empty(t, result.Type)
		})
	}
}

func TestRecoverExtraction_MapsPanicToReadError(t *testing.T) {
	// page-tree resolution in the extraction library panics on some
	// malformed objects instead of returning an error
	extract := func() (text string, err error) {
		defer recoverExtraction(&err)
		panic("malformed PDF: found <nil> instead of objdef")
	}

	text, err := extract()
	require.ErrorIs(t, err, ErrDocumentRead)
	assert.Contains(t, err.Error(), "objdef")
	assert.Empty(t, text)
}

func TestNormalize_ExtensionCaseInsensitive(t *testing.T) {
	svc := newTestService()

	result := svc.Normalize(context.Background(), "SHOT.PNG", encodePNG(t, 100, 100))
	assert.True(t, result.HasImage())
}

func TestBoundedDimensions(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"already compliant", 200, 150, 200, 150},
		{"at lower bound", 32, 32, 32, 32},
		{"at upper bound", 1200, 800, 1200, 800},
		{"undersized square", 8, 8, 64, 64},
		{"undersized narrow", 8, 16, 64, 128},
		{"one side undersized", 30, 400, 64, 854},
		{"oversized wide", 2400, 1200, 1200, 600},
		{"oversized tall", 900, 3600, 300, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := boundedDimensions(tt.w, tt.h)
			assert.Equal(t, tt.wantW, gotW)
			assert.Equal(t, tt.wantH, gotH)
		})
	}
}

func TestBoundedDimensions_ExtremeAspectRatio(t *testing.T) {
	// 1x100 scales up to 64x6400, the cap brings the long side down to
	// 1200, and the short side is floored back at 64. Aspect ratio gives
	// way to the dimension bounds here.
	w, h := boundedDimensions(1, 100)
	assert.Equal(t, 64, w)
	assert.Equal(t, 1200, h)
}

func TestNormalize_ExtremeAspectRatioMeetsMinimum(t *testing.T) {
	svc := newTestService()

	result := svc.Normalize(context.Background(), "strip.png", encodePNG(t, 1, 100))
	require.True(t, result.HasImage())

	img := decodeDataURI(t, result.ImageDataURI)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	assert.GreaterOrEqual(t, w, 64)
	assert.GreaterOrEqual(t, h, 64)
	assert.LessOrEqual(t, w, 1200)
	assert.LessOrEqual(t, h, 1200)
}
