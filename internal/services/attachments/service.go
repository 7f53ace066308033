// -----------------------------------------------------------------------
// Attachment Normalizer - Converts uploaded files into extracted text or
// a bounded, encoded image payload
// -----------------------------------------------------------------------

package attachments

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Normalization errors. Every failure maps deterministically to "no content"
// at the service boundary; the sentinel values keep the suppression auditable
// in logs and tests.
var (
	ErrUnsupportedType = errors.New("unsupported attachment type")
	ErrImageDecode     = errors.New("image decode failed")
	ErrDocumentRead    = errors.New("document read failed")
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

var documentExtensions = map[string]bool{
	".pdf": true,
}

// Service implements the AttachmentNormalizer interface
type Service struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.AttachmentNormalizer = (*Service)(nil)

// NewService creates a new attachment normalizer service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Normalize classifies the file by extension and produces either extracted
// document text or an encoded image data URI. All failures are silent:
// the result is empty content and the cause is logged for diagnostics only.
func (s *Service) Normalize(ctx context.Context, filename string, data []byte) *models.NormalizedContent {
	if filename == "" || len(data) == 0 {
		return &models.NormalizedContent{}
	}

	normalized, err := s.normalize(filename, data)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("filename", filename).
			Int("size", len(data)).
			Msg("Attachment normalization failed, proceeding without content")
		return &models.NormalizedContent{}
	}

	return normalized
}

func (s *Service) normalize(filename string, data []byte) (*models.NormalizedContent, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case imageExtensions[ext]:
		dataURI, err := s.normalizeImage(data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("filename", filename).
			Int("encoded_length", len(dataURI)).
			Msg("Image attachment normalized")
		return &models.NormalizedContent{
			ImageDataURI: dataURI,
			Type:         models.ContentTypeImage,
		}, nil

	case documentExtensions[ext]:
		text, err := s.extractDocument(filename, data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("filename", filename).
			Int("text_length", len(text)).
			Msg("Document attachment extracted")
		return &models.NormalizedContent{
			Text: text,
			Type: models.ContentTypeDocument,
		}, nil

	default:
		return nil, ErrUnsupportedType
	}
}
