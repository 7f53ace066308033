package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// AttachmentNormalizer converts a raw uploaded file into either extracted
// document text or a bounded, base64-encoded image payload.
//
// Normalization never fails the request: unsupported extensions and decode
// or extraction errors all yield an empty NormalizedContent, with the cause
// logged for diagnostics only. The orchestrator then proceeds as if no
// attachment were provided.
type AttachmentNormalizer interface {
	// Normalize classifies the file by extension and produces at most one of
	// extracted text (documents) or an encoded image data URI (images).
	// A nil/empty input is a valid no-op and returns empty content.
	//
	// Parameters:
	//   - ctx: Context for cancellation control
	//   - filename: Declared filename, used for extension classification
	//   - data: Raw file bytes
	//
	// Returns:
	//   - *models.NormalizedContent: Never nil; may be empty on failure
	Normalize(ctx context.Context, filename string, data []byte) *models.NormalizedContent
}
