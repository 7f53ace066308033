package attachments

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// recoverExtraction converts extraction panics into ErrDocumentRead. The
// text extraction library reports some malformed-input conditions by
// panicking while resolving the page tree, and those must follow the same
// silent no-content path as ordinary read errors.
func recoverExtraction(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrDocumentRead, r)
	}
}

// extractDocument extracts text from a PDF page by page. Non-empty page
// extractions are concatenated with newline separation under a header naming
// the source file. Pages with no extractable text (scans, image-only pages)
// contribute nothing and are not an error.
func (s *Service) extractDocument(filename string, data []byte) (text string, err error) {
	defer recoverExtraction(&err)
	// Validate the document and get an authoritative page count first;
	// a file that fails structural parsing is treated as unreadable.
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}
	pageCount := pdfCtx.PageCount

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("--- Content from PDF (%s) ---\n", filename))

	extracted := 0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Problematic page, skip gracefully
			s.logger.Debug().
				Err(err).
				Str("filename", filename).
				Int("page", pageNum).
				Msg("Page yielded no extractable text")
			continue
		}

		if trimmed := strings.TrimSpace(text); trimmed != "" {
			builder.WriteString(trimmed)
			builder.WriteString("\n")
			extracted++
		}
	}

	s.logger.Debug().
		Str("filename", filename).
		Int("pages", pageCount).
		Int("pages_with_text", extracted).
		Msg("PDF text extraction complete")

	return builder.String(), nil
}
