package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// WebSearchService wraps the external web search provider. Given a query it
// returns ranked result snippets as two synchronized projections: a
// SearchSource list for the caller (snippets capped at 300 chars) and a
// numbered human-readable context block for prompt inclusion (snippets
// capped at 500 chars). Both projections share ordering and underlying hits.
//
// A misconfigured or unreachable provider is not an error condition: the
// service degrades to empty results and the turn proceeds without search
// augmentation.
type WebSearchService interface {
	// Search runs a bounded web search for the query.
	// Returns the prompt context block and the source list; both empty on
	// any provider failure.
	Search(ctx context.Context, query string) (string, []models.SearchSource)

	// Enabled reports whether the provider is configured and usable.
	Enabled() bool
}
