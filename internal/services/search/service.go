// -----------------------------------------------------------------------
// Search Gateway - Wraps the external search provider and builds the two
// synchronized projections of its results: caller-facing sources and the
// prompt context block
// -----------------------------------------------------------------------

package search

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Snippet caps per projection. Sources returned to the caller keep a short
// snippet; the prompt context block carries a longer one.
const (
	sourceSnippetLimit  = 300
	contextSnippetLimit = 500
)

// Service implements the WebSearchService interface using the Tavily API
type Service struct {
	client     *TavilyClient
	depth      string
	maxResults int
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.WebSearchService = (*Service)(nil)

// NewService creates a new web search service. An empty API key yields a
// disabled service: every search returns empty results and the turn proceeds
// without augmentation.
func NewService(config *common.TavilyConfig, logger arbor.ILogger) *Service {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	var client *TavilyClient
	if config.APIKey != "" {
		client = NewTavilyClient(config.APIKey, config.BaseURL, timeout)
	} else {
		logger.Info().Msg("Search provider not configured, search augmentation disabled")
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > 3 {
		maxResults = 3
	}

	depth := config.SearchDepth
	if depth == "" {
		depth = "basic"
	}

	return &Service{
		client:     client,
		depth:      depth,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Enabled reports whether the search provider is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Search runs a bounded web search and builds the context block and source
// list from the same result set, preserving ordering between the two. Any
// provider failure degrades to empty results; search unavailability is never
// surfaced to the caller.
func (s *Service) Search(ctx context.Context, query string) (string, []models.SearchSource) {
	if s.client == nil {
		return "", nil
	}

	results, err := s.client.Search(ctx, query, s.depth, s.maxResults)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("Web search failed, proceeding without augmentation")
		return "", nil
	}

	if len(results) == 0 {
		return "", nil
	}
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	sources := make([]models.SearchSource, 0, len(results))
	var contextBlock strings.Builder
	contextBlock.WriteString("Search Results:\n")

	for i, result := range results {
		title := result.Title
		if title == "" {
			title = "Unknown"
		}

		sources = append(sources, models.SearchSource{
			Title:   title,
			URL:     result.URL,
			Snippet: truncate(result.Content, sourceSnippetLimit),
		})

		contextBlock.WriteString(fmt.Sprintf("\n%d. **%s**\n", i+1, title))
		contextBlock.WriteString(fmt.Sprintf("   URL: %s\n", result.URL))
		contextBlock.WriteString(fmt.Sprintf("   %s\n", truncate(result.Content, contextSnippetLimit)))
	}

	s.logger.Debug().
		Str("query", query).
		Int("results", len(sources)).
		Msg("Web search completed")

	return contextBlock.String(), sources
}

// truncate caps text at limit bytes without splitting a multibyte rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
