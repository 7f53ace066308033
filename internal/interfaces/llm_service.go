package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// CompletionService defines the interface for streaming chat completions
// against the hosted completion provider.
//
// Implementations invoke the provider in streaming mode and republish the
// upstream token stream as the service's own typed event stream:
//
//   - each non-empty incremental fragment becomes one content event,
//     preserving arrival order with no buffering or reordering
//   - a stream that completes without any content fragment produces a
//     distinct guidance error event (unclear image / restricted content)
//   - an upstream request failure (auth, validation, network) produces a
//     single error event carrying the upstream message; no retry
//   - a stream that produced at least one fragment terminates with done
//
// Exactly one terminal event (done or error) is always emitted.
type CompletionService interface {
	// ChatStream invokes the completion provider for the given model and
	// assembled messages, returning a channel of stream events. The channel
	// is closed after the terminal event. Cancelling ctx stops production
	// at the next yield point.
	ChatStream(ctx context.Context, model string, messages []models.PromptMessage) <-chan models.StreamEvent

	// TextModel returns the configured model identifier for text turns.
	TextModel() string

	// VisionModel returns the configured model identifier for vision turns.
	VisionModel() string

	// HealthCheck verifies the provider is reachable and can serve requests.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}
