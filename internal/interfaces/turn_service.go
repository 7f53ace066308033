package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// TurnRequest carries one inbound user turn: the message, the raw
// caller-supplied history JSON, and the optional attachment bytes.
type TurnRequest struct {
	// Message is the user's message text (required).
	Message string

	// HistoryJSON is the raw conversation_history form value. Malformed
	// JSON degrades to an empty history, never an error.
	HistoryJSON string

	// FileName and FileData describe the optional single attachment.
	// Both empty means no attachment.
	FileName string
	FileData []byte
}

// TurnService orchestrates one turn end to end: normalize attachment, parse
// history, decide and run search, assemble the prompt, and stream the
// completion. The returned channel always terminates with exactly one done
// or error event; any internal failure is converted into an error event at
// the orchestration boundary rather than closing the stream silently.
type TurnService interface {
	// Stream processes the turn and emits typed events as they become
	// available. The channel is closed after the terminal event. Cancelling
	// ctx (client disconnect) stops event production at the next send.
	Stream(ctx context.Context, req *TurnRequest) <-chan models.StreamEvent

	// HealthCheck verifies the downstream completion provider is usable.
	HealthCheck(ctx context.Context) error
}
