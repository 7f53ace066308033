// -----------------------------------------------------------------------
// Turn Orchestrator - Composes attachment normalization, search decision,
// prompt assembly, and completion streaming into one event stream per turn
// -----------------------------------------------------------------------

package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/search"
)

// Service implements the TurnService interface. All collaborators are
// read-only process-lifetime singletons; per-request state lives entirely
// on the goroutine handling the turn.
type Service struct {
	attachments interfaces.AttachmentNormalizer
	searcher    interfaces.WebSearchService
	completions interfaces.CompletionService
	decider     *search.Decider
	assembler   *Assembler
	validate    *validator.Validate
	logger      arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.TurnService = (*Service)(nil)

// NewService creates the turn orchestrator with its collaborators injected.
func NewService(
	config *common.ChatConfig,
	attachments interfaces.AttachmentNormalizer,
	searcher interfaces.WebSearchService,
	completions interfaces.CompletionService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		attachments: attachments,
		searcher:    searcher,
		completions: completions,
		decider:     search.NewDecider(config.SearchTriggers),
		assembler:   NewAssembler(config),
		validate:    validator.New(),
		logger:      logger,
	}
}

// Stream processes one turn. Sequencing: normalize attachment, parse
// history, decide search, search (sources event first when any hits),
// status event, assemble prompt, stream completion. Every stage is
// failure-isolated; the outermost recover converts anything unexpected into
// a terminal error event so the stream never closes silently.
func (s *Service) Stream(ctx context.Context, req *interfaces.TurnRequest) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent, 16)

	go func() {
		defer close(events)

		send := func(event models.StreamEvent) bool {
			select {
			case events <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Msg("Turn processing panicked")
				send(models.NewErrorEvent(fmt.Sprintf("%v", r)))
			}
		}()

		turnID := common.NewTurnID()
		s.logger.Info().
			Str("turn_id", turnID).
			Int("message_length", len(req.Message)).
			Str("attachment", req.FileName).
			Msg("Processing turn")

		// Stage 1: attachment normalization; failures are swallowed inside
		// the normalizer and yield empty content.
		normalized := s.attachments.Normalize(ctx, req.FileName, req.FileData)

		// Stage 2: history parsing; malformed input degrades to empty.
		history := s.parseHistory(turnID, req.HistoryJSON)

		// Stage 3: search decision and augmentation. Image turns bypass
		// search entirely regardless of message content.
		var searchContext string
		if s.decider.NeedsSearch(req.Message, history) && !normalized.HasImage() {
			var sources []models.SearchSource
			searchContext, sources = s.searcher.Search(ctx, req.Message)
			if len(sources) > 0 {
				if !send(models.NewSourcesEvent(sources)) {
					return
				}
			}
		}

		// Stage 4: signal work has begun, always before the first
		// model-related event.
		if !send(models.NewStatusEvent("thinking")) {
			return
		}

		// Stage 5: prompt assembly and model selection (vision model iff
		// an image payload is present).
		messages := s.assembler.Build(TurnInput{
			Message:       req.Message,
			History:       history,
			DocumentText:  normalized.Text,
			SearchContext: searchContext,
			ImageDataURI:  normalized.ImageDataURI,
		})
		model := s.completions.TextModel()
		if normalized.HasImage() {
			model = s.completions.VisionModel()
		}

		// Stage 6: stream the completion, forwarding its events verbatim.
		// The completion service guarantees the terminal event.
		for event := range s.completions.ChatStream(ctx, model, messages) {
			if !send(event) {
				return
			}
		}

		s.logger.Info().
			Str("turn_id", turnID).
			Str("model", model).
			Msg("Turn complete")
	}()

	return events
}

// HealthCheck verifies the completion provider is usable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.completions.HealthCheck(ctx)
}

// parseHistory decodes the caller-supplied history JSON. Malformed JSON and
// invalid entries degrade to an empty or reduced history, never an error;
// unknown roles are left for the assembler to normalize.
func (s *Service) parseHistory(turnID, raw string) []models.ChatMessage {
	if raw == "" {
		return nil
	}

	var decoded []models.ChatMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logger.Warn().
			Err(err).
			Str("turn_id", turnID).
			Msg("Malformed conversation history, proceeding with empty history")
		return nil
	}

	history := make([]models.ChatMessage, 0, len(decoded))
	for _, msg := range decoded {
		if err := s.validate.Struct(msg); err != nil {
			s.logger.Debug().
				Str("turn_id", turnID).
				Str("role", msg.Role).
				Msg("Dropping invalid history entry")
			continue
		}
		history = append(history, msg)
	}

	return history
}
