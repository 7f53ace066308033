// -----------------------------------------------------------------------
// Groq Completion Service - Streaming chat completions via Groq's
// OpenAI-compatible API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// emptyOutputGuidance is emitted when the upstream stream completes without
// producing a single content fragment. This is distinct from a request-level
// failure: the call succeeded but the model declined to answer.
const emptyOutputGuidance = "Model returned no content. Please ensure the image is clear and contains no restricted information."

// GroqService implements the CompletionService interface using Groq's
// OpenAI-compatible chat completions API in streaming mode.
type GroqService struct {
	config  *common.GroqConfig
	logger  arbor.ILogger
	client  *openai.Client
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.CompletionService = (*GroqService)(nil)

// NewGroqService creates a new Groq completion service instance.
//
// Initialization resolves the API key (GROQ_API_KEY or groq.api_key in
// config), parses the operation timeout, and builds the OpenAI-compatible
// client pointed at the configured base URL.
func NewGroqService(config *common.GroqConfig, logger arbor.ILogger) (*GroqService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required (set via GROQ_API_KEY or groq.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	client := openai.NewClientWithConfig(clientConfig)

	service := &GroqService{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Debug().
		Str("base_url", config.BaseURL).
		Str("text_model", config.TextModel).
		Str("vision_model", config.VisionModel).
		Float64("temperature", float64(config.Temperature)).
		Int("max_tokens", config.MaxTokens).
		Msg("Groq completion service initialized")

	return service, nil
}

// TextModel returns the configured model identifier for text turns.
func (s *GroqService) TextModel() string {
	return s.config.TextModel
}

// VisionModel returns the configured model identifier for vision turns.
func (s *GroqService) VisionModel() string {
	return s.config.VisionModel
}

// ChatStream invokes the completion API in streaming mode and republishes
// the upstream token stream as typed stream events. Fragments are forwarded
// in arrival order with no buffering; exactly one terminal done or error
// event is emitted before the channel closes.
func (s *GroqService) ChatStream(ctx context.Context, model string, messages []models.PromptMessage) <-chan models.StreamEvent {
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

		timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		request := openai.ChatCompletionRequest{
			Model:       model,
			Messages:    convertMessages(messages),
			Temperature: s.config.Temperature,
			MaxTokens:   s.config.MaxTokens,
			Stream:      true,
		}

		startTime := time.Now()
		stream, err := s.client.CreateChatCompletionStream(timeoutCtx, request)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("model", model).
				Int("message_count", len(messages)).
				Msg("Completion stream request failed")
			send(models.NewErrorEvent(fmt.Sprintf("API Error: %s", err.Error())))
			return
		}
		defer stream.Close()

		foundContent := false
		fragments := 0
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("model", model).
					Int("fragments", fragments).
					Msg("Completion stream failed mid-stream")
				send(models.NewErrorEvent(fmt.Sprintf("API Error: %s", err.Error())))
				return
			}

			if len(response.Choices) == 0 {
				continue
			}
			if fragment := response.Choices[0].Delta.Content; fragment != "" {
				foundContent = true
				fragments++
				if !send(models.NewContentEvent(fragment)) {
					return
				}
			}
		}

		if !foundContent {
			s.logger.Warn().
				Str("model", model).
				Msg("Completion stream produced no content")
			send(models.NewErrorEvent(emptyOutputGuidance))
			return
		}

		s.logger.Debug().
			Str("model", model).
			Int("fragments", fragments).
			Dur("duration", time.Since(startTime)).
			Msg("Completion stream finished")
		send(models.NewDoneEvent())
	}()

	return events
}

// HealthCheck verifies the completion provider is reachable with a minimal
// non-streaming probe against the text model.
func (s *GroqService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("completion client is not initialized")
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.client.CreateChatCompletion(probeCtx, openai.ChatCompletionRequest{
		Model: s.config.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
		MaxTokens: 8,
	})
	if err != nil {
		return fmt.Errorf("completion probe failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("completion probe returned no choices")
	}

	return nil
}

// Close releases resources and performs cleanup operations.
func (s *GroqService) Close() error {
	s.logger.Debug().Msg("Closing Groq completion service")
	s.client = nil
	return nil
}

// convertMessages converts prompt messages to the provider wire format.
// A message carrying an image reference becomes a multimodal content list
// (text part plus image_url part); plain messages keep the string shape.
func convertMessages(messages []models.PromptMessage) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.ImageDataURI == "" {
			converted = append(converted, openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Text,
			})
			continue
		}

		converted = append(converted, openai.ChatCompletionMessage{
			Role: msg.Role,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: msg.Text,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    msg.ImageDataURI,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		})
	}
	return converted
}
