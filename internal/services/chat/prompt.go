package chat

import (
	"fmt"
	"unicode/utf8"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// systemPrompt defines the assistant's operating principles. It leads every
// assembled message list.
const systemPrompt = `You are Respondeo, an advanced knowledge engine.

Your core principles:
1. **Accuracy First**: Always prioritize factual correctness.
2. **Citations**: When search results are provided, ALWAYS cite sources.
3. **Extraction**: If an image is provided, your job is to extract and transcribe all text perfectly.
4. **Context**: Use provided PDF/Image extraction to answer the user's question accurately.`

// visionInstruction is appended to the user request on vision turns. The
// transcription demand is deliberate: the vision model tends to summarize
// unless told to extract text exactly.
const visionInstruction = "IMPORTANT: Take an extremely close look at this image. Extract every piece of text exactly as it appears. Provide a highly detailed analysis of the visual contents and answer the user request."

// Assembler builds the model-ready message list for one turn. A turn
// produces exactly one of two shapes: a plain text final turn, or a single
// multimodal final turn pairing text with an image reference. The two are
// never mixed.
type Assembler struct {
	config *common.ChatConfig
}

// TurnInput carries everything the assembler combines: the user message,
// parsed history, and the optional document text, search context, and
// encoded image.
type TurnInput struct {
	Message       string
	History       []models.ChatMessage
	DocumentText  string
	SearchContext string
	ImageDataURI  string
}

// NewAssembler creates a prompt assembler with the given chat configuration.
func NewAssembler(config *common.ChatConfig) *Assembler {
	return &Assembler{config: config}
}

// Build produces the ordered message list: system message, trimmed history
// with roles normalized to user/assistant, then exactly one final user turn
// in the chosen shape.
func (a *Assembler) Build(input TurnInput) []models.PromptMessage {
	isVision := input.ImageDataURI != ""

	window := a.config.HistoryWindow
	if isVision {
		// Vision prompts are larger; the history budget is tighter
		window = a.config.ImageHistoryWindow
	}

	history := input.History
	if len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]models.PromptMessage, 0, len(history)+2)
	messages = append(messages, models.PromptMessage{
		Role: models.RoleSystem,
		Text: systemPrompt,
	})

	for _, msg := range history {
		role := models.RoleAssistant
		if msg.Role == models.RoleUser {
			role = models.RoleUser
		}
		messages = append(messages, models.PromptMessage{
			Role: role,
			Text: msg.Content,
		})
	}

	if isVision {
		messages = append(messages, models.PromptMessage{
			Role:         models.RoleUser,
			Text:         fmt.Sprintf("User Request: %s\n\n%s", input.Message, visionInstruction),
			ImageDataURI: input.ImageDataURI,
		})
		return messages
	}

	messages = append(messages, models.PromptMessage{
		Role: models.RoleUser,
		Text: a.composeText(input),
	})
	return messages
}

// composeText builds the final text turn: document text appended as a
// labeled section (truncated to the configured cap), search context
// prepended when present.
func (a *Assembler) composeText(input TurnInput) string {
	prompt := input.Message

	if input.DocumentText != "" {
		docText := input.DocumentText
		if limit := a.config.DocumentTextLimit; limit > 0 && len(docText) > limit {
			docText = truncateText(docText, limit)
		}
		prompt = fmt.Sprintf("%s\n\n[DOCUMENT TEXT]:\n%s", prompt, docText)
	}

	if input.SearchContext != "" {
		prompt = fmt.Sprintf("Search Context:\n%s\n\nUser Question: %s", input.SearchContext, prompt)
	}

	return prompt
}

// truncateText caps text at limit bytes without splitting a multibyte rune.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
