package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// fakeNormalizer returns a fixed normalization result.
type fakeNormalizer struct {
	result *models.NormalizedContent
	panics bool
}

func (f *fakeNormalizer) Normalize(ctx context.Context, filename string, data []byte) *models.NormalizedContent {
	if f.panics {
		panic("normalizer exploded")
	}
	if f.result != nil {
		return f.result
	}
	return &models.NormalizedContent{}
}

// fakeSearcher records whether it was called and returns fixed results.
type fakeSearcher struct {
	called  bool
	query   string
	context string
	sources []models.SearchSource
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (string, []models.SearchSource) {
	f.called = true
	f.query = query
	return f.context, f.sources
}

func (f *fakeSearcher) Enabled() bool { return true }

// fakeCompletions records the requested model and messages and replays a
// scripted event sequence.
type fakeCompletions struct {
	events    []models.StreamEvent
	model     string
	messages  []models.PromptMessage
	healthErr error
}

func (f *fakeCompletions) ChatStream(ctx context.Context, model string, messages []models.PromptMessage) <-chan models.StreamEvent {
	f.model = model
	f.messages = messages

	out := make(chan models.StreamEvent, len(f.events))
	for _, event := range f.events {
		out <- event
	}
	close(out)
	return out
}

func (f *fakeCompletions) TextModel() string { return "text-model" }

func (f *fakeCompletions) VisionModel() string { return "vision-model" }

func (f *fakeCompletions) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeCompletions) Close() error { return nil }

var (
	_ interfaces.AttachmentNormalizer = (*fakeNormalizer)(nil)
	_ interfaces.WebSearchService     = (*fakeSearcher)(nil)
	_ interfaces.CompletionService    = (*fakeCompletions)(nil)
)

func newTurnService(normalizer *fakeNormalizer, searcher *fakeSearcher, completions *fakeCompletions) *Service {
	config := &common.ChatConfig{
		HistoryWindow:      10,
		ImageHistoryWindow: 5,
		DocumentTextLimit:  30000,
		SearchTriggers:     []string{"what is", "latest", "news"},
	}
	return NewService(config, normalizer, searcher, completions, arbor.NewLogger())
}

func collect(t *testing.T, events <-chan models.StreamEvent) []models.StreamEvent {
	t.Helper()

	var collected []models.StreamEvent
	for event := range events {
		collected = append(collected, event)
	}
	return collected
}

func eventTypes(events []models.StreamEvent) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestStream_PlainTextTurn(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewContentEvent("Hello"),
		models.NewContentEvent(" world"),
		models.NewDoneEvent(),
	}}
	searcher := &fakeSearcher{}
	svc := newTurnService(&fakeNormalizer{}, searcher, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message: "tell me a story",
	}))

	assert.Equal(t, []string{"status", "content", "content", "done"}, eventTypes(events))
	assert.Equal(t, "thinking", events[0].Content)
	assert.Equal(t, "Hello", events[1].Content)
	assert.False(t, searcher.called)
	assert.Equal(t, "text-model", completions.model)
}

func TestStream_SearchTurnEmitsSourcesBeforeStatus(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewContentEvent("answer"),
		models.NewDoneEvent(),
	}}
	searcher := &fakeSearcher{
		context: "Search Results:\n1. hit",
		sources: []models.SearchSource{{Title: "Hit", URL: "https://example.com", Snippet: "s"}},
	}
	svc := newTurnService(&fakeNormalizer{}, searcher, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message: "what is the latest news",
	}))

	require.Equal(t, []string{"sources", "status", "content", "done"}, eventTypes(events))
	assert.True(t, searcher.called)
	assert.Equal(t, "what is the latest news", searcher.query)

	sources, ok := events[0].Content.([]models.SearchSource)
	require.True(t, ok)
	require.Len(t, sources, 1)
	assert.Equal(t, "Hit", sources[0].Title)

	// Search context reaches the assembled prompt
	final := completions.messages[len(completions.messages)-1]
	assert.Contains(t, final.Text, "Search Context:")
}

func TestStream_EmptySearchResultsOmitSourcesEvent(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewContentEvent("answer"),
		models.NewDoneEvent(),
	}}
	searcher := &fakeSearcher{}
	svc := newTurnService(&fakeNormalizer{}, searcher, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message: "what is this",
	}))

	assert.True(t, searcher.called)
	assert.Equal(t, []string{"status", "content", "done"}, eventTypes(events))
}

func TestStream_ImageTurnSkipsSearchAndSelectsVisionModel(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewContentEvent("I see text"),
		models.NewDoneEvent(),
	}}
	searcher := &fakeSearcher{
		context: "should not be used",
		sources: []models.SearchSource{{Title: "x"}},
	}
	normalizer := &fakeNormalizer{result: &models.NormalizedContent{
		ImageDataURI: "data:image/jpeg;base64,AAAA",
		Type:         models.ContentTypeImage,
	}}
	svc := newTurnService(normalizer, searcher, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message:  "what is the latest news in this screenshot",
		FileName: "shot.png",
		FileData: []byte{1, 2, 3},
	}))

	// Trigger words are present but the attachment forces the vision path
	assert.False(t, searcher.called)
	assert.Equal(t, "vision-model", completions.model)
	assert.Equal(t, []string{"status", "content", "done"}, eventTypes(events))

	final := completions.messages[len(completions.messages)-1]
	assert.Equal(t, "data:image/jpeg;base64,AAAA", final.ImageDataURI)
}

func TestStream_DocumentTurnUsesTextModel(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewContentEvent("summary"),
		models.NewDoneEvent(),
	}}
	normalizer := &fakeNormalizer{result: &models.NormalizedContent{
		Text: "extracted pdf text",
		Type: models.ContentTypeDocument,
	}}
	svc := newTurnService(normalizer, &fakeSearcher{}, completions)

	collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message:  "summarize the attachment",
		FileName: "report.pdf",
		FileData: []byte{1},
	}))

	assert.Equal(t, "text-model", completions.model)
	final := completions.messages[len(completions.messages)-1]
	assert.Contains(t, final.Text, "[DOCUMENT TEXT]:\nextracted pdf text")
}

func TestStream_History(t *testing.T) {
	tests := []struct {
		name        string
		historyJSON string
		wantLen     int
	}{
		{"valid history", `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`, 4},
		{"malformed json", `{"not":"an array"`, 2},
		{"empty string", "", 2},
		{"invalid entries dropped", `[{"role":"user","content":"hi"},{"role":"tool","content":"x"},{"role":"user","content":""}]`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := &fakeCompletions{events: []models.StreamEvent{models.NewDoneEvent()}}
			svc := newTurnService(&fakeNormalizer{}, &fakeSearcher{}, completions)

			events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
				Message:     "continue",
				HistoryJSON: tt.historyJSON,
			}))

			// The turn always proceeds to completion
			require.NotEmpty(t, events)
			assert.Equal(t, "done", events[len(events)-1].Type)
			// System message + surviving history + final turn
			assert.Len(t, completions.messages, tt.wantLen)
		})
	}
}

func TestStream_UpstreamErrorForwardedVerbatim(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{
		models.NewErrorEvent("API Error: 401 invalid api key"),
	}}
	svc := newTurnService(&fakeNormalizer{}, &fakeSearcher{}, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message: "hello",
	}))

	require.Equal(t, []string{"status", "error"}, eventTypes(events))
	assert.Equal(t, "API Error: 401 invalid api key", events[1].Content)
}

func TestStream_PanicBecomesErrorEvent(t *testing.T) {
	completions := &fakeCompletions{events: []models.StreamEvent{models.NewDoneEvent()}}
	svc := newTurnService(&fakeNormalizer{panics: true}, &fakeSearcher{}, completions)

	events := collect(t, svc.Stream(context.Background(), &interfaces.TurnRequest{
		Message: "hello",
	}))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "error", last.Type)
	assert.Contains(t, last.Content, "normalizer exploded")
}

func TestHealthCheck_Delegates(t *testing.T) {
	completions := &fakeCompletions{healthErr: assert.AnError}
	svc := newTurnService(&fakeNormalizer{}, &fakeSearcher{}, completions)

	assert.ErrorIs(t, svc.HealthCheck(context.Background()), assert.AnError)
}
