package models

// Role constants for conversation messages
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage represents a single message in the caller-supplied conversation
// history. History is supplied fresh on every request; nothing is persisted
// server-side. Unknown fields in the wire form are ignored.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// SearchSource is one web search hit returned to the caller in a `sources`
// stream event. Snippet is capped at 300 characters by the search service.
type SearchSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ContentType identifies what an attachment normalized into
type ContentType string

const (
	ContentTypeImage    ContentType = "image/jpeg"
	ContentTypeDocument ContentType = "application/pdf"
	ContentTypeNone     ContentType = ""
)

// NormalizedContent is the output of attachment normalization. At most one of
// Text or ImageDataURI is set; both empty means the attachment was
// unsupported or failed to decode (a silent, non-fatal condition).
type NormalizedContent struct {
	Text         string
	ImageDataURI string
	Type         ContentType
}

// HasImage reports whether normalization produced an encoded image payload.
func (n *NormalizedContent) HasImage() bool {
	return n != nil && n.ImageDataURI != ""
}

// HasText reports whether normalization produced extracted document text.
func (n *NormalizedContent) HasText() bool {
	return n != nil && n.Text != ""
}

// PromptMessage is one model-ready message. Content is either plain text
// (ImageDataURI empty) or a structured text+image pair for vision turns.
// A single assembled prompt uses exactly one of the two shapes for its
// final user turn, never both.
type PromptMessage struct {
	Role         string
	Text         string
	ImageDataURI string
}

// StreamEvent types emitted over the event stream, in the order a client may
// observe them: sources and status are optional and precede content; exactly
// one done or error terminates every stream.
const (
	EventTypeSources = "sources"
	EventTypeStatus  = "status"
	EventTypeContent = "content"
	EventTypeError   = "error"
	EventTypeDone    = "done"
)

// StreamEvent is one typed, JSON-encoded unit in the server-to-client event
// stream. The Content payload shape depends on Type: a SearchSource list for
// sources, a short token for status, a text fragment for content, a
// human-readable message for error, and nothing for done.
type StreamEvent struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content,omitempty"`
}

// IsTerminal reports whether the event ends the stream.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventTypeDone || e.Type == EventTypeError
}

// NewSourcesEvent creates a sources event carrying search hits.
func NewSourcesEvent(sources []SearchSource) StreamEvent {
	return StreamEvent{Type: EventTypeSources, Content: sources}
}

// NewStatusEvent creates a status event with a short token such as "thinking".
func NewStatusEvent(status string) StreamEvent {
	return StreamEvent{Type: EventTypeStatus, Content: status}
}

// NewContentEvent creates a content event carrying an answer fragment.
func NewContentEvent(fragment string) StreamEvent {
	return StreamEvent{Type: EventTypeContent, Content: fragment}
}

// NewErrorEvent creates a terminal error event with a human-readable message.
func NewErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventTypeError, Content: message}
}

// NewDoneEvent creates the terminal done event. It carries no payload.
func NewDoneEvent() StreamEvent {
	return StreamEvent{Type: EventTypeDone}
}
