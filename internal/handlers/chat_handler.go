package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// maxAttachmentMemory bounds the in-memory portion of multipart parsing;
// larger attachments spill to temp files per net/http behavior.
const maxAttachmentMemory = 32 << 20 // 32 MB

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	turnService interfaces.TurnService
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(turnService interfaces.TurnService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		turnService: turnService,
		logger:      logger,
	}
}

// StreamHandler handles POST /api/chat/stream requests. It accepts a
// multipart form (message, conversation_history, optional file) and responds
// with a text/event-stream of typed events, each framed as
// "data: <JSON>\n\n". The stream always terminates with exactly one done or
// error event.
func (h *ChatHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	message := r.FormValue("message")
	if message == "" {
		WriteError(w, http.StatusBadRequest, "Message field is required")
		return
	}

	req := &interfaces.TurnRequest{
		Message:     message,
		HistoryJSON: r.FormValue("conversation_history"),
	}

	if file, header, err := r.FormFile("file"); err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			// Treat an unreadable upload like an unsupported attachment:
			// proceed without it rather than failing the turn.
			h.logger.Warn().Err(readErr).Str("filename", header.Filename).Msg("Failed to read attachment")
		} else {
			req.FileName = header.Filename
			req.FileData = data
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error().Msg("Response writer does not support streaming")
		WriteError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	h.logger.Info().
		Int("message_length", len(message)).
		Str("attachment", req.FileName).
		Msg("Starting chat stream")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// r.Context() is cancelled on client disconnect, which stops event
	// production at the orchestrator's next yield point.
	for event := range h.turnService.Stream(r.Context(), req) {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal stream event")
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// Peer closed the connection; stop writing.
			h.logger.Debug().Err(err).Msg("Client disconnected mid-stream")
			return
		}
		flusher.Flush()
	}
}

// HealthHandler handles GET /api/chat/health requests
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.turnService.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Chat service health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
			"error":   err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": true,
	})
}
