package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	startTime time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		startTime: time.Now(),
		logger:    logger,
	}
}

// RootHandler handles GET / with a minimal online check.
func (h *StatusHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "online",
		"message": "Respondeo is ready to answer questions with real-time web search.",
	})
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "online",
		"version":   common.GetVersion(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now(),
	})
}
