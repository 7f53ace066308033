package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Root status
	mux.HandleFunc("/", s.app.StatusHandler.RootHandler)
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)

	// API routes - Chat (streamed answer engine)
	mux.HandleFunc("/api/chat/stream", s.app.ChatHandler.StreamHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	return mux
}
