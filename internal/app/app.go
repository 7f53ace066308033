// -----------------------------------------------------------------------
// Application wiring: constructs every service and handler from config.
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/services/attachments"
	"github.com/ternarybob/respondeo/internal/services/chat"
	"github.com/ternarybob/respondeo/internal/services/llm"
	"github.com/ternarybob/respondeo/internal/services/search"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Core services
	AttachmentService interfaces.AttachmentNormalizer
	SearchService     interfaces.WebSearchService
	CompletionService interfaces.CompletionService
	TurnService       interfaces.TurnService

	// HTTP handlers
	ChatHandler   *handlers.ChatHandler
	StatusHandler *handlers.StatusHandler
}

// New creates the application with all services and handlers wired.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = common.GetLogger()
	}

	attachmentService := attachments.NewService(logger)
	searchService := search.NewService(&config.Tavily, logger)

	completionService, err := llm.NewGroqService(&config.Groq, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	turnService := chat.NewService(&config.Chat, attachmentService, searchService, completionService, logger)

	app := &App{
		Config:            config,
		Logger:            logger,
		AttachmentService: attachmentService,
		SearchService:     searchService,
		CompletionService: completionService,
		TurnService:       turnService,
		ChatHandler:       handlers.NewChatHandler(turnService, logger),
		StatusHandler:     handlers.NewStatusHandler(logger),
	}

	logger.Info().
		Str("text_model", config.Groq.TextModel).
		Str("vision_model", config.Groq.VisionModel).
		Bool("search_enabled", searchService.Enabled()).
		Msg("Application initialized")

	return app, nil
}

// Close releases resources held by application services.
func (a *App) Close() error {
	if a.CompletionService != nil {
		if err := a.CompletionService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close completion service")
			return err
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
