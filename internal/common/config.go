package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
	Groq        GroqConfig    `toml:"groq"`
	Tavily      TavilyConfig  `toml:"tavily"`
	Chat        ChatConfig    `toml:"chat"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// GroqConfig contains the completion provider configuration. Groq exposes an
// OpenAI-compatible API, so BaseURL points at its /openai/v1 surface.
type GroqConfig struct {
	APIKey      string  `toml:"api_key"`      // Groq API key (or GROQ_API_KEY env)
	BaseURL     string  `toml:"base_url"`     // API base URL (default: Groq's OpenAI-compatible endpoint)
	TextModel   string  `toml:"text_model"`   // Model for text-only turns
	VisionModel string  `toml:"vision_model"` // Model for turns with an image attachment
	Temperature float32 `toml:"temperature"`  // Completion temperature (default: 0.35)
	MaxTokens   int     `toml:"max_tokens"`   // Maximum tokens in response (default: 2048)
	Timeout     string  `toml:"timeout"`      // Operation timeout as duration string (default: "2m")
}

// TavilyConfig contains the web search provider configuration
type TavilyConfig struct {
	APIKey      string `toml:"api_key"`      // Tavily API key (or TAVILY_API_KEY env); empty disables search
	BaseURL     string `toml:"base_url"`     // API base URL
	SearchDepth string `toml:"search_depth"` // "basic" or "advanced" (default: "basic")
	MaxResults  int    `toml:"max_results"`  // Maximum results per search (default: 3)
	Timeout     string `toml:"timeout"`      // HTTP request timeout as duration string (default: "10s")
}

// ChatConfig contains turn-processing behavior configuration
type ChatConfig struct {
	HistoryWindow      int `toml:"history_window"`       // Trailing messages kept for text turns (default: 10)
	ImageHistoryWindow int `toml:"image_history_window"` // Trailing messages kept for vision turns (default: 5)
	DocumentTextLimit  int `toml:"document_text_limit"`  // Max extracted document chars included in prompt (default: 30000)
	// SearchTriggers is the keyword policy table for the search decider.
	// Any case-insensitive substring match against the user message enables
	// search augmentation. Tunable; the defaults are deliberately coarse.
	SearchTriggers []string `toml:"search_triggers"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in respondeo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Groq: GroqConfig{
			APIKey:      "", // User must provide API key (GROQ_API_KEY or config)
			BaseURL:     "https://api.groq.com/openai/v1",
			TextModel:   "llama-3.3-70b-versatile",
			VisionModel: "meta-llama/llama-4-scout-17b-16e-instruct",
			Temperature: 0.35,
			MaxTokens:   2048,
			Timeout:     "2m",
		},
		Tavily: TavilyConfig{
			APIKey:      "", // Empty disables search augmentation entirely
			BaseURL:     "https://api.tavily.com",
			SearchDepth: "basic",
			MaxResults:  3,
			Timeout:     "10s",
		},
		Chat: ChatConfig{
			HistoryWindow:      10,
			ImageHistoryWindow: 5,
			DocumentTextLimit:  30000,
			SearchTriggers: []string{
				"what is", "who is", "when did",
				"latest", "news", "price", "stock", "update",
			},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override everything except CLI flags, which
// are applied separately via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment (highest priority: RESPONDEO_ENV, fallback: GO_ENV)
	if env := os.Getenv("RESPONDEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONDEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("RESPONDEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("RESPONDEO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("RESPONDEO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Completion provider configuration
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		config.Groq.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONDEO_GROQ_API_KEY"); apiKey != "" {
		config.Groq.APIKey = apiKey
	}
	if baseURL := os.Getenv("RESPONDEO_GROQ_BASE_URL"); baseURL != "" {
		config.Groq.BaseURL = baseURL
	}
	if model := os.Getenv("RESPONDEO_GROQ_TEXT_MODEL"); model != "" {
		config.Groq.TextModel = model
	}
	if model := os.Getenv("RESPONDEO_GROQ_VISION_MODEL"); model != "" {
		config.Groq.VisionModel = model
	}
	if maxTokens := os.Getenv("RESPONDEO_GROQ_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Groq.MaxTokens = mt
		}
	}

	// Search provider configuration
	if apiKey := os.Getenv("TAVILY_API_KEY"); apiKey != "" {
		config.Tavily.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONDEO_TAVILY_API_KEY"); apiKey != "" {
		config.Tavily.APIKey = apiKey
	}
	if baseURL := os.Getenv("RESPONDEO_TAVILY_BASE_URL"); baseURL != "" {
		config.Tavily.BaseURL = baseURL
	}
	if maxResults := os.Getenv("RESPONDEO_TAVILY_MAX_RESULTS"); maxResults != "" {
		if mr, err := strconv.Atoi(maxResults); err == nil {
			config.Tavily.MaxResults = mr
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate performs basic sanity checks on the resolved configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Groq.BaseURL == "" {
		return fmt.Errorf("groq base_url is required")
	}
	if c.Groq.TextModel == "" || c.Groq.VisionModel == "" {
		return fmt.Errorf("groq text_model and vision_model are required")
	}
	if c.Chat.HistoryWindow <= 0 || c.Chat.ImageHistoryWindow <= 0 {
		return fmt.Errorf("history windows must be positive")
	}
	return nil
}
