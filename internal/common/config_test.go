package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)

	assert.Equal(t, "https://api.groq.com/openai/v1", config.Groq.BaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", config.Groq.TextModel)
	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", config.Groq.VisionModel)
	assert.Equal(t, float32(0.35), config.Groq.Temperature)
	assert.Equal(t, 2048, config.Groq.MaxTokens)

	assert.Equal(t, 3, config.Tavily.MaxResults)
	assert.Equal(t, "basic", config.Tavily.SearchDepth)

	assert.Equal(t, 10, config.Chat.HistoryWindow)
	assert.Equal(t, 5, config.Chat.ImageHistoryWindow)
	assert.Equal(t, 30000, config.Chat.DocumentTextLimit)
	assert.Contains(t, config.Chat.SearchTriggers, "what is")
	assert.Contains(t, config.Chat.SearchTriggers, "latest")
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respondeo.toml")
	content := `
[server]
port = 9090

[groq]
text_model = "custom-model"

[chat]
history_window = 20
search_triggers = ["breaking"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "custom-model", config.Groq.TextModel)
	assert.Equal(t, 20, config.Chat.HistoryWindow)
	assert.Equal(t, []string{"breaking"}, config.Chat.SearchTriggers)

	// Untouched settings keep their defaults
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", config.Groq.VisionModel)
}

func TestLoadFromFiles_LaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9001\nhost = \"0.0.0.0\"\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 9002\n"), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 9002, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/respondeo.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	t.Setenv("TAVILY_API_KEY", "tvly_from_env")
	t.Setenv("RESPONDEO_SERVER_PORT", "7070")
	t.Setenv("RESPONDEO_LOG_LEVEL", "debug")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "gsk_from_env", config.Groq.APIKey)
	assert.Equal(t, "tvly_from_env", config.Tavily.APIKey)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)

	ApplyFlagOverrides(config, 3000, "0.0.0.0")
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing base url", func(c *Config) { c.Groq.BaseURL = "" }, true},
		{"missing text model", func(c *Config) { c.Groq.TextModel = "" }, true},
		{"missing vision model", func(c *Config) { c.Groq.VisionModel = "" }, true},
		{"zero history window", func(c *Config) { c.Chat.HistoryWindow = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
