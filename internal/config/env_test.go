package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://kb:kb@localhost:5432/kb")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 5000, cfg.DefaultChunkSize)
	assert.Equal(t, 500, cfg.DefaultChunkOverlap)
	assert.Equal(t, "docconv", cfg.DefaultPDFParser)
	assert.Equal(t, 768, cfg.EmbedDim)
	assert.False(t, cfg.ArchiveUploads)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "test-key")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL:         "postgres://localhost/kb",
			AIProvider:          "gemini",
			AIAPIKey:            "k",
			BatchSize:           20,
			DefaultChunkSize:    5000,
			DefaultChunkOverlap: 500,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"openai without key", func(c *Config) { c.AIProvider = "openai" }, true},
		{"openai with key", func(c *Config) { c.AIProvider = "openai"; c.OpenAIAPIKey = "sk" }, false},
		{"unknown provider", func(c *Config) { c.AIProvider = "ollama" }, true},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, true},
		{"overlap equals size", func(c *Config) { c.DefaultChunkOverlap = 5000 }, true},
		{"archive without credentials", func(c *Config) { c.ArchiveUploads = true }, true},
		{"archive with credentials", func(c *Config) {
			c.ArchiveUploads = true
			c.AwsAccessKey = "a"
			c.AwsSecretKey = "s"
			c.BucketName = "b"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	cfg = &Config{LogLevel: "warn"}
	logger = cfg.NewLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
}
