package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SslCertPath string `envconfig:"SSL_CERT_PATH"`
	Port        string `envconfig:"PORT" default:"8080"`

	// AI provider: "gemini" or "openai".
	AIProvider     string  `envconfig:"AI_PROVIDER" default:"gemini"`
	AIAPIKey       string  `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey   string  `envconfig:"OPENAI_API_KEY"`
	EmbedModel     string  `envconfig:"EMBED_MODEL" default:"text-embedding-004"`
	EmbedDim       int     `envconfig:"EMBED_DIM" default:"768"`
	GenModel       string  `envconfig:"GEN_MODEL" default:"gemini-1.5-flash"`
	EmbedRateLimit float64 `envconfig:"EMBED_RATE_LIMIT" default:"0"`
	EmbedRateBurst int     `envconfig:"EMBED_RATE_BURST" default:"20"`

	BatchSize           int    `envconfig:"BATCH_SIZE" default:"20"`
	DefaultChunkSize    int    `envconfig:"DEFAULT_CHUNK_SIZE" default:"5000"`
	DefaultChunkOverlap int    `envconfig:"DEFAULT_CHUNK_OVERLAP" default:"500"`
	DefaultPDFParser    string `envconfig:"DEFAULT_PDF_PARSER" default:"docconv"`
	MaxUploadSizeMB     int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"52"`

	ArchiveUploads bool   `envconfig:"ARCHIVE_UPLOADS" default:"false"`
	AwsAccessKey   string `envconfig:"AWS_ACCESS_KEY"`
	AwsSecretKey   string `envconfig:"AWS_SECRET_KEY"`
	AwsRegion      string `envconfig:"AWS_REGION" default:"us-east-2"`
	BucketName     string `envconfig:"BUCKET_NAME" default:"weddingkb-uploads"`

	JWTSecret   string   `envconfig:"JWT_SECRET"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig reads .env (if present) and the process environment into a Config.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingRequired)
	}
	switch c.AIProvider {
	case "gemini":
		if c.AIAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.DefaultChunkSize < 1 || c.DefaultChunkOverlap < 0 || c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP (%d) must be non-negative and less than DEFAULT_CHUNK_SIZE (%d)",
			c.DefaultChunkOverlap, c.DefaultChunkSize)
	}
	if c.ArchiveUploads {
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			return fmt.Errorf("%w: AWS_ACCESS_KEY/AWS_SECRET_KEY (ARCHIVE_UPLOADS=true)", ErrMissingRequired)
		}
		if c.BucketName == "" {
			return fmt.Errorf("%w: BUCKET_NAME", ErrMissingRequired)
		}
	}
	return nil
}

// NewLogger builds the process-wide structured logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
