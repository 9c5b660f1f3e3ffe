package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by all binaries.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Inference
	InferenceProvider string        `env:"INFERENCE_PROVIDER" envDefault:"ollama"` // "ollama" (/api/generate) or "openai" (OpenAI-compatible /v1)
	OllamaBaseURL     string        `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	Model             string        `env:"MODEL" envDefault:"rog-research-preview"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	// File bridge
	QueryFile string `env:"QUERY_FILE" envDefault:"temp_prompt.json"`

	// Model build
	Modelfile  string `env:"MODELFILE" envDefault:"Modelfile"`
	BuildModel string `env:"BUILD_MODEL" envDefault:"rog-research"`
	OllamaBin  string `env:"OLLAMA_BIN" envDefault:"ollama"`

	// Cache
	CacheAddr     string `env:"CACHE_ADDR"`
	CachePassword string `env:"CACHE_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Store
	DBURL string `env:"DB_URL"`

	// Queue
	QueueURL string `env:"QUEUE_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
