package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"rog-research/internal/cache"
	"rog-research/internal/config"
	"rog-research/internal/inference"
	"rog-research/internal/logger"
	"rog-research/internal/queue"
	"rog-research/internal/store"
	"rog-research/internal/verify"
)

// Deps bundles common runtime dependencies for binaries. Each Build* function
// fills only what its binary uses.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Inference inference.Client
	Verifier  *verify.Verifier
	Cache     cache.Cache
	Store     store.Store
	Queue     queue.Queue
}

// BuildBridge wires the file bridge: inference only, logs on logOut.
func BuildBridge(logOut io.Writer) (Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.NewWithWriter(cfg.LogLevel, logOut)
	client, err := buildInference(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize inference client: %w", err)
	}
	return Deps{Config: cfg, Log: log, Inference: client}, nil
}

// BuildCLI wires the operator CLI: inference, verifier and the optional cache.
func BuildCLI(logOut io.Writer) (Deps, error) {
	deps, err := BuildBridge(logOut)
	if err != nil {
		return Deps{}, err
	}
	deps.Verifier = verify.New(deps.Inference, deps.Config.Model)
	deps.Cache = buildCache(deps.Config, deps.Log)
	return deps, nil
}

// BuildGateway wires the HTTP gateway.
func BuildGateway() (Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	client, err := buildInference(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize inference client: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{
		Config:    cfg,
		Log:       log,
		Inference: client,
		Verifier:  verify.New(client, cfg.Model),
		Cache:     buildCache(cfg, log),
		Store:     st,
		Queue:     q,
	}, nil
}

// BuildWorker wires the queue worker.
func BuildWorker() (Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	client, err := buildInference(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize inference client: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{Config: cfg, Log: log, Inference: client, Store: st, Queue: q}, nil
}

// loadConfig applies an optional .env file, then reads the environment.
func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return config.Load(), nil
}

func buildInference(cfg config.Config, log *slog.Logger) (inference.Client, error) {
	switch cfg.InferenceProvider {
	case "ollama":
		log.Debug("using Ollama generate client", "base_url", cfg.OllamaBaseURL, "model", cfg.Model, "timeout", cfg.RequestTimeout)
		return inference.NewOllamaClient(cfg.OllamaBaseURL, cfg.RequestTimeout, log), nil
	case "openai":
		log.Debug("using OpenAI-compatible client", "base_url", cfg.OllamaBaseURL, "model", cfg.Model, "timeout", cfg.RequestTimeout)
		return inference.NewOpenAIClient(cfg.OllamaBaseURL, cfg.RequestTimeout, log), nil
	default:
		return nil, fmt.Errorf("invalid INFERENCE_PROVIDER: %s (valid options: ollama, openai)", cfg.InferenceProvider)
	}
}

// buildCache never fails: without a reachable Redis every lookup is a miss.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheAddr == "" {
		log.Debug("CACHE_ADDR not set; caching disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.CacheAddr, cfg.CachePassword)
	if err != nil {
		log.Warn("redis unavailable; caching disabled", "addr", cfg.CacheAddr, "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis cache", "addr", cfg.CacheAddr)
	return c
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	db, err := store.NewPostgres(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
	}
	log.Info("using Postgres store")
	return db, nil
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	if cfg.QueueURL == "" {
		return nil, errors.New("QUEUE_URL is required")
	}
	nc, err := nats.Connect(cfg.QueueURL, nats.Name("rog-research"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS queue")
	return queue.NewNATS(log, nc), nil
}
