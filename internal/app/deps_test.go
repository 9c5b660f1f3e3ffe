package app

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rog-research/internal/cache"
	"rog-research/internal/config"
	"rog-research/internal/inference"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildInference(t *testing.T) {
	tests := []struct {
		provider string
		wantType any
		wantErr  bool
	}{
		{"ollama", &inference.OllamaClient{}, false},
		{"openai", &inference.OpenAIClient{}, false},
		{"stub", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.Config{InferenceProvider: tt.provider, OllamaBaseURL: "http://localhost:11434", RequestTimeout: time.Second}
			client, err := buildInference(cfg, quietLog())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, client)
		})
	}
}

func TestBuildCacheFallsBackToNoOp(t *testing.T) {
	c := buildCache(config.Config{}, quietLog())
	assert.IsType(t, &cache.NoOpCache{}, c)

	// Port 1 on loopback refuses connections.
	c = buildCache(config.Config{CacheAddr: "127.0.0.1:1"}, quietLog())
	assert.IsType(t, &cache.NoOpCache{}, c)
}

func TestBuildStoreAndQueueRequireURLs(t *testing.T) {
	_, err := buildStore(config.Config{}, quietLog())
	assert.ErrorContains(t, err, "DB_URL")

	_, err = buildQueue(config.Config{}, quietLog())
	assert.ErrorContains(t, err, "QUEUE_URL")
}

func TestBuildBridgeLogsToGivenWriter(t *testing.T) {
	t.Setenv("INFERENCE_PROVIDER", "ollama")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL", "phi")
	var buf bytes.Buffer

	deps, err := BuildBridge(&buf)

	require.NoError(t, err)
	assert.Equal(t, "phi", deps.Config.Model)
	assert.NotNil(t, deps.Inference)
	assert.Contains(t, buf.String(), "using Ollama generate client")
}

func TestBuildCLIAddsVerifierAndCache(t *testing.T) {
	t.Setenv("INFERENCE_PROVIDER", "ollama")
	t.Setenv("CACHE_ADDR", "")

	deps, err := BuildCLI(io.Discard)

	require.NoError(t, err)
	require.NotNil(t, deps.Verifier)
	assert.Equal(t, deps.Config.Model, deps.Verifier.Model())
	assert.IsType(t, &cache.NoOpCache{}, deps.Cache)
}
