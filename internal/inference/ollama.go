package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOllamaBaseURL is the default base URL for a local Ollama server.
	DefaultOllamaBaseURL = "http://localhost:11434"
	// DefaultRequestTimeout bounds a single generate call.
	DefaultRequestTimeout = 60 * time.Second

	generatePath = "/api/generate"
	// bodyPreview caps how much of a bad response body is kept in errors and logs.
	bodyPreview = 512
)

// OllamaClient calls the Ollama /api/generate endpoint in non-streaming mode.
type OllamaClient struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewOllamaClient returns a client for the server at baseURL.
// An empty baseURL falls back to DefaultOllamaBaseURL and a non-positive
// timeout to DefaultRequestTimeout.
func NewOllamaClient(baseURL string, timeout time.Duration, log *slog.Logger) *OllamaClient {
	u := strings.TrimRight(baseURL, "/")
	if u == "" {
		u = DefaultOllamaBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &OllamaClient{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Error    string  `json:"error,omitempty"`
}

// Complete posts {model, prompt, stream:false} and returns the "response" field.
func (c *OllamaClient) Complete(ctx context.Context, model, prompt string) (CompletionResult, error) {
	endpoint := c.baseURL + generatePath
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("inference: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return CompletionResult{}, fmt.Errorf("inference: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("inference request", "endpoint", endpoint, "model", model, "prompt_bytes", len(prompt))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return CompletionResult{}, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResult{}, &NetworkError{Endpoint: endpoint, Err: err}
	}
	c.log.Debug("inference response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var out generateResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := errors.New(http.StatusText(resp.StatusCode))
		if decodeErr == nil && out.Error != "" {
			reason = errors.New(out.Error)
		}
		return CompletionResult{}, &MalformedResponseError{Status: resp.StatusCode, Body: preview(raw), Err: reason}
	}
	if decodeErr != nil {
		return CompletionResult{}, &MalformedResponseError{Status: resp.StatusCode, Body: preview(raw), Err: decodeErr}
	}
	if out.Response == nil {
		return CompletionResult{}, &MalformedResponseError{Status: resp.StatusCode, Body: preview(raw), Err: errors.New(`missing "response" field`)}
	}
	return CompletionResult{Text: *out.Response}, nil
}

func preview(raw []byte) string {
	if len(raw) > bodyPreview {
		return string(raw[:bodyPreview])
	}
	return string(raw)
}
