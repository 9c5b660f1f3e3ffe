package inference

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// placeholderAPIKey satisfies the SDK; Ollama's compatibility layer ignores it.
const placeholderAPIKey = "ollama"

// OpenAIClient talks to the OpenAI-compatible chat endpoint that Ollama serves under /v1.
type OpenAIClient struct {
	endpoint string
	client   *openai.Client
	log      *slog.Logger
}

// NewOpenAIClient builds a chat client rooted at baseURL + "/v1/" with SDK retries disabled.
func NewOpenAIClient(baseURL string, timeout time.Duration, log *slog.Logger) *OpenAIClient {
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
	cli := openai.NewClient(
		option.WithBaseURL(u+"/v1/"),
		option.WithAPIKey(placeholderAPIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	)
	return &OpenAIClient{
		endpoint: u + "/v1/chat/completions",
		client:   &cli,
		log:      log,
	}
}

// Complete sends the prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string) (CompletionResult, error) {
	if c == nil || c.client == nil {
		return CompletionResult{}, errors.New("inference: nil openai client")
	}
	c.log.Debug("inference request", "endpoint", c.endpoint, "model", model, "prompt_bytes", len(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return CompletionResult{}, &MalformedResponseError{Status: apiErr.StatusCode, Err: err}
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return CompletionResult{}, &MalformedResponseError{Err: err}
		}
		return CompletionResult{}, &NetworkError{Endpoint: c.endpoint, Err: err}
	}
	if len(resp.Choices) == 0 {
		return CompletionResult{}, &MalformedResponseError{Err: errors.New("no choices returned")}
	}
	c.log.Debug("inference response", "model", resp.Model, "finish_reason", resp.Choices[0].FinishReason)
	return CompletionResult{Text: resp.Choices[0].Message.Content}, nil
}
