package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoServer answers /api/generate with {"response": <text>} and records the decoded request.
func echoServer(t *testing.T, text string, got *generateRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "m", "response": text, "done": true})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaCompleteReturnsResponseField(t *testing.T) {
	prompts := []string{
		"Why is the sky blue?",
		"",
		"quote \" and newline \n and unicode Róg",
	}
	for _, prompt := range prompts {
		t.Run(prompt, func(t *testing.T) {
			var got generateRequest
			srv := echoServer(t, "<X>", &got)
			client := NewOllamaClient(srv.URL+"/", time.Second, quietLog())

			res, err := client.Complete(context.Background(), "rog-research-preview", prompt)
			require.NoError(t, err)
			assert.Equal(t, "<X>", res.Text)
			assert.Equal(t, "rog-research-preview", got.Model)
			assert.Equal(t, prompt, got.Prompt)
			assert.False(t, got.Stream)
		})
	}
}

func TestOllamaRequestBodyShape(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, time.Second, quietLog()).Complete(context.Background(), "phi", "hi")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model": "phi", "prompt": "hi", "stream": false}, raw)
}

func TestOllamaUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res, err := NewOllamaClient(url, time.Second, quietLog()).Complete(context.Background(), "m", "p")
	require.Error(t, err)
	assert.Equal(t, CompletionResult{}, res)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "expected NetworkError, got %T: %v", err, err)
	assert.Equal(t, url+"/api/generate", netErr.Endpoint)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestOllamaTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewOllamaClient(srv.URL, 50*time.Millisecond, quietLog()).Complete(context.Background(), "m", "p")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestOllamaMalformedResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, wantStatus: http.StatusOK},
		{name: "missing response field", status: http.StatusOK, body: `{"model":"m","done":true}`, wantStatus: http.StatusOK, wantMsg: `missing "response" field`},
		{name: "wrong field type", status: http.StatusOK, body: `{"response": 42}`, wantStatus: http.StatusOK},
		{name: "server error with message", status: http.StatusNotFound, body: `{"error":"model 'x' not found"}`, wantStatus: http.StatusNotFound, wantMsg: "model 'x' not found"},
		{name: "server error without body", status: http.StatusInternalServerError, body: ``, wantStatus: http.StatusInternalServerError, wantMsg: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaClient(srv.URL, time.Second, quietLog()).Complete(context.Background(), "m", "p")

			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed), "expected MalformedResponseError, got %T: %v", err, err)
			assert.Equal(t, tt.wantStatus, malformed.Status)
			assert.Equal(t, tt.body, malformed.Body)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestNewOllamaClientDefaults(t *testing.T) {
	c := NewOllamaClient("", 0, nil)
	assert.Equal(t, DefaultOllamaBaseURL, c.baseURL)
	assert.Equal(t, DefaultRequestTimeout, c.client.Timeout)
	assert.NotNil(t, c.log)
}
