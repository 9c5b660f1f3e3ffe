package inference

import (
	"context"
	"errors"
	"fmt"
)

// CompletionResult is the text a model produced for one prompt.
type CompletionResult struct {
	Text string
}

// Client sends a single prompt to an inference endpoint and returns the completion.
// Implementations issue exactly one outbound call and never retry.
type Client interface {
	Complete(ctx context.Context, model, prompt string) (CompletionResult, error)
}

var (
	// ErrNetwork matches any NetworkError via errors.Is.
	ErrNetwork = errors.New("inference endpoint unreachable")
	// ErrMalformedResponse matches any MalformedResponseError via errors.Is.
	ErrMalformedResponse = errors.New("malformed inference response")
)

// NetworkError reports that the endpoint could not be reached, the connection
// was reset, or the request deadline expired.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("inference: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// MalformedResponseError reports a response that does not carry a usable
// completion: a non-2xx status, an unparseable body, or a missing text field.
type MalformedResponseError struct {
	Status int
	Body   string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference: malformed response (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("inference: malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}
