// Package bridge relays a single prompt from a file handoff point to an
// inference endpoint and writes the completion to its caller as JSON.
//
// Consumption is at-most-once only on a best-effort basis: the query file is
// removed after the result is written, so a crash between the read and the
// remove leaves the file in place to be processed again. Two bridges racing on
// the same path are not coordinated; the loser fails with an InputFileError
// once the winner has removed the file.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"rog-research/internal/inference"
)

var (
	// ErrInputFile matches any InputFileError via errors.Is.
	ErrInputFile = errors.New("query file unreadable")
	// ErrMissingPrompt matches any MissingPromptError via errors.Is.
	ErrMissingPrompt = errors.New("no prompt provided in input file")
)

// InputFileError reports a query file that is missing, unreadable or not valid JSON.
type InputFileError struct {
	Path string
	Err  error
}

func (e *InputFileError) Error() string {
	return fmt.Sprintf("bridge: read %s: %v", e.Path, e.Err)
}

func (e *InputFileError) Unwrap() []error {
	return []error{ErrInputFile, e.Err}
}

// MissingPromptError reports a query file without a usable prompt field.
type MissingPromptError struct {
	Path string
}

func (e *MissingPromptError) Error() string {
	return fmt.Sprintf("bridge: %s: %v", e.Path, ErrMissingPrompt)
}

func (e *MissingPromptError) Unwrap() error {
	return ErrMissingPrompt
}

// queryFile is the on-disk handoff format. Unknown fields are ignored.
type queryFile struct {
	Prompt *string `json:"prompt"`
}

// Result is the single JSON line written on success.
type Result struct {
	Result string `json:"result"`
}

// ReadQuery decodes the prompt from the query file at path.
func ReadQuery(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &InputFileError{Path: path, Err: err}
	}
	var qf queryFile
	if err := json.Unmarshal(data, &qf); err != nil {
		return "", &InputFileError{Path: path, Err: err}
	}
	if qf.Prompt == nil || *qf.Prompt == "" {
		return "", &MissingPromptError{Path: path}
	}
	return *qf.Prompt, nil
}

// WriteQuery creates a query file for prompt at path. The file is written
// next to its destination and renamed into place so a bridge never observes
// a partial document.
func WriteQuery(path, prompt string) error {
	data, err := json.Marshal(queryFile{Prompt: &prompt})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".query-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Bridge relays one query file per Run.
type Bridge struct {
	client inference.Client
	model  string
	out    io.Writer
	log    *slog.Logger
}

// New returns a Bridge that completes prompts with model and writes results to out.
func New(client inference.Client, model string, out io.Writer, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{client: client, model: model, out: out, log: log}
}

// Run reads inputPath, completes its prompt, writes {"result": ...} as one
// line and removes inputPath. Nothing is written and the file is left alone
// when any step before the write fails. Removal errors are ignored.
func (b *Bridge) Run(ctx context.Context, inputPath string) error {
	prompt, err := ReadQuery(inputPath)
	if err != nil {
		return err
	}
	b.log.Debug("query loaded", "path", inputPath, "model", b.model, "prompt_bytes", len(prompt))

	res, err := b.client.Complete(ctx, b.model, prompt)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(b.out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Result{Result: res.Text}); err != nil {
		return fmt.Errorf("bridge: write result: %w", err)
	}

	if err := os.Remove(inputPath); err != nil {
		b.log.Debug("query file cleanup failed", "path", inputPath, "err", err)
	}
	return nil
}
