// Package modelbuild materializes a named model on the local inference server
// from a Modelfile by shelling out to the server's CLI.
package modelbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SampleHeadline is the smoke-test query sent after a successful build.
const SampleHeadline = `Review this headline: "Scientists discover that drinking coffee extends lifespan by 20 years"`

// ErrModelfileNotFound is returned before anything is executed when the Modelfile is missing.
var ErrModelfileNotFound = errors.New("modelfile not found")

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Builder creates Model from Modelfile using Bin (e.g. "ollama").
type Builder struct {
	Bin       string
	Model     string
	Modelfile string
	Runner    Runner
}

// Build runs "<Bin> create <Model> -f <Modelfile>" from the Modelfile's
// directory and returns the command output.
func (b *Builder) Build(ctx context.Context) (string, error) {
	if b.Model == "" {
		return "", errors.New("modelbuild: model name required")
	}
	path, err := filepath.Abs(b.Modelfile)
	if err != nil {
		return "", fmt.Errorf("modelbuild: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("modelbuild: %s: %w", path, ErrModelfileNotFound)
	}

	bin := b.Bin
	if bin == "" {
		bin = "ollama"
	}
	runner := b.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	out, err := runner.Run(ctx, filepath.Dir(path), bin, "create", b.Model, "-f", filepath.Base(path))
	if err != nil {
		return string(out), fmt.Errorf("modelbuild: %s create %s: %w: %s", bin, b.Model, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
