package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"rog-research/internal/app"
	"rog-research/internal/bridge"
	"rog-research/internal/inference"
)

// Exit statuses. Callers must treat any non-zero status as "no result produced".
const (
	exitOK             = 0
	exitFailure        = 1
	exitInputFile      = 2
	exitMissingPrompt  = 3
	exitNetwork        = 4
	exitMalformedReply = 5
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run processes one query file. Only the result line goes to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	deps, err := app.BuildBridge(stderr)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		return exitFailure
	}
	path := deps.Config.QueryFile
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}

	b := bridge.New(deps.Inference, deps.Config.Model, stdout, deps.Log)
	return report(deps.Log, path, b.Run(ctx, path))
}

// report is the single place where bridge failures are logged and mapped to exit codes.
func report(log *slog.Logger, path string, err error) int {
	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	log.Error("error processing query", "path", path, "exit_code", code, "err", err)
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bridge.ErrInputFile):
		return exitInputFile
	case errors.Is(err, bridge.ErrMissingPrompt):
		return exitMissingPrompt
	case errors.Is(err, inference.ErrNetwork):
		return exitNetwork
	case errors.Is(err, inference.ErrMalformedResponse):
		return exitMalformedReply
	default:
		return exitFailure
	}
}
