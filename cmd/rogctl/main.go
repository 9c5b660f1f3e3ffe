package main

import (
	"context"
	"os"
	"os/signal"

	"rog-research/internal/app"
	"rog-research/internal/modelbuild"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(app.BuildCLI, modelbuild.ExecRunner{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
