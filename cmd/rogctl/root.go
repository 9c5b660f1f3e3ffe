package main

import (
	"io"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
	"rog-research/internal/modelbuild"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

type buildDeps func(logOut io.Writer) (app.Deps, error)

// newRootCmd assembles rogctl. Dependencies are built once, before any
// subcommand runs, with logs on the command's stderr.
func newRootCmd(build buildDeps, runner modelbuild.Runner) *cobra.Command {
	deps := &app.Deps{}
	root := &cobra.Command{
		Use:          "rogctl",
		Short:        "Operate the local verification model",
		Long:         "rogctl builds the verification model on the local inference server and queries it.",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		d, err := build(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		*deps = d
		return nil
	}
	root.AddCommand(
		newBuildCmd(deps, runner),
		newPingCmd(deps),
		newAskCmd(deps),
		newReplCmd(deps),
		newQueryCmd(deps),
	)
	return root
}
