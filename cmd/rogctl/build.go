package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
	"rog-research/internal/modelbuild"
)

func newBuildCmd(deps *app.Deps, runner modelbuild.Runner) *cobra.Command {
	var modelfile, name string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create the model from its Modelfile and smoke-test it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if modelfile == "" {
				modelfile = deps.Config.Modelfile
			}
			if name == "" {
				name = deps.Config.BuildModel
			}

			fmt.Fprintf(out, "Building model %s from %s...\n", name, modelfile)
			b := &modelbuild.Builder{Bin: deps.Config.OllamaBin, Model: name, Modelfile: modelfile, Runner: runner}
			output, err := b.Build(ctx)
			if output != "" {
				fmt.Fprint(out, output)
			}
			if err != nil {
				return err
			}

			// Reports cached against the previous build are stale now.
			if n, err := deps.Cache.Purge(ctx); err != nil {
				deps.Log.Warn("failed to purge cached reports", "err", err)
			} else if n > 0 {
				fmt.Fprintf(out, "Purged %d cached reports\n", n)
			}

			fmt.Fprintln(out, "Testing the model...")
			res, err := deps.Inference.Complete(ctx, name, modelbuild.SampleHeadline)
			if err != nil {
				return fmt.Errorf("model built but test query failed: %w", err)
			}
			fmt.Fprintln(out, res.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelfile, "modelfile", "", "path to the Modelfile (default $MODELFILE)")
	cmd.Flags().StringVar(&name, "name", "", "model name to create (default $BUILD_MODEL)")
	return cmd
}
