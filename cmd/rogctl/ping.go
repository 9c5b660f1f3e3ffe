package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
)

const pingPrompt = "Why is the sky blue?"

func newPingCmd(deps *app.Deps) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "ping [prompt]",
		Short: "Check that the inference server answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := pingPrompt
			if len(args) > 0 {
				prompt = strings.Join(args, " ")
			}
			res, err := deps.Inference.Complete(cmd.Context(), model, prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "phi", "model to query")
	return cmd
}
