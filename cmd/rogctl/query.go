package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
	"rog-research/internal/bridge"
)

func newQueryCmd(deps *app.Deps) *cobra.Command {
	var path string
	var writeOnly bool

	cmd := &cobra.Command{
		Use:   "query <prompt...>",
		Short: "Hand a prompt to the bridge through the query file",
		Long: "query writes the prompt to the query file and runs the bridge on it, printing the\n" +
			"bridge's {\"result\": ...} line. With --write-only the file is left for an external bridge.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = deps.Config.QueryFile
			}
			if err := bridge.WriteQuery(path, strings.Join(args, " ")); err != nil {
				return fmt.Errorf("write query file: %w", err)
			}
			if writeOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Query written to %s\n", path)
				return nil
			}
			b := bridge.New(deps.Inference, deps.Config.Model, cmd.OutOrStdout(), deps.Log)
			return b.Run(cmd.Context(), path)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "query file path (default $QUERY_FILE)")
	cmd.Flags().BoolVar(&writeOnly, "write-only", false, "write the query file without running the bridge")
	return cmd
}
