package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
)

func newAskCmd(deps *app.Deps) *cobra.Command {
	var legacy, verbose bool

	cmd := &cobra.Command{
		Use:   "ask <content...>",
		Short: "Verify a piece of content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyContent(cmd, deps, strings.Join(args, " "), legacy, verbose)
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "run the single review prompt only")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print each analysis before the combined result")
	return cmd
}

func verifyContent(cmd *cobra.Command, deps *app.Deps, content string, legacy, verbose bool) error {
	out := cmd.OutOrStdout()
	if legacy {
		review, err := deps.Verifier.Review(cmd.Context(), content)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, review)
		return nil
	}

	rep, err := deps.Verifier.Enhanced(cmd.Context(), content)
	if err != nil {
		return err
	}
	if verbose {
		printSection(out, "Pattern analysis", rep.LocalAnalysis)
		printSection(out, "Evidence review", rep.Review)
		printSection(out, "Combined", rep.Combined)
		return nil
	}
	fmt.Fprintln(out, rep.Combined)
	return nil
}

func printSection(w io.Writer, title, body string) {
	fmt.Fprintf(w, "== %s ==\n%s\n\n", title, body)
}
