package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rog-research/internal/app"
)

func newReplCmd(deps *app.Deps) *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Verify content line by line until \"exit\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			lines, scanErr := readLines(cmd)

			fmt.Fprintln(out, `Enter content to verify ("exit" to quit).`)
			for {
				if ctx.Err() != nil {
					fmt.Fprintln(out)
					return nil
				}
				fmt.Fprint(out, "> ")

				var line string
				select {
				case <-ctx.Done():
					fmt.Fprintln(out)
					return nil
				case l, ok := <-lines:
					if !ok {
						fmt.Fprintln(out)
						return <-scanErr
					}
					line = strings.TrimSpace(l)
				}

				switch {
				case line == "":
					continue
				case strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit"):
					return nil
				}
				// One failed verification should not end the session.
				if err := verifyContent(cmd, deps, line, legacy, false); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "run the single review prompt only")
	return cmd
}

// readLines scans stdin in the background so the prompt can be interrupted.
// The error channel receives exactly one value once lines is closed.
func readLines(cmd *cobra.Command) (<-chan string, <-chan error) {
	ctx := cmd.Context()
	lines := make(chan string)
	errc := make(chan error, 1)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
