package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/diagfmt"
	"strata/internal/driver"
	"strata/internal/resolve"
)

var (
	resolveSet    bool
	resolveFix    bool
	resolveDryRun bool
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [dir]",
	Short: "Write resolution markers onto definitions",
	Long: `Resolve computes resolution-marker edits from the trace graph and
applies them in place. --set annotates unmarked definitions with their
terminal layer; --fix rewrites markers that disagree with the graph.
--dry-run prints the edits without touching any file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveSet, "set", false, "annotate unmarked definitions")
	resolveCmd.Flags().BoolVar(&resolveFix, "fix", false, "rewrite mismatched markers")
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "print edits without writing files")
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", "human", "output format (human|json)")
	resolveCmd.SilenceUsage = true
}

func runResolve(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if !resolveSet && !resolveFix {
		return fmt.Errorf("at least one of --set or --fix is required")
	}
	mode := resolve.Mode{Set: resolveSet, Fix: resolveFix}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	result, err := driver.Run(driver.Options{Dir: dir, Tracer: tracer})
	if err != nil {
		return err
	}

	pretty := diagfmt.PrettyOpts{Color: useColor(cmd), Context: true}

	res, err := driver.Resolve(result, mode, resolveDryRun, tracer)
	if err != nil {
		// A precondition failure means the scan found structural
		// issues; show them so the user knows what blocks the write.
		if result.Bag.HasErrors() {
			diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, pretty)
		}
		return err
	}

	switch resolveFormat {
	case "human":
		if len(res.Edits) == 0 {
			if !quiet {
				fmt.Fprintln(os.Stdout, "no edits needed")
			}
			return nil
		}
		diagfmt.EditsPretty(os.Stdout, res.Edits, result.FileSet, pretty)
		if !resolveDryRun && !quiet {
			for _, ch := range res.Changes {
				fmt.Fprintf(os.Stdout, "wrote %s (%d edit(s))\n", ch.Path, ch.EditCount)
			}
		}
	case "json":
		if err := diagfmt.EditsJSON(os.Stdout, res.Edits, result.FileSet, diagfmt.JSONOpts{IncludePositions: true}); err != nil {
			return fmt.Errorf("failed to format edits: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", resolveFormat)
	}
	return nil
}
