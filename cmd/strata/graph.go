package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/diagfmt"
	"strata/internal/driver"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Dump the trace graph between layers",
	Long: `Graph scans every layer and prints the per-boundary edges and the
terminal reach of each definition, without running validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "human", "output format (human|json)")
	graphCmd.SilenceUsage = true
}

func runGraph(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := driver.Run(driver.Options{Dir: dir, Tracer: tracer})
	if err != nil {
		return err
	}

	switch graphFormat {
	case "human":
		diagfmt.GraphPretty(os.Stdout, result.Ladder, result.Graph)
	case "json":
		if err := diagfmt.GraphJSON(os.Stdout, result.Ladder, result.Graph); err != nil {
			return fmt.Errorf("failed to format graph: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", graphFormat)
	}
	return nil
}
