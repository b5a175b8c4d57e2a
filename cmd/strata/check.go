package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/diag"
	"strata/internal/diagfmt"
	"strata/internal/driver"
	"strata/internal/observ"
)

var (
	checkLayer     string
	checkFormat    string
	checkPathsMode string
	checkNoContext bool
)

// errFindings signals that validation reported issues. main maps it to
// exit status 1 after deferred cleanups, the tracer's included, have run.
var errFindings = errors.New("validation findings reported")

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate traceability across the layer ladder",
	Long: `Check scans every configured layer, builds the trace graph and reports
adjacency and resolution issues. The config (strata.toml) is found by
walking upward from [dir], which defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkLayer, "layer", "", "restrict validation to the boundary of the named layer")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "human", "output format (human|short|json)")
	checkCmd.Flags().StringVar(&checkPathsMode, "paths", "auto", "path display (auto|absolute|relative|basename)")
	checkCmd.Flags().BoolVar(&checkNoContext, "no-context", false, "omit source context snippets")
	checkCmd.SilenceUsage = true
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
	}

	result, err := driver.Run(driver.Options{
		Dir:        dir,
		ScopeLayer: checkLayer,
		Tracer:     tracer,
		Timer:      timer,
	})
	if err != nil {
		return err
	}

	pathMode, err := parsePathMode(checkPathsMode)
	if err != nil {
		return err
	}

	switch checkFormat {
	case "human":
		opts := diagfmt.PrettyOpts{
			Color:    useColor(cmd),
			Context:  !checkNoContext,
			PathMode: pathMode,
			Max:      maxDiags,
		}
		diagfmt.Pretty(os.Stdout, result.Bag, result.FileSet, opts)
	case "short":
		output := diag.FormatShortDiagnostics(result.Bag.Items(), result.FileSet)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		opts := diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeContext:   !checkNoContext,
			PathMode:         pathMode,
			Max:              maxDiags,
		}
		if err := diagfmt.JSON(os.Stdout, result.Bag, result.FileSet, opts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", checkFormat)
	}

	if timer != nil {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if result.Bag.HasErrors() {
		if !quiet && checkFormat == "human" {
			fmt.Fprintf(os.Stderr, "check failed with %d issue(s)\n", result.Bag.Len())
		}
		return errFindings
	}
	if !quiet && checkFormat == "human" {
		fmt.Fprintln(os.Stdout, "ok")
	}
	return nil
}

func parsePathMode(s string) (diagfmt.PathMode, error) {
	switch s {
	case "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute":
		return diagfmt.PathModeAbsolute, nil
	case "relative":
		return diagfmt.PathModeRelative, nil
	case "basename":
		return diagfmt.PathModeBasename, nil
	default:
		return diagfmt.PathModeAuto, fmt.Errorf("unknown paths mode: %s", s)
	}
}
