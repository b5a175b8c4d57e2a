package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strata/internal/diagfmt"
	"strata/internal/driver"
)

var (
	tokenizeLayer  string
	tokenizeFormat string
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file",
	Short: "Dump the tokens scanned from one file",
	Long: `Tokenize scans a single file as a member of the named layer and
prints every definition and reference it finds. Debug surface for
pattern and grouping configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().StringVar(&tokenizeLayer, "layer", "", "layer the file belongs to (required)")
	tokenizeCmd.Flags().StringVarP(&tokenizeFormat, "format", "f", "human", "output format (human|json)")
	_ = tokenizeCmd.MarkFlagRequired("layer")
	tokenizeCmd.SilenceUsage = true
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	result, err := driver.TokenizeFile(filepath.Dir(filePath), tokenizeLayer, filePath)
	if err != nil {
		return err
	}

	if result.Bag.HasErrors() {
		opts := diagfmt.PrettyOpts{Color: useColor(cmd), Context: true}
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, opts)
	}

	switch tokenizeFormat {
	case "human":
		diagfmt.TokensPretty(os.Stdout, result.Set, result.FileSet)
	case "json":
		if err := diagfmt.TokensJSON(os.Stdout, result.Set, result.FileSet); err != nil {
			return fmt.Errorf("failed to format tokens: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", tokenizeFormat)
	}
	return nil
}
