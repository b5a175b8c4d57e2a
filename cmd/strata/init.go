package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strata/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a strata project",
	Long: `Init creates a starter strata.toml in the target directory. If
[path|name] is omitted, the current directory is used. A non-existing
name creates the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const configTemplate = `# strata layer ladder, ordered most-upstream first

[grouping]
start = "["
end = "]"
separator = ","
passthrough = "!"
quotes = "` + "`" + `"

[resolution]
enabled = false
separator = "::"

[[layers]]
name = "requirements"
patterns = ["REQ-[0-9]+"]
files = ["requirements/**/*.md"]

[[layers]]
name = "design"
patterns = ["DES-[0-9]+"]
files = ["design/**/*.md"]
`

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", target)
	}

	cfgPath := filepath.Join(target, project.ConfigName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", project.ConfigName, err)
	}

	fmt.Fprintf(os.Stdout, "created %s\n", cfgPath)
	return nil
}
