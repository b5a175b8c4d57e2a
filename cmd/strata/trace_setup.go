package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/trace"
)

// setupTracing reads the trace-related persistent flags and builds a
// tracer. It returns the tracer and a cleanup function that flushes and
// closes the output.
func setupTracing(cmd *cobra.Command) (trace.Tracer, func(), error) {
	root := cmd.Root()

	levelStr, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	outPath, err := root.PersistentFlags().GetString("trace-out")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-out flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		return trace.Nop(), func() {}, nil
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Format:     format,
		OutputPath: outPath,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close tracer: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}
