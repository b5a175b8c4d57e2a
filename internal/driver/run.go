// Package driver wires the pipeline together: config, file collection,
// per-file scanning, graph building, and validation. The pipeline runs
// over an immutable snapshot captured at start; it either completes or
// fails fast with an environment error.
package driver

import (
	"fmt"
	"strings"

	"strata/internal/check"
	"strata/internal/collect"
	"strata/internal/diag"
	"strata/internal/graph"
	"strata/internal/layer"
	"strata/internal/observ"
	"strata/internal/project"
	"strata/internal/scan"
	"strata/internal/source"
	"strata/internal/trace"
)

// Options configures one run.
type Options struct {
	// Dir is where the upward strata.toml search starts.
	Dir string
	// ScopeLayer, when set, restricts validation to the boundary the
	// named layer participates in.
	ScopeLayer string
	// Tracer receives pipeline events; nil means no tracing.
	Tracer trace.Tracer
	// Timer, when non-nil, records phase timings.
	Timer *observ.Timer
}

// Result bundles everything a collaborator needs after a run.
type Result struct {
	Config   *project.Config
	Ladder   *layer.Ladder
	FileSet  *source.FileSet
	Sets     []layer.ParsedSet
	Graph    *graph.Graph
	Bag      *diag.Bag
	Boundary *int // scoped boundary (upstream layer index), nil = all
}

// Run executes the full pipeline: collect, scan, graph, check.
func Run(opts Options) (*Result, error) {
	endRun := trace.Span(opts.Tracer, trace.ScopeRun, "run")
	defer endRun("")

	cfg, err := project.LoadFrom(opts.Dir)
	if err != nil {
		return nil, err
	}
	ladder, err := cfg.Ladder()
	if err != nil {
		return nil, err
	}

	boundary, err := resolveScope(ladder, opts.ScopeLayer)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Config:   cfg,
		Ladder:   ladder,
		FileSet:  source.NewFileSetWithBase(cfg.Dir),
		Bag:      diag.NewBag(64),
		Boundary: boundary,
	}

	idsPerLayer, err := collectFiles(res, opts)
	if err != nil {
		return nil, err
	}

	scanLayers(res, idsPerLayer, opts)

	phase := timerBegin(opts.Timer, "graph")
	endGraph := trace.Span(opts.Tracer, trace.ScopePhase, "graph")
	res.Graph = graph.Build(ladder, res.Sets)
	endGraph(fmt.Sprintf("%d boundaries", len(res.Graph.Boundaries)))
	timerEnd(opts.Timer, phase, "")

	phase = timerBegin(opts.Timer, "check")
	endCheck := trace.Span(opts.Tracer, trace.ScopePhase, "check")
	engine := check.New(ladder, res.Graph, diag.BagReporter{Bag: res.Bag}, check.Options{Boundary: boundary})
	engine.Run()
	endCheck(fmt.Sprintf("%d issues", res.Bag.Len()))
	timerEnd(opts.Timer, phase, "")

	return res, nil
}

func collectFiles(res *Result, opts Options) ([][]source.FileID, error) {
	phase := timerBegin(opts.Timer, "collect")
	endCollect := trace.Span(opts.Tracer, trace.ScopePhase, "collect")

	globs := make([][]string, len(res.Config.Layers))
	for i, lc := range res.Config.Layers {
		globs[i] = lc.Files
	}
	assignments, err := collect.Files(res.Config.Dir, globs)
	if err != nil {
		return nil, err
	}
	ids, err := collect.Load(res.FileSet, assignments)
	if err != nil {
		return nil, err
	}

	endCollect(fmt.Sprintf("%d files", res.FileSet.Len()))
	timerEnd(opts.Timer, phase, fmt.Sprintf("%d files", res.FileSet.Len()))
	return ids, nil
}

func scanLayers(res *Result, idsPerLayer [][]source.FileID, opts Options) {
	phase := timerBegin(opts.Timer, "scan")
	endScan := trace.Span(opts.Tracer, trace.ScopePhase, "scan")

	reporter := scan.BagReporter{Bag: res.Bag}
	res.Sets = make([]layer.ParsedSet, len(res.Ladder.Layers))
	for layerIdx := range res.Ladder.Layers {
		own := &res.Ladder.Layers[layerIdx]
		var prev *layer.Layer
		if layerIdx > 0 {
			prev = &res.Ladder.Layers[layerIdx-1]
		}
		for _, fileID := range idsPerLayer[layerIdx] {
			file := res.FileSet.Get(fileID)
			trace.Point(opts.Tracer, trace.ScopeFile, "scan:"+file.Path, "")
			res.Sets[layerIdx].Append(scan.Scan(file, own, prev, res.Ladder, scan.Options{Reporter: reporter}))
		}
	}

	endScan("")
	timerEnd(opts.Timer, phase, "")
}

// resolveScope maps a --layer name onto the single boundary it
// participates in. A name that is not a configured layer is fatal.
func resolveScope(ladder *layer.Ladder, name string) (*int, error) {
	if name == "" {
		return nil, nil
	}
	idx, ok := ladder.LayerIndex(name)
	if !ok {
		known := make([]string, 0, len(ladder.Layers))
		for _, l := range ladder.Layers {
			known = append(known, l.Name)
		}
		return nil, fmt.Errorf("unknown layer %q (configured layers: %s)", name, strings.Join(known, ", "))
	}
	if len(ladder.Layers) < 2 {
		return nil, nil
	}
	boundary := idx - 1
	if boundary < 0 {
		boundary = 0
	}
	return &boundary, nil
}

func timerBegin(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func timerEnd(t *observ.Timer, idx int, note string) {
	if t != nil {
		t.End(idx, note)
	}
}
