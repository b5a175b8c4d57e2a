// Package check runs the phase-ordered validation over parsed tokens and
// the trace graph. Scan issues (phase 1) are emitted while parsing;
// this engine adds the adjacency (phase 2) and resolution (phase 3)
// phases, in that order, deterministically and without short-circuiting
// beyond the two sanctioned suppressions.
package check

import (
	"fmt"

	"strata/internal/diag"
	"strata/internal/graph"
	"strata/internal/layer"
)

// Options scopes the engine.
type Options struct {
	// Boundary, when non-nil, restricts adjacency checks to the single
	// boundary with this upstream layer index, and resolution checks to
	// markers annotated with one of its two layers.
	Boundary *int
}

// Engine validates one run's graph against the ladder.
type Engine struct {
	ladder   *layer.Ladder
	graph    *graph.Graph
	reporter diag.Reporter
	opts     Options
}

// New creates an engine over an already built graph.
func New(ladder *layer.Ladder, g *graph.Graph, reporter diag.Reporter, opts Options) *Engine {
	return &Engine{ladder: ladder, graph: g, reporter: reporter, opts: opts}
}

// Run executes phases 2 and 3. Issues arrive at the reporter in
// canonical order: ascending boundary, then ascending layer.
func (e *Engine) Run() {
	e.adjacencyPhase()
	if e.ladder.Resolution.Enabled {
		e.resolutionPhase()
	}
}

// adjacencyPhase walks boundaries in ascending order. Unknown upstream
// references are always reported; unmapped upstream ids only in coverage
// mode (resolution disabled for the whole run).
func (e *Engine) adjacencyPhase() {
	for i := range e.graph.Boundaries {
		b := &e.graph.Boundaries[i]
		if e.opts.Boundary != nil && b.Upstream != *e.opts.Boundary {
			continue
		}

		upName := e.ladder.Layers[b.Upstream].Name
		downName := e.ladder.Layers[b.Downstream].Name

		for _, ref := range b.UnknownRefs {
			diag.ReportError(e.reporter, diag.AdjUnknownUpstreamReference, ref.Span,
				fmt.Sprintf("reference %q in layer %q has no definition in layer %q",
					ref.ID, downName, upName))
		}

		if e.ladder.Resolution.Enabled {
			continue
		}
		for _, def := range b.MissingUpstream {
			diag.ReportError(e.reporter, diag.AdjUnmappedUpstreamID, def.Span,
				fmt.Sprintf("definition %q in layer %q is never referenced in layer %q",
					def.ID, upName, downName))
		}
	}
}

// resolutionPhase checks every annotated definition, ascending by layer
// then first occurrence. A backward marker makes trace comparison
// meaningless, so it suppresses the reach comparison for that token.
func (e *Engine) resolutionPhase() {
	for layerIdx := 0; layerIdx < e.graph.LayerCount(); layerIdx++ {
		seen := make(map[string]bool)
		for _, def := range e.graph.Defs(layerIdx) {
			// dedup over annotated occurrences only, so an unmarked
			// duplicate cannot shadow a later marker on the same id
			if def.Level == "" {
				continue
			}
			if seen[def.ID] {
				continue
			}
			seen[def.ID] = true

			annotated, ok := e.ladder.LayerIndex(def.Level)
			if !ok {
				// unresolved levels were already reported by the scanner
				continue
			}
			if e.opts.Boundary != nil {
				up := *e.opts.Boundary
				// without the intervening layers the marker cannot be
				// verified, so out-of-scope annotations are skipped
				if annotated != up && annotated != up+1 {
					continue
				}
			}

			if annotated <= layerIdx {
				diag.ReportError(e.reporter, diag.ResOutOfOrderLevel, def.Span,
					fmt.Sprintf("definition %q is annotated with level %q, which is not downstream of its own layer %q",
						def.ID, def.Level, e.ladder.Layers[layerIdx].Name))
				continue
			}

			r := e.graph.Reach(layerIdx, def.ID)
			if r.Terminal != annotated {
				diag.ReportError(e.reporter, diag.ResMismatchedResolution, def.Span,
					fmt.Sprintf("definition %q is annotated to reach layer %q but its references stop at layer %q",
						def.ID, def.Level, e.ladder.Layers[r.Terminal].Name))
			}
		}
	}
}
