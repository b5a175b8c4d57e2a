package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"strata/internal/graph"
	"strata/internal/layer"
)

// BoundaryJSON is one adjacent layer pair in graph output.
type BoundaryJSON struct {
	Upstream   string              `json:"upstream"`
	Downstream string              `json:"downstream"`
	Edges      map[string][]string `json:"edges"`
}

// ReachJSON is one definition's reach record.
type ReachJSON struct {
	ID       string `json:"id"`
	Origin   string `json:"origin"`
	Terminal string `json:"terminal"`
}

// GraphOutput is the root JSON document for the graph dump.
type GraphOutput struct {
	Boundaries []BoundaryJSON `json:"boundaries"`
	Reach      []ReachJSON    `json:"reach"`
}

// GraphJSON dumps boundaries, edges, and per-definition reach records.
// Deterministic: reach records come in layer order then sorted id order.
func GraphJSON(w io.Writer, ladder *layer.Ladder, g *graph.Graph) error {
	out := GraphOutput{
		Boundaries: make([]BoundaryJSON, 0, len(g.Boundaries)),
		Reach:      make([]ReachJSON, 0),
	}

	for i := range g.Boundaries {
		b := &g.Boundaries[i]
		out.Boundaries = append(out.Boundaries, BoundaryJSON{
			Upstream:   ladder.Layers[b.Upstream].Name,
			Downstream: ladder.Layers[b.Downstream].Name,
			Edges:      b.Edges,
		})
	}

	for layerIdx := 0; layerIdx < g.LayerCount(); layerIdx++ {
		ids := make([]string, 0)
		seen := make(map[string]bool)
		for _, def := range g.Defs(layerIdx) {
			if !seen[def.ID] {
				seen[def.ID] = true
				ids = append(ids, def.ID)
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			r := g.Reach(layerIdx, id)
			out.Reach = append(out.Reach, ReachJSON{
				ID:       id,
				Origin:   ladder.Layers[r.Origin].Name,
				Terminal: ladder.Layers[r.Terminal].Name,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// GraphPretty renders a short human summary of the trace graph.
func GraphPretty(w io.Writer, ladder *layer.Ladder, g *graph.Graph) {
	for i := range g.Boundaries {
		b := &g.Boundaries[i]
		fmt.Fprintf(w, "%s -> %s: %d edge source(s), %d unknown ref(s), %d unmapped id(s)\n",
			ladder.Layers[b.Upstream].Name, ladder.Layers[b.Downstream].Name,
			len(b.Edges), len(b.UnknownRefs), len(b.MissingUpstream))
	}
}
