// Package graph builds the trace graph: per-boundary reference edges
// between adjacent layers and the memoized transitive-reach map derived
// from them. Built once per run from the complete parsed token sets.
package graph

import (
	"fmt"
	"sort"

	"strata/internal/layer"
)

// NodeID keys a definition inside the graph.
type NodeID struct {
	Layer int
	ID    string
}

// ReachRecord states how far downstream a definition's meaning
// propagates. Invariant: Origin <= Terminal < layer count.
type ReachRecord struct {
	Origin   int
	Terminal int
}

// Boundary holds the facts for one adjacent layer pair k -> k+1.
type Boundary struct {
	Upstream   int
	Downstream int

	// Edges maps an upstream definition id to the downstream definition
	// ids whose enclosing definition references it. Target lists are
	// sorted and deduplicated.
	Edges map[string][]string

	// UnknownRefs are downstream reference tokens that match the
	// upstream layer's patterns but resolve to no upstream definition.
	// One entry per occurrence, in scan order.
	UnknownRefs []layer.Token

	// MissingUpstream are upstream definition tokens (first occurrence
	// per id) that no downstream reference points at.
	MissingUpstream []layer.Token
}

// Graph is the immutable result of Build plus the reach memo.
type Graph struct {
	ladder     *layer.Ladder
	sets       []layer.ParsedSet
	Boundaries []Boundary

	reach map[NodeID]int
}

// Build constructs boundaries and edges from all layers' parsed sets,
// given in layer order. len(sets) must equal len(ladder.Layers).
func Build(ladder *layer.Ladder, sets []layer.ParsedSet) *Graph {
	g := &Graph{
		ladder: ladder,
		sets:   sets,
		reach:  make(map[NodeID]int),
	}
	if len(sets) < 2 {
		return g
	}

	g.Boundaries = make([]Boundary, 0, len(sets)-1)
	for k := 1; k < len(sets); k++ {
		g.Boundaries = append(g.Boundaries, g.buildBoundary(k-1, k))
	}
	return g
}

func (g *Graph) buildBoundary(up, down int) Boundary {
	b := Boundary{
		Upstream:   up,
		Downstream: down,
		Edges:      make(map[string][]string),
	}

	defined := make(map[string]bool)
	for _, def := range g.sets[up].Defs {
		defined[def.ID] = true
	}

	enclose := newEncloser(g.sets[down].Defs)

	referenced := make(map[string]bool)
	upLayer := &g.ladder.Layers[up]
	for _, ref := range g.sets[down].Refs {
		// guard against accidental same-layer-pattern matches: only
		// references shaped like the upstream layer's ids participate
		if !upLayer.Match(ref.ID) {
			continue
		}
		if !defined[ref.ID] {
			b.UnknownRefs = append(b.UnknownRefs, ref)
			continue
		}
		referenced[ref.ID] = true
		b.Edges[ref.ID] = append(b.Edges[ref.ID], enclose.definitionFor(ref))
	}

	for id, targets := range b.Edges {
		sort.Strings(targets)
		b.Edges[id] = dedupSorted(targets)
	}

	seen := make(map[string]bool)
	for _, def := range g.sets[up].Defs {
		if seen[def.ID] {
			continue
		}
		seen[def.ID] = true
		if !referenced[def.ID] {
			b.MissingUpstream = append(b.MissingUpstream, def)
		}
	}

	return b
}

// Defs returns the parsed definitions of one layer in production order.
func (g *Graph) Defs(layerIdx int) []layer.Token {
	return g.sets[layerIdx].Defs
}

// LayerCount returns the number of layers the graph spans.
func (g *Graph) LayerCount() int {
	return len(g.sets)
}

// Reach computes how far downstream a definition's meaning propagates:
// its own layer when it has no outgoing edges, otherwise the maximum
// reach across all edge targets one layer down. Memoized; implemented
// with an explicit work stack so layer-chain length never grows the call
// stack.
func (g *Graph) Reach(layerIdx int, id string) ReachRecord {
	return ReachRecord{Origin: layerIdx, Terminal: g.terminal(NodeID{Layer: layerIdx, ID: id})}
}

type frame struct {
	node    NodeID
	targets []string
	next    int
	best    int
}

func (g *Graph) terminal(start NodeID) int {
	if t, ok := g.reach[start]; ok {
		return t
	}

	stack := []frame{g.newFrame(start)}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if f.next < len(f.targets) {
			child := NodeID{Layer: f.node.Layer + 1, ID: f.targets[f.next]}
			f.next++
			if t, ok := g.reach[child]; ok {
				if t > f.best {
					f.best = t
				}
				continue
			}
			stack = append(stack, g.newFrame(child))
			continue
		}

		g.reach[f.node] = f.best
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			if f.best > parent.best {
				parent.best = f.best
			}
		}
	}
	return g.reach[start]
}

func (g *Graph) newFrame(n NodeID) frame {
	return frame{node: n, targets: g.outgoing(n), best: n.Layer}
}

// outgoing returns the edge targets from node n across the boundary
// n.Layer -> n.Layer+1, empty at the last layer.
func (g *Graph) outgoing(n NodeID) []string {
	if n.Layer < 0 || n.Layer >= len(g.Boundaries) {
		return nil
	}
	return g.Boundaries[n.Layer].Edges[n.ID]
}

func dedupSorted(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && sorted[i-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

// encloser attributes a reference to the latest definition token in the
// same file at or before the reference's line.
type encloser struct {
	byFile map[uint32][]layer.Token // defs per file, in scan order
}

func newEncloser(defs []layer.Token) *encloser {
	e := &encloser{byFile: make(map[uint32][]layer.Token)}
	for _, def := range defs {
		e.byFile[uint32(def.File)] = append(e.byFile[uint32(def.File)], def)
	}
	return e
}

// definitionFor returns the enclosing definition id for ref, or a
// synthetic per-location node when no definition precedes it. Synthetic
// ids start with a NUL byte so they can never collide with a scanned id.
func (e *encloser) definitionFor(ref layer.Token) string {
	defs := e.byFile[uint32(ref.File)]
	idx := sort.Search(len(defs), func(i int) bool {
		return defs[i].Line > ref.Line
	})
	if idx == 0 {
		return SyntheticNode(ref)
	}
	return defs[idx-1].ID
}

// SyntheticNode names the per-location node for a reference with no
// enclosing definition.
func SyntheticNode(ref layer.Token) string {
	return fmt.Sprintf("\x00%d:%d", ref.File, ref.Line)
}
