// Package resolve computes and applies resolution-marker edits: "set"
// annotates unmarked definitions with their computed terminal layer,
// "fix" corrects markers that disagree with it. Edits are exact
// byte-range replacements of definition tokens.
package resolve

import (
	"errors"
	"fmt"

	"strata/internal/diag"
	"strata/internal/graph"
	"strata/internal/layer"
	"strata/internal/source"
)

// Mode selects which edits to compute. Set and Fix may run together.
type Mode struct {
	Set bool
	Fix bool
}

// Edit is one proposed replacement. Span is exactly the recorded token
// range; OldText is the literal slice it must still match at apply time.
type Edit struct {
	File    source.FileID
	Span    source.Span
	Line    uint32
	OldText string
	NewText string
}

// ErrNoEdits is returned by Apply when there is nothing to do.
var ErrNoEdits = errors.New("no resolution edits to apply")

// Precondition gates writing: an untrustworthy analysis must not touch
// files. Returns a fatal error, no partial work is attempted.
func Precondition(ladder *layer.Ladder, bag *diag.Bag, mode Mode) error {
	if !ladder.Resolution.Enabled {
		return errors.New("resolution is not enabled for this run")
	}
	if !mode.Set && !mode.Fix {
		return errors.New("no resolution mode selected")
	}
	if n := bag.CountCode(diag.ScanMalformedGrouping); n > 0 {
		return fmt.Errorf("refusing to edit: %d malformed grouping issue(s)", n)
	}
	if n := bag.CountCode(diag.ScanBadIdToken); n > 0 {
		return fmt.Errorf("refusing to edit: %d malformed identifier issue(s)", n)
	}
	if mode.Fix {
		if n := bag.CountCode(diag.ScanUnknownResolutionLevel); n > 0 {
			return fmt.Errorf("refusing to fix markers: %d unknown resolution level issue(s)", n)
		}
	}
	return nil
}

// Compute proposes edits over all definitions across all layers, at most
// one per definition token, in layer order then token order.
func Compute(ladder *layer.Ladder, g *graph.Graph, mode Mode) []Edit {
	sep := ladder.Resolution.Separator
	edits := make([]Edit, 0)

	for layerIdx := 0; layerIdx < g.LayerCount(); layerIdx++ {
		for _, def := range g.Defs(layerIdx) {
			terminal := ladder.Layers[g.Reach(layerIdx, def.ID).Terminal].Name

			switch {
			case mode.Set && !def.Marker:
				edits = append(edits, Edit{
					File:    def.File,
					Span:    def.Span,
					Line:    def.Line,
					OldText: def.Raw,
					NewText: def.Raw + sep + terminal,
				})
			case mode.Fix && def.Marker && def.Level != "" && def.Level != terminal:
				edits = append(edits, Edit{
					File:    def.File,
					Span:    def.Span,
					Line:    def.Line,
					OldText: def.Raw,
					NewText: def.ID + sep + terminal,
				})
			}
		}
	}
	return edits
}
