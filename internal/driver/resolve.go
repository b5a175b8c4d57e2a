package driver

import (
	"strata/internal/resolve"
	"strata/internal/trace"
)

// ResolveResult carries computed edits and, unless dry-run, the files
// written.
type ResolveResult struct {
	Edits   []resolve.Edit
	Changes []resolve.FileChange
}

// Resolve computes resolution-marker edits from a completed run and,
// unless dryRun, applies them. Preconditions gate any work: a run with
// structural scan issues must not be edited.
func Resolve(res *Result, mode resolve.Mode, dryRun bool, tracer trace.Tracer) (*ResolveResult, error) {
	if err := resolve.Precondition(res.Ladder, res.Bag, mode); err != nil {
		return nil, err
	}

	endCompute := trace.Span(tracer, trace.ScopePhase, "resolve:compute")
	edits := resolve.Compute(res.Ladder, res.Graph, mode)
	endCompute("")

	out := &ResolveResult{Edits: edits}
	if dryRun || len(edits) == 0 {
		return out, nil
	}

	endApply := trace.Span(tracer, trace.ScopePhase, "resolve:apply")
	changes, err := resolve.Apply(res.FileSet, edits)
	endApply("")
	if err != nil {
		return out, err
	}
	out.Changes = changes
	return out, nil
}
