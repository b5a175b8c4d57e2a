package check_test

import (
	"regexp"
	"strings"
	"testing"

	"strata/internal/check"
	"strata/internal/diag"
	"strata/internal/graph"
	"strata/internal/layer"
	"strata/internal/source"
)

func makeLayer(idx int, name, prefix string) layer.Layer {
	return layer.Layer{
		Index:    idx,
		Name:     name,
		Patterns: []*regexp.Regexp{regexp.MustCompile("^" + prefix + `-[0-9]+$`)},
	}
}

func ladder(resolution bool) *layer.Ladder {
	return &layer.Ladder{
		Layers: []layer.Layer{
			makeLayer(0, "intents", "INT"),
			makeLayer(1, "capabilities", "CAP"),
			makeLayer(2, "invariants", "INV"),
		},
		Resolution: layer.Resolution{Enabled: resolution, Separator: "::"},
	}
}

func def(id string, file source.FileID, line uint32) layer.Token {
	return layer.Token{ID: id, Raw: id, Role: layer.RoleDefinition, File: file, Line: line}
}

func annotated(id string, file source.FileID, line uint32, level string) layer.Token {
	tok := def(id, file, line)
	tok.Marker = true
	tok.Level = level
	return tok
}

func ref(id string, file source.FileID, line uint32) layer.Token {
	return layer.Token{ID: id, Raw: id, Role: layer.RoleReference, File: file, Line: line}
}

func run(ld *layer.Ladder, sets []layer.ParsedSet, opts check.Options) *diag.Bag {
	g := graph.Build(ld, sets)
	bag := diag.NewBag(16)
	check.New(ld, g, diag.BagReporter{Bag: bag}, opts).Run()
	return bag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestUnknownUpstreamReference(t *testing.T) {
	ld := ladder(false)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1)}},
		{
			Defs: []layer.Token{def("CAP-1", 1, 1)},
			Refs: []layer.Token{ref("INT-1", 1, 2), ref("INT-404", 1, 3)},
		},
		{
			Defs: []layer.Token{def("INV-1", 2, 1)},
			Refs: []layer.Token{ref("CAP-1", 2, 2)},
		},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.AdjUnknownUpstreamReference); n != 1 {
		t.Fatalf("expected one unknown reference issue, got %d", n)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.AdjUnknownUpstreamReference {
			found = true
			if !strings.Contains(d.Message, "INT-404") {
				t.Fatalf("message must name the reference, got %q", d.Message)
			}
		}
	}
	if !found {
		t.Fatal("missing unknown reference issue")
	}
}

func TestUnreferencedUpstreamInCoverageMode(t *testing.T) {
	ld := ladder(false)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1), def("INT-2", 0, 2)}},
		{
			Defs: []layer.Token{def("CAP-1", 1, 1)},
			Refs: []layer.Token{ref("INT-1", 1, 2)},
		},
		{
			Defs: []layer.Token{def("INV-1", 2, 1)},
			Refs: []layer.Token{ref("CAP-1", 2, 2)},
		},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.AdjUnmappedUpstreamID); n != 1 {
		t.Fatalf("expected one unreferenced definition issue, got %d: %v", n, bag.Items())
	}
	// last-layer definitions have no downstream boundary, INV-1 is fine
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, "INV-1") {
			t.Fatalf("last layer definitions must not be reported: %q", d.Message)
		}
	}
}

func TestUnreferencedSuppressedWhenResolutionEnabled(t *testing.T) {
	ld := ladder(true)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1), def("INT-2", 0, 2)}},
		{
			Defs: []layer.Token{def("CAP-1", 1, 1)},
			Refs: []layer.Token{ref("INT-1", 1, 2)},
		},
		{},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.AdjUnmappedUpstreamID); n != 0 {
		t.Fatalf("coverage issues must be suppressed under resolution, got %d", n)
	}
}

func TestMismatchedResolution(t *testing.T) {
	ld := ladder(true)
	// CAP-1 claims to reach the invariants layer but nothing references it
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1)}},
		{
			Defs: []layer.Token{annotated("CAP-1", 1, 1, "invariants")},
			Refs: []layer.Token{ref("INT-1", 1, 2)},
		},
		{},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.ResMismatchedResolution); n != 1 {
		t.Fatalf("expected one mismatch issue, got %d: %v", n, bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.ResMismatchedResolution {
			continue
		}
		if !strings.Contains(d.Message, "invariants") || !strings.Contains(d.Message, "capabilities") {
			t.Fatalf("message must name both the annotated and the actual layer, got %q", d.Message)
		}
	}
}

func TestAnnotatedDuplicateAfterUnmarkedDefinition(t *testing.T) {
	ld := ladder(true)
	// the first CAP-1 carries no marker; the wrong marker on the
	// duplicate must still be validated
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1)}},
		{
			Defs: []layer.Token{
				def("CAP-1", 1, 1),
				annotated("CAP-1", 1, 2, "invariants"),
			},
			Refs: []layer.Token{ref("INT-1", 1, 3)},
		},
		{},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.ResMismatchedResolution); n != 1 {
		t.Fatalf("expected one mismatch issue for the annotated duplicate, got %d: %v", n, bag.Items())
	}
}

func TestCorrectAnnotationIsSilent(t *testing.T) {
	ld := ladder(true)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{annotated("INT-1", 0, 1, "invariants")}},
		{
			Defs: []layer.Token{def("CAP-1", 1, 1)},
			Refs: []layer.Token{ref("INT-1", 1, 2)},
		},
		{
			Defs: []layer.Token{def("INV-1", 2, 1)},
			Refs: []layer.Token{ref("CAP-1", 2, 2)},
		},
	}

	bag := run(ld, sets, check.Options{})
	if bag.Len() != 0 {
		t.Fatalf("expected no issues, got %v", bag.Items())
	}
}

func TestOutOfOrderLevelSuppressesReachComparison(t *testing.T) {
	ld := ladder(true)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{def("INT-1", 0, 1)}},
		{
			Defs: []layer.Token{annotated("CAP-1", 1, 1, "intents")},
			Refs: []layer.Token{ref("INT-1", 1, 2)},
		},
		{},
	}

	bag := run(ld, sets, check.Options{})
	if n := bag.CountCode(diag.ResOutOfOrderLevel); n != 1 {
		t.Fatalf("expected one out-of-order issue, got %d: %v", n, bag.Items())
	}
	if n := bag.CountCode(diag.ResMismatchedResolution); n != 0 {
		t.Fatalf("a backward marker must not also be compared against reach, got %d", n)
	}
}

func TestPhaseOrderingDeterministic(t *testing.T) {
	ld := ladder(true)
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{annotated("INT-1", 0, 1, "capabilities")}},
		{
			Defs: []layer.Token{annotated("CAP-1", 1, 1, "intents")},
			Refs: []layer.Token{ref("INT-404", 1, 2)},
		},
		{
			Defs: []layer.Token{def("INV-1", 2, 1)},
			Refs: []layer.Token{ref("CAP-404", 2, 2)},
		},
	}

	var first []diag.Code
	for i := 0; i < 5; i++ {
		got := codes(run(ld, sets, check.Options{}))
		if first == nil {
			first = got
			continue
		}
		if len(got) != len(first) {
			t.Fatalf("issue count changed across runs: %v vs %v", first, got)
		}
		for j := range got {
			if got[j] != first[j] {
				t.Fatalf("issue order changed across runs: %v vs %v", first, got)
			}
		}
	}

	// adjacency issues for both boundaries precede every resolution issue
	want := []diag.Code{
		diag.AdjUnknownUpstreamReference, // INT-404, boundary 0
		diag.AdjUnknownUpstreamReference, // CAP-404, boundary 1
		diag.ResMismatchedResolution,     // INT-1, layer 0
		diag.ResOutOfOrderLevel,          // CAP-1, layer 1
	}
	if len(first) != len(want) {
		t.Fatalf("expected %v, got %v", want, first)
	}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, first)
		}
	}
}

func TestScopedBoundary(t *testing.T) {
	ld := ladder(true)
	boundary := 0
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{annotated("INT-1", 0, 1, "invariants")}},
		{
			Defs: []layer.Token{annotated("CAP-1", 1, 1, "invariants")},
			Refs: []layer.Token{ref("INT-404", 1, 2)},
		},
		{
			Defs: []layer.Token{def("INV-1", 2, 1)},
			Refs: []layer.Token{ref("CAP-404", 2, 2)},
		},
	}

	bag := run(ld, sets, check.Options{Boundary: &boundary})

	// only the scoped boundary's unknown reference is reported
	if n := bag.CountCode(diag.AdjUnknownUpstreamReference); n != 1 {
		t.Fatalf("expected one in-scope unknown reference, got %d: %v", n, bag.Items())
	}
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, "CAP-404") {
			t.Fatalf("out-of-scope boundary must be skipped: %q", d.Message)
		}
	}

	// INT-1's marker names a layer outside the scoped pair and cannot be
	// verified; CAP-1's marker names the downstream layer of the pair
	if n := bag.CountCode(diag.ResMismatchedResolution); n != 0 {
		t.Fatalf("expected no mismatch issues in scope, got %v", bag.Items())
	}
}

func TestScopedResolutionCheckStillRuns(t *testing.T) {
	ld := ladder(true)
	boundary := 0
	// INT-1 annotated with the downstream layer of the scoped pair, but
	// nothing references it: in scope, must be reported
	sets := []layer.ParsedSet{
		{Defs: []layer.Token{annotated("INT-1", 0, 1, "capabilities")}},
		{Defs: []layer.Token{def("CAP-1", 1, 1)}},
		{},
	}

	bag := run(ld, sets, check.Options{Boundary: &boundary})
	if n := bag.CountCode(diag.ResMismatchedResolution); n != 1 {
		t.Fatalf("expected one in-scope mismatch, got %d: %v", n, bag.Items())
	}
}
