package trace_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"strata/internal/trace"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]trace.Level{
		"off":    trace.LevelOff,
		"phase":  trace.LevelPhase,
		"detail": trace.LevelDetail,
	}
	for in, want := range cases {
		got, err := trace.ParseLevel(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: expected %v, got %v", in, want, got)
		}
	}
	if _, err := trace.ParseLevel("bogus"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelPhase, trace.FormatText)

	trace.Point(tr, trace.ScopePhase, "scan", "")
	trace.Point(tr, trace.ScopeFile, "scan:file.md", "")

	out := buf.String()
	if !strings.Contains(out, "scan") {
		t.Fatalf("phase event must pass the filter: %q", out)
	}
	if strings.Contains(out, "file.md") {
		t.Fatalf("file events must be filtered at phase level: %q", out)
	}
}

func TestSpanEmitsBeginAndEnd(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatText)

	end := trace.Span(tr, trace.ScopeRun, "run")
	end("3 files")

	out := buf.String()
	if !strings.Contains(out, "begin") || !strings.Contains(out, "end") {
		t.Fatalf("expected begin and end events, got %q", out)
	}
	if !strings.Contains(out, "3 files") {
		t.Fatalf("end detail lost: %q", out)
	}
}

func TestNDJSONEventsAreValidJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatNDJSON)

	trace.Point(tr, trace.ScopePhase, "graph", "2 boundaries")

	line := strings.TrimSpace(buf.String())
	var ev map[string]any
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("invalid ndjson %q: %v", line, err)
	}
	if ev["name"] != "graph" {
		t.Fatalf("expected name graph, got %v", ev["name"])
	}
}

func TestNopTracerIsInert(t *testing.T) {
	tr := trace.Nop()
	if tr.Enabled() {
		t.Fatal("nop tracer must be disabled")
	}
	trace.Point(tr, trace.ScopeRun, "x", "")
	end := trace.Span(tr, trace.ScopeRun, "y")
	end("")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}
