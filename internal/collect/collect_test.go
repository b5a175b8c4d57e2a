package collect_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"strata/internal/collect"
	"strata/internal/source"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFilesMatchesGlobsPerLayer(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"req/a.md":     "REQ-1",
		"req/sub/b.md": "REQ-2",
		"des/c.md":     "DES-1",
		"notes.txt":    "ignored",
	})

	assignments, err := collect.Files(root, [][]string{
		{"req/**/*.md"},
		{"des/*.md"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := relPaths(t, root, assignments[0].Paths)
	if strings.Join(got, " ") != "req/a.md req/sub/b.md" {
		t.Fatalf("layer 0: got %v", got)
	}
	got = relPaths(t, root, assignments[1].Paths)
	if strings.Join(got, " ") != "des/c.md" {
		t.Fatalf("layer 1: got %v", got)
	}
}

func TestFilesDoubleStarSpansZeroSegments(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"req/top.md": "x"})

	assignments, err := collect.Files(root, [][]string{{"req/**/*.md"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(assignments[0].Paths) != 1 {
		t.Fatalf("** must also match zero segments, got %v", assignments[0].Paths)
	}
}

func TestFilesRejectsDuplicateAssignment(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"des/c.md": "x"})

	_, err := collect.Files(root, [][]string{
		{"**/*.md"},
		{"des/*.md"},
	})
	if err == nil {
		t.Fatal("expected duplicate assignment error")
	}
	if !strings.Contains(err.Error(), "des/c.md") {
		t.Fatalf("error must name the file, got %v", err)
	}
}

func TestFilesSkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/blob.md": "x",
		"req/a.md":     "x",
	})

	assignments, err := collect.Files(root, [][]string{{"**/*.md"}})
	if err != nil {
		t.Fatal(err)
	}
	got := relPaths(t, root, assignments[0].Paths)
	if strings.Join(got, " ") != "req/a.md" {
		t.Fatalf("expected .git to be skipped, got %v", got)
	}
}

func TestLoadDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"req/b.md": "REQ-2",
		"req/a.md": "REQ-1",
		"des/c.md": "DES-1",
	})

	assignments, err := collect.Files(root, [][]string{
		{"req/*.md"},
		{"des/*.md"},
	})
	if err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSetWithBase(root)
	ids, err := collect.Load(fs, assignments)
	if err != nil {
		t.Fatal(err)
	}

	if len(ids[0]) != 2 || len(ids[1]) != 1 {
		t.Fatalf("unexpected id layout: %v", ids)
	}
	// layer order, then sorted path order
	if ids[0][0] != 0 || ids[0][1] != 1 || ids[1][0] != 2 {
		t.Fatalf("insertion order must be deterministic, got %v", ids)
	}
	if string(fs.Get(ids[0][0]).Content) != "REQ-1" {
		t.Fatalf("expected req/a.md first, got %q", fs.Get(ids[0][0]).Content)
	}
}

func TestLoadFailsOnUnreadableFile(t *testing.T) {
	fs := source.NewFileSet()
	_, err := collect.Load(fs, []collect.Assignment{{Layer: 0, Paths: []string{filepath.Join(t.TempDir(), "missing.md")}}})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
