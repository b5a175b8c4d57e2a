package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
[[layers]]
name = "req"
patterns = ["REQ-[0-9]+"]
files = ["req/**/*.md"]

[[layers]]
name = "des"
patterns = ["DES-[0-9]+"]
files = ["des/**/*.md"]
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Grouping.Start != "[" || cfg.Grouping.End != "]" || cfg.Grouping.Separator != "," {
		t.Fatalf("unexpected grouping defaults: %+v", cfg.Grouping)
	}
	if cfg.Grouping.Quotes != "`" {
		t.Fatalf("expected backtick quote default, got %q", cfg.Grouping.Quotes)
	}
	if cfg.Resolution.Enabled {
		t.Fatal("resolution defaults to disabled")
	}
	if cfg.Resolution.Separator != "" {
		t.Fatalf("no separator default while resolution is disabled, got %q", cfg.Resolution.Separator)
	}
}

func TestLoadResolutionSeparatorDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[resolution]
enabled = true
`+minimalConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Resolution.Separator != "::" {
		t.Fatalf("expected :: default, got %q", cfg.Resolution.Separator)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no layers", `[grouping]`, "no layers"},
		{
			"multichar delimiter",
			"[grouping]\nstart = \"[[\"\n" + minimalConfig,
			"single character",
		},
		{
			"identical delimiters",
			"[grouping]\nstart = \"|\"\nend = \"|\"\n" + minimalConfig,
			"must differ",
		},
		{
			"id char delimiter",
			"[grouping]\nseparator = \"a\"\n" + minimalConfig,
			"collides",
		},
		{
			"id char in resolution separator",
			"[resolution]\nenabled = true\nseparator = \"x\"\n" + minimalConfig,
			"collides",
		},
		{
			"duplicate layer",
			minimalConfig + "\n[[layers]]\nname = \"req\"\npatterns = [\"R-[0-9]+\"]\n",
			"duplicate",
		},
		{
			"empty patterns",
			"[[layers]]\nname = \"req\"\npatterns = []\n",
			"patterns",
		},
		{
			"bad pattern",
			"[[layers]]\nname = \"req\"\npatterns = [\"REQ-[\"]\n",
			"invalid pattern",
		},
		{
			"alias to unknown layer",
			"[resolution]\nenabled = true\naliases = { r = \"nowhere\" }\n" + minimalConfig,
			"unknown layer",
		},
		{
			"alias shadows layer",
			"[resolution]\nenabled = true\naliases = { des = \"req\" }\n" + minimalConfig,
			"shadows",
		},
	}

	for _, tc := range cases {
		path := writeConfig(t, t.TempDir(), tc.content)
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestLadderAnchorsPatterns(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	ld, err := cfg.Ladder()
	if err != nil {
		t.Fatal(err)
	}

	req := &ld.Layers[0]
	if !req.Match("REQ-12") {
		t.Fatal("expected REQ-12 to match")
	}
	// substring matches must not count: patterns are anchored
	if req.Match("XREQ-12") || req.Match("REQ-12X") {
		t.Fatal("pattern must be anchored")
	}
}

func TestFindConfigWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, minimalConfig)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected to find the manifest")
	}
	if filepath.Dir(path) != root {
		t.Fatalf("expected manifest in %s, got %s", root, path)
	}
}

func TestLoadFromSetsDir(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, minimalConfig)

	cfg, err := LoadFrom(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != root {
		t.Fatalf("expected Dir %s, got %s", root, cfg.Dir)
	}
}
