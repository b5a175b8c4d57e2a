// Package project loads and validates strata.toml: the ordered layer
// ladder, grouping delimiters, resolution settings, and per-layer file
// globs.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"strata/internal/layer"
)

// ConfigName is the manifest file name searched for upward from the
// working directory.
const ConfigName = "strata.toml"

// LayerConfig is one [[layers]] entry.
type LayerConfig struct {
	Name     string   `toml:"name"`
	Patterns []string `toml:"patterns"`
	Files    []string `toml:"files"`
}

// GroupingConfig is the [grouping] section.
type GroupingConfig struct {
	Start       string `toml:"start"`
	End         string `toml:"end"`
	Separator   string `toml:"separator"`
	Passthrough string `toml:"passthrough"`
	Quotes      string `toml:"quotes"`
}

// ResolutionConfig is the [resolution] section.
type ResolutionConfig struct {
	Enabled   bool              `toml:"enabled"`
	Separator string            `toml:"separator"`
	Aliases   map[string]string `toml:"aliases"`
}

// Config is the decoded manifest.
type Config struct {
	Grouping   GroupingConfig   `toml:"grouping"`
	Resolution ResolutionConfig `toml:"resolution"`
	Layers     []LayerConfig    `toml:"layers"`

	// Dir is the directory the manifest was loaded from; file globs are
	// resolved relative to it.
	Dir string `toml:"-"`
}

// ErrNoLayers indicates a manifest without a single layers entry.
var ErrNoLayers = errors.New("strata.toml declares no layers")

// Load parses and validates a manifest file.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	applyDefaults(&cfg, meta)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, meta toml.MetaData) {
	if !meta.IsDefined("grouping", "start") {
		cfg.Grouping.Start = "["
	}
	if !meta.IsDefined("grouping", "end") {
		cfg.Grouping.End = "]"
	}
	if !meta.IsDefined("grouping", "separator") {
		cfg.Grouping.Separator = ","
	}
	if !meta.IsDefined("grouping", "quotes") {
		cfg.Grouping.Quotes = "`"
	}
	if cfg.Resolution.Enabled && !meta.IsDefined("resolution", "separator") {
		cfg.Resolution.Separator = "::"
	}
}

func validate(cfg *Config) error {
	if len(cfg.Layers) == 0 {
		return ErrNoLayers
	}

	g := cfg.Grouping
	for name, v := range map[string]string{
		"grouping.start":     g.Start,
		"grouping.end":       g.End,
		"grouping.separator": g.Separator,
	} {
		if len(v) != 1 {
			return fmt.Errorf("%s must be a single character, got %q", name, v)
		}
	}
	if g.Start == g.End {
		return fmt.Errorf("grouping.start and grouping.end must differ")
	}
	delims := g.Start + g.End + g.Separator + g.Quotes
	for i := 0; i < len(delims); i++ {
		if isIDChar(delims[i]) {
			return fmt.Errorf("delimiter %q collides with identifier characters", string(delims[i]))
		}
	}

	if cfg.Resolution.Enabled {
		if cfg.Resolution.Separator == "" {
			return errors.New("resolution.separator must not be empty")
		}
		for i := 0; i < len(cfg.Resolution.Separator); i++ {
			if isIDChar(cfg.Resolution.Separator[i]) {
				return fmt.Errorf("resolution.separator %q collides with identifier characters", cfg.Resolution.Separator)
			}
		}
	}

	names := make(map[string]bool, len(cfg.Layers))
	for i, lc := range cfg.Layers {
		if strings.TrimSpace(lc.Name) == "" {
			return fmt.Errorf("layers[%d]: name must not be empty", i)
		}
		if names[lc.Name] {
			return fmt.Errorf("duplicate layer name %q", lc.Name)
		}
		names[lc.Name] = true
		if len(lc.Patterns) == 0 {
			return fmt.Errorf("layer %q: patterns must not be empty", lc.Name)
		}
		for _, p := range lc.Patterns {
			if _, err := regexp.Compile(anchor(p)); err != nil {
				return fmt.Errorf("layer %q: invalid pattern %q: %w", lc.Name, p, err)
			}
		}
	}

	for alias, target := range cfg.Resolution.Aliases {
		if !names[target] {
			return fmt.Errorf("resolution alias %q points at unknown layer %q", alias, target)
		}
		if names[alias] {
			return fmt.Errorf("resolution alias %q shadows a layer name", alias)
		}
	}

	return nil
}

// Ladder converts the validated config into the run model.
func (cfg *Config) Ladder() (*layer.Ladder, error) {
	ld := &layer.Ladder{
		Grouping: layer.Grouping{
			Start:       cfg.Grouping.Start[0],
			End:         cfg.Grouping.End[0],
			Separator:   cfg.Grouping.Separator[0],
			Passthrough: cfg.Grouping.Passthrough,
			Quotes:      cfg.Grouping.Quotes,
		},
		Resolution: layer.Resolution{
			Enabled:   cfg.Resolution.Enabled,
			Separator: cfg.Resolution.Separator,
			Aliases:   cfg.Resolution.Aliases,
		},
	}

	for i, lc := range cfg.Layers {
		patterns := make([]*regexp.Regexp, 0, len(lc.Patterns))
		for _, p := range lc.Patterns {
			re, err := regexp.Compile(anchor(p))
			if err != nil {
				return nil, fmt.Errorf("layer %q: invalid pattern %q: %w", lc.Name, p, err)
			}
			patterns = append(patterns, re)
		}
		ld.Layers = append(ld.Layers, layer.Layer{
			Index:    i,
			Name:     lc.Name,
			Patterns: patterns,
		})
	}
	return ld, nil
}

// anchor wraps a pattern in ^...$ unless it is already anchored.
func anchor(p string) string {
	if !strings.HasPrefix(p, "^") {
		p = "^" + p
	}
	if !strings.HasSuffix(p, "$") {
		p += "$"
	}
	return p
}

func isIDChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_':
		return true
	}
	return false
}
