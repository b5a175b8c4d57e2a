// Package layer holds the domain model for the ordered spec ladder:
// layers with their anchored id patterns, grouping and resolution
// settings, and the tokens the scanner produces over them.
package layer

import (
	"regexp"
)

// Layer is one stage of the ladder, ordered by Index.
type Layer struct {
	Index    int
	Name     string
	Patterns []*regexp.Regexp // anchored id-shape patterns
}

// Match reports whether id matches any of the layer's patterns.
func (l *Layer) Match(id string) bool {
	for _, p := range l.Patterns {
		if p.MatchString(id) {
			return true
		}
	}
	return false
}

// Grouping describes the delimited reference span syntax.
type Grouping struct {
	Start       byte   // grouping open delimiter, e.g. '['
	End         byte   // grouping close delimiter, e.g. ']'
	Separator   byte   // token separator inside and outside groupings, e.g. ','
	Passthrough string // optional reference prefix stripped before matching, e.g. "@"
	Quotes      string // quote characters toggling reference context, e.g. "`"
}

// IsQuote reports whether b is one of the configured quote characters.
func (g Grouping) IsQuote(b byte) bool {
	for i := 0; i < len(g.Quotes); i++ {
		if g.Quotes[i] == b {
			return true
		}
	}
	return false
}

// Resolution configures the optional resolution-marker syntax.
type Resolution struct {
	Enabled   bool
	Separator string            // marker separator, e.g. "::"
	Aliases   map[string]string // alias -> layer name
}

// Ladder is the fully resolved run configuration: ordered layers plus
// the shared grouping and resolution settings.
type Ladder struct {
	Layers     []Layer
	Grouping   Grouping
	Resolution Resolution
}

// LayerIndex returns the index of the layer with the given name.
func (ld *Ladder) LayerIndex(name string) (int, bool) {
	for i := range ld.Layers {
		if ld.Layers[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// LevelIndex resolves a marker level to a layer index: exact layer name
// first, then alias lookup.
func (ld *Ladder) LevelIndex(level string) (int, bool) {
	if idx, ok := ld.LayerIndex(level); ok {
		return idx, true
	}
	if ld.Resolution.Aliases != nil {
		if name, ok := ld.Resolution.Aliases[level]; ok {
			return ld.LayerIndex(name)
		}
	}
	return 0, false
}
