package layer

import (
	"strata/internal/source"
)

// Role classifies a token occurrence.
type Role uint8

const (
	// RoleDefinition establishes a concept at its own layer.
	RoleDefinition Role = iota
	// RoleReference acknowledges an upstream concept (quoted or grouped).
	RoleReference
)

func (r Role) String() string {
	switch r {
	case RoleDefinition:
		return "definition"
	case RoleReference:
		return "reference"
	}
	return "unknown"
}

// Token is one recognized id occurrence. Span exactly delimits the
// literal source slice (id plus any marker suffix): untouched it must
// round-trip, edited it is replaced verbatim.
type Token struct {
	ID     string // normalized id, marker suffix stripped
	Raw    string // literal source text covered by Span
	Level  string // resolved marker level (canonical layer name), "" if none
	Marker bool   // a marker suffix was present, resolved or not
	Role   Role
	File   source.FileID
	Line   uint32 // 1-based line of the token start
	Span   source.Span
}

// ParsedSet holds one layer's tokens in file order, then scan order
// within each file.
type ParsedSet struct {
	Defs []Token
	Refs []Token
}

// Append merges another parsed set (one file's worth) preserving order.
func (ps *ParsedSet) Append(other ParsedSet) {
	ps.Defs = append(ps.Defs, other.Defs...)
	ps.Refs = append(ps.Refs, other.Refs...)
}
