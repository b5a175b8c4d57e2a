package diag

import (
	"fmt"
)

// Code identifies one diagnostic rule. Numeric ranges group codes by the
// phase that produces them:
//
//	1xxx scan      (tokenizer/parser, emitted during the parse pass)
//	2xxx adjacency (per-boundary checks against the trace graph)
//	3xxx resolution (marker checks against computed reach)
//	4xxx io        (environment problems surfaced as diagnostics)
type Code uint16

const (
	UnknownCode Code = 0

	// Scan: structural issues found while tokenizing one file.
	ScanInfo Code = 1000
	// ScanMalformedGrouping: unclosed or unmatched grouping delimiter,
	// or a grouping that splits into zero tokens.
	ScanMalformedGrouping Code = 1001
	// ScanBadIdToken: a candidate matched its role's pattern set but
	// fails the global id-shape rule.
	ScanBadIdToken Code = 1002
	// ScanUnknownResolutionLevel: a marker names a level that is neither
	// a layer name nor an alias.
	ScanUnknownResolutionLevel Code = 1010
	// ScanResolutionOnNonDefinition: a marker on a token in a
	// structurally reference-producing position (quote or grouping).
	// Suppresses ScanUnknownResolutionLevel for the same token.
	ScanResolutionOnNonDefinition Code = 1011

	// Adjacency: boundary k-1 -> k checks.
	AdjInfo Code = 2000
	// AdjUnknownUpstreamReference: downstream reference with no matching
	// upstream definition.
	AdjUnknownUpstreamReference Code = 2001
	// AdjUnmappedUpstreamID: upstream definition never referenced
	// downstream. Coverage mode only (suppressed when resolution is on).
	AdjUnmappedUpstreamID Code = 2002

	// Resolution: marker vs. computed transitive reach.
	ResInfo Code = 3000
	// ResOutOfOrderLevel: the annotated layer is at or before the
	// definition's own layer.
	ResOutOfOrderLevel Code = 3001
	// ResMismatchedResolution: the annotated layer differs from the
	// computed terminal layer.
	ResMismatchedResolution Code = 3002

	// IO range is reserved for collaborators that fold environment
	// failures into the diagnostic stream.
	IOInfo Code = 4000
	// IOUnreadableFile: a configured file could not be read.
	IOUnreadableFile Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:                   "unknown diagnostic",
	ScanInfo:                      "scan note",
	ScanMalformedGrouping:         "malformed grouping",
	ScanBadIdToken:                "malformed identifier token",
	ScanUnknownResolutionLevel:    "unknown resolution level",
	ScanResolutionOnNonDefinition: "resolution marker on non-definition",
	AdjInfo:                       "adjacency note",
	AdjUnknownUpstreamReference:   "unknown upstream reference",
	AdjUnmappedUpstreamID:         "unmapped upstream id",
	ResInfo:                       "resolution note",
	ResOutOfOrderLevel:            "out-of-order resolution level",
	ResMismatchedResolution:       "mismatched resolution level",
	IOInfo:                        "io note",
	IOUnreadableFile:              "unreadable file",
}

// ID returns the stable textual id (for example "TRC1001") used in
// human and JSON output.
func (c Code) ID() string {
	return fmt.Sprintf("TRC%04d", uint16(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
