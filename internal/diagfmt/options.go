// Package diagfmt renders diagnostics, resolution edits, and the trace
// graph for humans and machines. Ordering and truncation decisions live
// here, never in the engine.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses a short form automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color    bool
	Context  bool // include the 3-line context snippet
	PathMode PathMode
	Max      int // cap on rendered diagnostics, 0 = unlimited
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	IncludePositions bool // add line/col next to byte offsets
	IncludeContext   bool
	PathMode         PathMode
	Max              int // cap on rendered diagnostics, 0 = unlimited
}
