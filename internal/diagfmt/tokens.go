package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"strata/internal/layer"
	"strata/internal/source"
)

// TokensPretty writes one line per token in source order: position,
// role, id and any resolution marker.
func TokensPretty(w io.Writer, set layer.ParsedSet, fs *source.FileSet) {
	write := func(toks []layer.Token) {
		for _, tok := range toks {
			path := formatPath(fs, tok.File, PathModeAuto)
			fmt.Fprintf(w, "%s:%d: %-10s %s", path, tok.Line, tok.Role, tok.ID)
			if tok.Marker {
				fmt.Fprintf(w, " -> %s", tok.Level)
			}
			fmt.Fprintln(w)
		}
	}
	write(set.Defs)
	write(set.Refs)
}

// TokenJSON mirrors layer.Token for machine output.
type TokenJSON struct {
	ID     string `json:"id"`
	Raw    string `json:"raw,omitempty"`
	Role   string `json:"role"`
	Level  string `json:"level,omitempty"`
	Marker bool   `json:"marker,omitempty"`
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Start  uint32 `json:"start"`
	End    uint32 `json:"end"`
}

// TokensOutput is the top-level JSON document for a token dump.
type TokensOutput struct {
	Definitions []TokenJSON `json:"definitions"`
	References  []TokenJSON `json:"references"`
}

// TokensJSON writes the token dump as indented JSON.
func TokensJSON(w io.Writer, set layer.ParsedSet, fs *source.FileSet) error {
	conv := func(toks []layer.Token) []TokenJSON {
		out := make([]TokenJSON, 0, len(toks))
		for _, tok := range toks {
			out = append(out, TokenJSON{
				ID:     tok.ID,
				Raw:    tok.Raw,
				Role:   tok.Role.String(),
				Level:  tok.Level,
				Marker: tok.Marker,
				File:   formatPath(fs, tok.File, PathModeRelative),
				Line:   tok.Line,
				Start:  tok.Span.Start,
				End:    tok.Span.End,
			})
		}
		return out
	}
	doc := TokensOutput{Definitions: conv(set.Defs), References: conv(set.Refs)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
