package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"strata/internal/resolve"
	"strata/internal/source"
)

// EditsPretty renders proposed resolution edits, one line each:
// path:line: old -> new.
func EditsPretty(w io.Writer, edits []resolve.Edit, fs *source.FileSet, opts PrettyOpts) {
	for _, e := range edits {
		fmt.Fprintf(w, "%s:%d: %q -> %q\n",
			formatPath(fs, e.File, opts.PathMode), e.Line, e.OldText, e.NewText)
	}
	fmt.Fprintf(w, "%d edit(s)\n", len(edits))
}

// EditJSON is one proposed edit in JSON output.
type EditJSON struct {
	File    string `json:"file"`
	Line    uint32 `json:"line"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

// EditsOutput is the root JSON document for resolve --dry-run.
type EditsOutput struct {
	Edits []EditJSON `json:"edits"`
	Count int        `json:"count"`
}

// EditsJSON renders proposed resolution edits as one JSON document.
func EditsJSON(w io.Writer, edits []resolve.Edit, fs *source.FileSet, opts JSONOpts) error {
	out := EditsOutput{Edits: make([]EditJSON, 0, len(edits)), Count: len(edits)}
	for _, e := range edits {
		out.Edits = append(out.Edits, EditJSON{
			File:    formatPath(fs, e.File, opts.PathMode),
			Line:    e.Line,
			OldText: e.OldText,
			NewText: e.NewText,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
