package diag

import (
	"fmt"
	"strings"

	"strata/internal/source"
)

// FormatShortDiagnostics renders diagnostics one per line in a stable
// textual form, suitable for golden comparisons in tests and for CLI
// short output. The input order is preserved.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		start, _ := fs.Resolve(d.Primary)
		path := fs.Get(d.Primary.File).FormatPath("relative", fs.BaseDir())
		fmt.Fprintf(&sb, "%s:%d:%d: %s [%s] %s",
			path, start.Line, start.Col, d.Severity, d.Code.ID(), d.Message)
	}
	return sb.String()
}
