package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"strata/internal/diag"
	"strata/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	lineColor = color.New(color.FgHiBlack)
)

// Pretty renders diagnostics in bag order, one block per diagnostic:
// a path:line:col header followed by the previous/offending/next source
// lines with a width-aware underline beneath the span.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	shown := len(items)
	if opts.Max > 0 && shown > opts.Max {
		shown = opts.Max
	}

	for i := 0; i < shown; i++ {
		d := items[i]
		start, _ := fs.Resolve(d.Primary)
		path := formatPath(fs, d.Primary.File, opts.PathMode)

		fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n",
			path, start.Line, start.Col,
			severityLabel(d.Severity, opts.Color), d.Code.ID(), d.Message)

		if opts.Context {
			writeContext(w, fs, d.Primary, opts.Color)
		}
		for _, note := range d.Notes {
			ns, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n",
				formatPath(fs, note.Span.File, opts.PathMode), ns.Line, ns.Col, note.Msg)
		}
	}

	if rest := len(items) - shown; rest > 0 {
		fmt.Fprintf(w, "... and %d more issue(s)\n", rest)
	}
}

// ContextLines returns the verbatim previous/offending/next lines for a
// span, omitting neighbours at file boundaries.
func ContextLines(fs *source.FileSet, span source.Span) []string {
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)

	lines := make([]string, 0, 3)
	if start.Line > 1 {
		lines = append(lines, f.GetLine(start.Line-1))
	}
	lines = append(lines, f.GetLine(start.Line))
	if start.Line < f.LineCount() {
		lines = append(lines, f.GetLine(start.Line+1))
	}
	return lines
}

func writeContext(w io.Writer, fs *source.FileSet, span source.Span, colored bool) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)

	writeLine := func(num uint32, marked bool) {
		text := f.GetLine(num)
		prefix := " "
		if marked {
			prefix = ">"
		}
		gutter := fmt.Sprintf("%s %4d | ", prefix, num)
		if colored {
			gutter = lineColor.Sprint(gutter)
		}
		fmt.Fprintf(w, "%s%s\n", gutter, text)
	}

	if start.Line > 1 {
		writeLine(start.Line-1, false)
	}
	writeLine(start.Line, true)

	// underline the span portion that sits on the offending line
	text := f.GetLine(start.Line)
	fromCol := int(start.Col)
	toCol := len(text) + 1
	if end.Line == start.Line && int(end.Col) <= toCol {
		toCol = int(end.Col)
	}
	if fromCol <= len(text) && toCol > fromCol {
		pad := runewidth.StringWidth(text[:fromCol-1])
		width := runewidth.StringWidth(text[fromCol-1 : toCol-1])
		if width < 1 {
			width = 1
		}
		underline := "^" + strings.Repeat("~", width-1)
		if colored {
			underline = errColor.Sprint(underline)
		}
		fmt.Fprintf(w, "  %4s | %s%s\n", "", strings.Repeat(" ", pad), underline)
	}

	if start.Line < f.LineCount() {
		writeLine(start.Line+1, false)
	}
}

func severityLabel(sev diag.Severity, colored bool) string {
	s := sev.String()
	if !colored {
		return s
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(s)
	case diag.SevWarning:
		return warnColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
