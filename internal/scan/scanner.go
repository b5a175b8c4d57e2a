// Package scan turns one layer file's text into definition and reference
// tokens plus structural issues. The scanner is total: any byte sequence
// produces a result, never an error.
package scan

import (
	"fmt"
	"strings"

	"strata/internal/diag"
	"strata/internal/layer"
	"strata/internal/source"
)

// Scanner walks one file with three states: default text, inside a
// quote, and inside a grouping. Identifier-like runs are buffered and
// classified at flush time; quoting and grouping decide the role.
type Scanner struct {
	file   *source.File
	cursor Cursor
	opts   Options

	own    *layer.Layer  // definition candidates match this layer's patterns
	prev   *layer.Layer  // reference candidates match the upstream layer's patterns; nil at the first layer
	ladder *layer.Ladder

	line uint32 // 1-based line of the cursor

	// pending identifier-like run
	pend      bool
	pendStart uint32
	pendLine  uint32
	marker    bool // the pending run already consumed a resolution separator

	inQuote bool
	quote   byte

	out layer.ParsedSet
}

// New creates a scanner for one file of the given layer. prev is nil
// when the file belongs to the first layer.
func New(file *source.File, own, prev *layer.Layer, ladder *layer.Ladder, opts Options) *Scanner {
	return &Scanner{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		own:    own,
		prev:   prev,
		ladder: ladder,
		line:   1,
	}
}

// Scan runs a full pass and returns the file's parsed token set.
func Scan(file *source.File, own, prev *layer.Layer, ladder *layer.Ladder, opts Options) layer.ParsedSet {
	return New(file, own, prev, ladder, opts).Run()
}

// Run consumes the whole file.
func (s *Scanner) Run() layer.ParsedSet {
	g := s.ladder.Grouping
	res := s.ladder.Resolution

	for !s.cursor.EOF() {
		b := s.cursor.Peek()

		switch {
		case isIDByte(b):
			if !s.pend {
				s.pend = true
				s.pendStart = s.cursor.Off
				s.pendLine = s.line
			}
			s.cursor.Bump()

		case res.Enabled && s.pend && !s.marker && s.cursor.Match(res.Separator):
			// keep accumulating: the level name joins the pending run
			s.marker = true
			for range len(res.Separator) {
				s.cursor.Bump()
			}

		case b == '\n':
			s.flush(s.currentRole())
			s.cursor.Bump()
			s.line++

		case g.IsQuote(b):
			switch {
			case !s.inQuote:
				s.flush(layer.RoleDefinition)
				s.inQuote = true
				s.quote = b
			case b == s.quote:
				s.flush(layer.RoleReference)
				s.inQuote = false
			default:
				// a different quote char inside a quote is ordinary noise
				s.flush(layer.RoleReference)
			}
			s.cursor.Bump()

		case b == g.Start && !s.inQuote:
			s.flush(s.currentRole())
			s.scanGrouping()

		case b == g.End:
			s.flush(s.currentRole())
			s.report(diag.ScanMalformedGrouping, s.hereSpan(),
				fmt.Sprintf("unmatched grouping end %q", string(g.End)))
			s.cursor.Bump()

		case b == g.Separator:
			s.flush(s.currentRole())
			s.cursor.Bump()

		default:
			// whitespace or any disallowed byte ends the pending run
			s.flush(s.currentRole())
			s.cursor.Bump()
		}
	}

	s.flush(s.currentRole())
	return s.out
}

func (s *Scanner) currentRole() layer.Role {
	if s.inQuote {
		return layer.RoleReference
	}
	return layer.RoleDefinition
}

func (s *Scanner) hereSpan() source.Span {
	end := s.cursor.Off + 1
	if s.cursor.EOF() {
		end = s.cursor.Off
	}
	return source.Span{File: s.file.ID, Start: s.cursor.Off, End: end}
}

// flush classifies the pending run, if any, under the given role.
func (s *Scanner) flush(role layer.Role) {
	if !s.pend {
		return
	}
	span := source.Span{File: s.file.ID, Start: s.pendStart, End: s.cursor.Off}
	raw := string(s.file.Content[span.Start:span.End])
	line := s.pendLine
	s.pend = false
	s.marker = false
	s.analyze(raw, raw, span, line, role)
}

// scanGrouping buffers everything up to the grouping end delimiter and
// splits it into reference candidates. Groupings do not nest and may
// span lines; an unterminated grouping is reported at its start line.
func (s *Scanner) scanGrouping() {
	g := s.ladder.Grouping
	openOff := s.cursor.Off
	openLine := s.line
	openSpan := source.Span{File: s.file.ID, Start: openOff, End: openOff + 1}
	s.cursor.Bump()

	bodyStart := s.cursor.Off
	bodyLine := s.line
	for !s.cursor.EOF() {
		b := s.cursor.Peek()
		if b == g.End {
			body := s.file.Content[bodyStart:s.cursor.Off]
			s.cursor.Bump()
			s.processGroupingBody(body, bodyStart, bodyLine, openSpan, openLine)
			return
		}
		if b == '\n' {
			s.line++
		}
		s.cursor.Bump()
	}

	s.report(diag.ScanMalformedGrouping, openSpan,
		fmt.Sprintf("unclosed grouping started on line %d", openLine))
}

func (s *Scanner) processGroupingBody(body []byte, bodyOff, bodyLine uint32, openSpan source.Span, openLine uint32) {
	sep := s.ladder.Grouping.Separator
	count := 0

	start := 0
	for i := 0; i <= len(body); i++ {
		if i < len(body) && body[i] != sep {
			continue
		}
		if s.emitGroupPiece(body, start, i, bodyOff, bodyLine) {
			count++
		}
		start = i + 1
	}

	if count == 0 {
		s.report(diag.ScanMalformedGrouping, openSpan,
			fmt.Sprintf("grouping on line %d holds no tokens", openLine))
	}
}

// emitGroupPiece trims one separator-delimited piece and, when non-empty,
// runs it through the reference-candidate pipeline. Returns whether the
// piece was non-empty after trimming.
func (s *Scanner) emitGroupPiece(body []byte, from, to int, bodyOff, bodyLine uint32) bool {
	for from < to && isSpaceByte(body[from]) {
		from++
	}
	for to > from && isSpaceByte(body[to-1]) {
		to--
	}
	if from >= to {
		return false
	}

	raw := string(body[from:to])
	span := source.Span{
		File:  s.file.ID,
		Start: bodyOff + uint32(from),
		End:   bodyOff + uint32(to),
	}
	line := bodyLine
	for i := 0; i < from; i++ {
		if body[i] == '\n' {
			line++
		}
	}

	stripped := raw
	if pass := s.ladder.Grouping.Passthrough; pass != "" && strings.HasPrefix(raw, pass) {
		stripped = raw[len(pass):]
		if stripped == "" {
			s.report(diag.ScanBadIdToken, span,
				fmt.Sprintf("passthrough prefix %q with no identifier", pass))
			return true
		}
	}

	s.analyze(raw, stripped, span, line, layer.RoleReference)
	return true
}

// analyze runs the shared candidate pipeline: marker split, pattern
// gate, id-shape rule, marker checks, token emission. raw is the literal
// slice covered by span; stripped is raw minus any passthrough prefix.
func (s *Scanner) analyze(raw, stripped string, span source.Span, line uint32, role layer.Role) {
	res := s.ladder.Resolution

	id := stripped
	level := ""
	hasMarker := false
	if res.Enabled && res.Separator != "" {
		if k := strings.Index(stripped, res.Separator); k >= 0 {
			hasMarker = true
			id = stripped[:k]
			level = stripped[k+len(res.Separator):]
		}
	}

	// candidates that match no pattern of their role are prose
	if !s.matchRole(role, id) {
		return
	}
	if !validShape(id) {
		s.report(diag.ScanBadIdToken, span,
			fmt.Sprintf("identifier %q violates the id shape rule", id))
		return
	}

	tok := layer.Token{
		ID:     id,
		Raw:    raw,
		Marker: hasMarker,
		Role:   role,
		File:   s.file.ID,
		Line:   line,
		Span:   span,
	}

	if hasMarker {
		switch {
		case role == layer.RoleReference:
			// checked before, and suppressing, level validation
			s.report(diag.ScanResolutionOnNonDefinition, span,
				fmt.Sprintf("resolution marker on reference %q", id))
		default:
			if idx, ok := s.ladder.LevelIndex(level); ok {
				tok.Level = s.ladder.Layers[idx].Name
			} else {
				s.report(diag.ScanUnknownResolutionLevel, span,
					fmt.Sprintf("unknown resolution level %q on definition %q", level, id))
			}
		}
	}

	if role == layer.RoleDefinition {
		s.out.Defs = append(s.out.Defs, tok)
	} else {
		s.out.Refs = append(s.out.Refs, tok)
	}
}

func (s *Scanner) matchRole(role layer.Role, id string) bool {
	if id == "" {
		return false
	}
	if role == layer.RoleDefinition {
		return s.own != nil && s.own.Match(id)
	}
	return s.prev != nil && s.prev.Match(id)
}
