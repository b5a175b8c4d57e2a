package scan

import (
	"strata/internal/diag"
	"strata/internal/source"
)

// Reporter is the thin contract the scanner emits structural issues
// through; the diag layer adapts it onto a Bag.
type Reporter interface {
	Report(code diag.Code, span source.Span, msg string)
}

// Options configures one scan pass over one file.
type Options struct {
	// Reporter may be nil: issues are dropped but scanning continues.
	Reporter Reporter
}

func (s *Scanner) report(code diag.Code, sp source.Span, msg string) {
	if s.opts.Reporter != nil {
		s.opts.Reporter.Report(code, sp, msg)
	}
}

// BagReporter adapts a diag.Bag to the scanner's Reporter contract.
// Every scan issue is an error-severity diagnostic.
type BagReporter struct {
	Bag *diag.Bag
}

func (r BagReporter) Report(code diag.Code, span source.Span, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(diag.NewError(code, span, msg))
}
