// Package diag defines the diagnostic model shared by every strata phase:
// stable codes, severities, the Diagnostic value, the Bag collector, and
// the Reporter contract phases emit through.
//
// Everything recognized in malformed input is a Diagnostic; only
// environment failures (unreadable file, missing scope layer, a stale
// edit range during apply) travel as Go errors.
package diag
