// Package report implements the Basecode diagnostic collector.
//
// A Report accumulates diagnostics produced while a [session] runs the
// compiler pipeline: lexical errors, parse errors, resolution failures,
// type errors, overload-resolution failures, and directive errors, plus
// non-fatal warnings. It mirrors the shape described in spec.md §6-§7: each
// diagnostic is a (severity, code, message, location, details) tuple. The
// Error/Warning accumulation API is adapted from the teacher's reporter
// package.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/basecode-lang/basecode-sub003/source"
)

// Severity is how serious a diagnostic is.
type Severity int8

const (
	// Error indicates a semantic or syntactic constraint violation; a
	// session that records any Error diagnostic is unsuccessful overall.
	Error Severity = iota + 1
	// Warning indicates a non-fatal condition (unused symbol, unreachable
	// code). Warnings never cause session failure.
	Warning
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("report.Severity(%d)", int(s))
	}
}

// Diagnostic is a single reported problem.
//
// Code is a one-letter prefix plus three digits. The codes in use: L0xx
// for lexical errors and L2xx for lowering errors, P for parser errors,
// and C for semantic diagnostics (C1xx type declarations, C2xx name
// resolution, C3xx directives, C4xx overload resolution, C5xx type
// checking, C601 the unused-identifier warning).
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Location source.Span
	Details  []string
}

// String renders a single-line form of the diagnostic, used by tests and by
// the default (collaborator-free) renderer.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Severity, d.Code, d.Message)
	if !d.Location.Nil() {
		fmt.Fprintf(&b, " (%s)", d.Location)
	}
	for _, det := range d.Details {
		fmt.Fprintf(&b, "\n  note: %s", det)
	}
	return b.String()
}

// Report is a session-scoped diagnostic collector.
//
// A zero Report is ready to use. Report is not safe for concurrent writes
// from multiple goroutines — per spec.md §5, all graph-mutating and
// diagnostic-producing work within one session happens on one logical
// thread.
type Report struct {
	diags []Diagnostic
}

// Error records an error-severity diagnostic.
func (r *Report) Error(code, format string, loc source.Span, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Warning records a warning-severity diagnostic.
func (r *Report) Warning(code, format string, loc source.Span, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: Warning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Note attaches a detail line to the most recently recorded diagnostic. It
// is a no-op if nothing has been recorded yet.
func (r *Report) Note(format string, args ...any) {
	if len(r.diags) == 0 {
		return
	}
	last := &r.diags[len(r.diags)-1]
	last.Details = append(last.Details, fmt.Sprintf(format, args...))
}

// Add appends an already-constructed diagnostic verbatim.
func (r *Report) Add(d Diagnostic) {
	r.diags = append(r.diags, d)
}

// Diagnostics returns all diagnostics recorded so far, in recording order.
func (r *Report) Diagnostics() []Diagnostic {
	return r.diags
}

// HasErrors reports whether any Error-severity diagnostic has been recorded.
//
// Per spec.md §7, a session's overall success is the conjunction of "no
// error recorded" and "pipeline completed all passes"; this answers the
// first half.
func (r *Report) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sort stabilizes diagnostic order by source location, then by recording
// order for diagnostics at the same location. Used before rendering so that
// diagnostics from independent subtrees (which may be recorded out of
// left-to-right order due to pass structure) still read top-to-bottom.
func (r *Report) Sort() {
	sort.SliceStable(r.diags, func(i, j int) bool {
		a, b := r.diags[i].Location, r.diags[j].Location
		if a.File() != b.File() {
			return a.File() < b.File()
		}
		return a.Start() < b.Start()
	})
}
