// Package width computes terminal column widths for diagnostic rendering:
// how many columns a run of source text occupies once tab expansion and
// wide/combining runes are accounted for.
//
// Adapted from the teacher's internal/ext/unicodex package, which wraps
// github.com/rivo/uniseg for the same purpose (grapheme-cluster-aware width
// for diagnostic excerpt rendering, spec.md §4.1's "range-colored excerpt
// rendering").
package width

import "github.com/rivo/uniseg"

// TabstopWidth is the column width used when expanding a tab character.
const TabstopWidth = 4

// Columns returns the number of terminal columns that s occupies, starting
// at the given zero-based column (needed so that tabstops land correctly
// when s does not start at the beginning of a line).
func Columns(s string, startColumn int) int {
	col := startColumn
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) == 1 && runes[0] == '\t' {
			col += TabstopWidth - col%TabstopWidth
			continue
		}
		col += uniseg.StringWidth(gr.Str())
	}
	return col - startColumn
}

// StringWidth is a thin re-export of uniseg's whole-string width
// measurement, used where no tabstop bookkeeping is needed.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}
