// Package source implements the Basecode source buffer: an immutable,
// line-indexed view over one UTF-8 source file, plus the Span type used
// throughout the compiler to tag every token, AST node, and element with a
// source location (spec.md §4.1).
//
// The shape (an immutable file object with a line index and Location/Span
// accessors) is adapted from the teacher's experimental/source package;
// the line index itself is a github.com/tidwall/btree ordered map from
// line number to line-start offset, built in one pass at Load (see
// buildIndex).
package source

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/btree"

	"github.com/basecode-lang/basecode-sub003/source/width"
)

// Buffer is a loaded, immutable UTF-8 source file.
//
// A Buffer owns its bytes and a precomputed line index. Position queries
// (LineAt, Location) scan the index downward from the last line, so their
// cost grows with the number of lines after the one containing the
// queried offset; they are not O(log n).
type Buffer struct {
	path string
	text string

	// lineStarts maps a 1-indexed line number to the byte offset of its
	// first byte. Keyed on line number (not offset) so that LineAt's
	// "find the containing line" query is a descending btree scan from the
	// last line that stops at the first line starting at or before the
	// queried offset, rather than a second structure.
	lineStarts btree.Map[int, int]
	numLines   int
}

// Load constructs a Buffer from a path and its UTF-8 contents.
//
// Load does not touch the filesystem; callers (e.g. session.LoadSources)
// are responsible for reading file contents and handle their own I/O
// errors. This keeps package source free of any collaborator concerns,
// per spec.md §1's scoping of file I/O to the session/CLI layer.
func Load(path, text string) *Buffer {
	b := &Buffer{path: path, text: text}
	b.buildIndex()
	return b
}

func (b *Buffer) buildIndex() {
	b.lineStarts.Set(1, 0)
	b.numLines = 1
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			b.numLines++
			b.lineStarts.Set(b.numLines, i+1)
		}
	}
}

// Path returns the buffer's file path (not necessarily a real filesystem
// path; used only to label diagnostics and deduplicate spans).
func (b *Buffer) Path() string {
	if b == nil {
		return ""
	}
	return b.path
}

// Text returns the full source text.
func (b *Buffer) Text() string {
	if b == nil {
		return ""
	}
	return b.text
}

// Len returns the length of the source text in bytes.
func (b *Buffer) Len() int { return len(b.Text()) }

// NumLines returns the number of lines in the buffer (always >= 1).
func (b *Buffer) NumLines() int {
	if b == nil {
		return 0
	}
	return b.numLines
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset int) byte {
	return b.text[offset]
}

// LineAt returns the 1-indexed line number containing the given byte
// offset, by descending the line-start btree from the last line and taking
// the first line whose start is <= offset. The scan visits every line
// after the containing one, so it is linear in their number, not
// O(log n).
func (b *Buffer) LineAt(offset int) int {
	if b == nil || offset <= 0 {
		return 1
	}
	line := 1
	b.lineStarts.Descend(b.numLinesUpperBound(offset), func(n, start int) bool {
		if start <= offset {
			line = n
			return false
		}
		return true
	})
	return line
}

// numLinesUpperBound returns the line LineAt's descending scan starts
// from. It always returns numLines (the last line), which is >= the line
// containing any offset; the offset is not used to narrow the start.
func (b *Buffer) numLinesUpperBound(int) int { return b.numLines }

// LineOffsets returns the [start, end) byte range of the given 1-indexed
// line, including its trailing newline if any.
func (b *Buffer) LineOffsets(line int) (start, end int) {
	start, _ = b.lineStarts.Get(line)
	if next, ok := b.lineStarts.Get(line + 1); ok {
		end = next
	} else {
		end = len(b.text)
	}
	return start, end
}

// Line returns the text of the given 1-indexed line, including its trailing
// newline if present.
func (b *Buffer) Line(line int) string {
	start, end := b.LineOffsets(line)
	if start > len(b.text) || start < 0 {
		return ""
	}
	return b.text[start:end]
}

// Location describes a human-readable position: 1-indexed line and column
// (column counted in runes, matching spec.md's "line and column" wording).
type Location struct {
	Offset int
	Line   int
	Column int
}

// Location computes the Location of a byte offset, at the cost of LineAt.
func (b *Buffer) Location(offset int) Location {
	line := b.LineAt(offset)
	start, _ := b.LineOffsets(line)
	col := utf8.RuneCountInString(b.text[start:offset]) + 1
	return Location{Offset: offset, Line: line, Column: col}
}

// Substring extracts the text in [start, end).
func (b *Buffer) Substring(start, end int) string {
	return b.text[start:end]
}

// Excerpt renders a colored (ANSI-free, plain) excerpt around the given
// byte range for error context: the line containing start (only that
// line, even when the range spans several), plus a caret underline
// beneath that line's portion of the range. This is the
// "range-colored excerpt rendering for error context" of spec.md §4.1; the
// actual color/terminal rendering is left to a collaborator renderer, so
// this produces a plain-text rendering with the underline as the "color"
// signal in the absence of one.
func (b *Buffer) Excerpt(start, end int) string {
	if end < start {
		start, end = end, start
	}
	startLoc := b.Location(start)
	lineStart, lineEnd := b.LineOffsets(startLoc.Line)

	underlineEnd := end
	if underlineEnd > lineEnd {
		underlineEnd = lineEnd
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%5d | %s", startLoc.Line, strings.TrimRight(b.text[lineStart:lineEnd], "\n"))
	out.WriteByte('\n')
	out.WriteString("      | ")
	pad := width.Columns(b.text[lineStart:start], 0)
	carets := width.Columns(b.text[start:underlineEnd], pad)
	if carets < 1 {
		carets = 1
	}
	out.WriteString(strings.Repeat(" ", pad))
	out.WriteString(strings.Repeat("^", carets))
	return out.String()
}
