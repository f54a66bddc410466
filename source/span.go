package source

import "fmt"

// FileID identifies one source file within a session's FileSet. The zero
// value is not a valid file.
type FileID uint32

// FileSet owns every Buffer loaded during one session, and hands out stable
// FileIDs for them. This is the "file id" half of spec.md §3's Token
// location ("file id, start/end line and column").
type FileSet struct {
	files []*Buffer
}

// Add registers a buffer and returns its stable id.
func (fs *FileSet) Add(b *Buffer) FileID {
	fs.files = append(fs.files, b)
	return FileID(len(fs.files))
}

// Buffer returns the buffer for the given id, or nil if id is invalid.
func (fs *FileSet) Buffer(id FileID) *Buffer {
	if id == 0 || int(id) > len(fs.files) {
		return nil
	}
	return fs.files[id-1]
}

// Path returns the path of the file with the given id, or "" if unknown.
func (fs *FileSet) Path(id FileID) string {
	return fs.Buffer(id).Path()
}

// Span is a half-open byte range [Start, End) within one file of a FileSet.
//
// Span is the concrete "source location" referenced throughout spec.md: by
// tokens (§3), AST nodes (§3), elements (§3), and diagnostics (§6-§7). The
// zero Span is the Nil span and carries no file.
type Span struct {
	fs         *FileSet
	file       FileID
	start, end int
}

// NewSpan constructs a span. start must be <= end.
func NewSpan(fs *FileSet, file FileID, start, end int) Span {
	return Span{fs: fs, file: file, start: start, end: end}
}

// Nil reports whether this is the zero Span.
func (s Span) Nil() bool { return s.fs == nil && s.file == 0 }

// File returns the owning file id.
func (s Span) File() FileID { return s.file }

// Start returns the start byte offset.
func (s Span) Start() int { return s.start }

// End returns the end byte offset.
func (s Span) End() int { return s.end }

// Buffer returns the Buffer this span points into, or nil if the span is
// nil or its FileSet is nil.
func (s Span) Buffer() *Buffer {
	if s.fs == nil {
		return nil
	}
	return s.fs.Buffer(s.file)
}

// Text returns the substring of the underlying buffer this span covers.
func (s Span) Text() string {
	buf := s.Buffer()
	if buf == nil {
		return ""
	}
	return buf.Substring(s.start, s.end)
}

// Join returns the smallest span containing both s and other. Both must
// belong to the same file; Join panics if they don't (mirrors the teacher's
// panicIfNotOurs-style internal consistency checks: mixing spans across
// files is a programmer error, not a recoverable condition).
func (s Span) Join(other Span) Span {
	if s.Nil() {
		return other
	}
	if other.Nil() {
		return s
	}
	if s.file != other.file || s.fs != other.fs {
		panic("basecode/source: cannot join spans from different files")
	}
	start, end := s.start, s.end
	if other.start < start {
		start = other.start
	}
	if other.end > end {
		end = other.end
	}
	return Span{fs: s.fs, file: s.file, start: start, end: end}
}

// String renders "path:line:col" for use in diagnostics and tests.
func (s Span) String() string {
	if s.Nil() {
		return "<no location>"
	}
	buf := s.Buffer()
	loc := buf.Location(s.start)
	return fmt.Sprintf("%s:%d:%d", buf.Path(), loc.Line, loc.Column)
}

// Excerpt renders the source excerpt for this span via Buffer.Excerpt.
func (s Span) Excerpt() string {
	buf := s.Buffer()
	if buf == nil {
		return ""
	}
	return buf.Excerpt(s.start, s.end)
}
