package source_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/source"
)

func TestBufferLineAtAndLocation(t *testing.T) {
	text := "abc\ndef\nghi\n"
	buf := source.Load("test.bc", text)

	require.Equal(t, 4, buf.NumLines())

	assert.Equal(t, 1, buf.LineAt(0))
	assert.Equal(t, 1, buf.LineAt(2))
	assert.Equal(t, 2, buf.LineAt(4))
	assert.Equal(t, 3, buf.LineAt(9))

	loc := buf.Location(5) // 'e' in "def"
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 2, loc.Column)
}

func TestBufferLine(t *testing.T) {
	buf := source.Load("test.bc", "first\nsecond\nthird")
	assert.Equal(t, "first\n", buf.Line(1))
	assert.Equal(t, "second\n", buf.Line(2))
	assert.Equal(t, "third", buf.Line(3))
}

func TestBufferLineAtLastLineNoTrailingNewline(t *testing.T) {
	buf := source.Load("test.bc", "only")
	assert.Equal(t, 1, buf.NumLines())
	assert.Equal(t, 1, buf.LineAt(3))
}

func TestBufferExcerptUnderlinesRange(t *testing.T) {
	buf := source.Load("test.bc", "let x = nope;\n")
	excerpt := buf.Excerpt(8, 12) // "nope"

	lines := strings.Split(excerpt, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "let x = nope;")
	assert.True(t, strings.HasSuffix(lines[1], "^^^^"), "underline line: %q", lines[1])
}

func TestBufferSubstringAndByteAt(t *testing.T) {
	buf := source.Load("test.bc", "hello world")
	assert.Equal(t, "hello", buf.Substring(0, 5))
	assert.Equal(t, byte('w'), buf.ByteAt(6))
}
