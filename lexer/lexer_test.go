package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/lexer"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

// lexText runs the lexer over text and returns the resulting pool and
// token ids, failing the test immediately if any diagnostic is recorded.
func lexText(t *testing.T, text string) (*token.Pool, []token.ID, *report.Report) {
	t.Helper()
	fs := &source.FileSet{}
	buf := source.Load("test.bc", text)
	file := fs.Add(buf)
	pool := token.NewPool()
	errs := &report.Report{}
	ids := lexer.New(fs, file, buf, pool, errs).Lex()
	return pool, ids, errs
}

func kinds(pool *token.Pool, ids []token.ID) []token.Kind {
	out := make([]token.Kind, len(ids))
	for i, id := range ids {
		out[i] = pool.At(id).Kind()
	}
	return out
}

func TestLexKeywordIdentNumberPunct(t *testing.T) {
	pool, ids, errs := lexText(t, "x :: 42;")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	require.Len(t, ids, 7) // ident, space, ::, space, number, ;, EOF
	assert.Equal(t, []token.Kind{token.Ident, token.Space, token.Punct, token.Space, token.Number, token.Punct, token.EOF}, kinds(pool, ids))

	num := pool.At(ids[4])
	assert.Equal(t, "42", num.Lexeme())
	assert.Equal(t, token.Decimal, num.Radix())
}

func TestLexRadixPrefixedNumbers(t *testing.T) {
	pool, ids, errs := lexText(t, "$ff @17 %101")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	var numbers []token.Token
	for _, id := range ids {
		tok := pool.At(id)
		if tok.Kind() == token.Number {
			numbers = append(numbers, tok)
		}
	}
	require.Len(t, numbers, 3)
	assert.Equal(t, token.Hex, numbers[0].Radix())
	assert.Equal(t, token.Octal, numbers[1].Radix())
	assert.Equal(t, token.Binary, numbers[2].Radix())
}

func TestLexAttributeVersusOctalDisambiguation(t *testing.T) {
	// "@17" (digit follows) lexes as an octal number; "@foreign" (no
	// digit follows) lexes as an attribute, per the one-byte-lookahead
	// rule documented on the lexer's dispatch for '@'.
	pool, ids, errs := lexText(t, "@17 @foreign")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	var got []token.Kind
	for _, id := range ids {
		k := pool.At(id).Kind()
		if k == token.Space {
			continue
		}
		got = append(got, k)
	}
	assert.Equal(t, []token.Kind{token.Number, token.Attribute, token.EOF}, got)
}

func TestLexDirectiveAndLabel(t *testing.T) {
	pool, ids, errs := lexText(t, "#foreign 'done:")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	var got []token.Kind
	for _, id := range ids {
		k := pool.At(id).Kind()
		if k == token.Space {
			continue
		}
		got = append(got, k)
	}
	assert.Equal(t, []token.Kind{token.Directive, token.Label, token.EOF}, got)
}

func TestLexNestedBlockComment(t *testing.T) {
	pool, ids, errs := lexText(t, "/* outer /* inner */ still outer */ x")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	var nonTrivia []token.Kind
	for _, id := range ids {
		k := pool.At(id).Kind()
		if k == token.Space || k == token.Comment {
			continue
		}
		nonTrivia = append(nonTrivia, k)
	}
	assert.Equal(t, []token.Kind{token.Ident, token.EOF}, nonTrivia)
}

func TestLexNestedRawBlock(t *testing.T) {
	pool, ids, errs := lexText(t, "{{ outer {{ inner }} still outer }}")
	require.False(t, errs.HasErrors(), "diagnostics: %v", errs.Diagnostics())

	require.Len(t, ids, 2) // one RawBlock token, then EOF
	assert.Equal(t, token.RawBlock, pool.At(ids[0]).Kind())
}

func TestLexIllegalUTF8ReportsL002(t *testing.T) {
	_, _, errs := lexText(t, "x := \xff;")
	require.True(t, errs.HasErrors())
	assert.Equal(t, "L002", errs.Diagnostics()[0].Code)
}
