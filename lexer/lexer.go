// Package lexer implements the Basecode lexer (spec.md §4.3): a
// deterministic byte-stream-to-token-stream transducer over one
// source.Buffer, pushing interned occurrences into a token.Pool.
//
// The lexer's overall loop (pop a rune, dispatch on its class, push a
// token, repeat until EOF)
// is adapted from the teacher's experimental/ast/lexer.go, generalized
// from Protobuf's lexical surface to Basecode's: radix-prefixed numeric
// literals ($ hex, @ octal, % binary), directives (#name), attributes
// (@name), labels ('name:), and nesting raw blocks ({{ ... }}) in addition
// to nesting block comments.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

// Lexer tokenizes one source.Buffer into a token.Pool.
type Lexer struct {
	buf    *source.Buffer
	file   source.FileID
	fs     *source.FileSet
	pool   *token.Pool
	errs   *report.Report
	cursor int

	// Parens/brackets/braces are balanced by the parser. Nested block
	// comments and raw blocks track their own depth while they are lexed;
	// the Lexer keeps no delimiter state of its own.
}

// New creates a Lexer for buf, pushing tokens into pool and recording
// lexical diagnostics (spec.md §4.3 "Failure modes") into errs.
func New(fs *source.FileSet, file source.FileID, buf *source.Buffer, pool *token.Pool, errs *report.Report) *Lexer {
	return &Lexer{buf: buf, file: file, fs: fs, pool: pool, errs: errs}
}

const maxFileSize = 64 << 20 // 64MiB, generous enough to never matter in practice.

// Lex runs the lexer to completion, producing a sequence of token.ID pushed
// into the Lexer's pool, terminated by an EOF token. It returns the slice
// of token ids in source order (including skippable Space/Comment tokens,
// per spec.md §4.3: "Comments are tokens; the parser is free to discard or
// attach them").
func (l *Lexer) Lex() []token.ID {
	var ids []token.ID

	if l.buf.Len() > maxFileSize {
		l.errs.Error("L001", "source file %q too large to lex", l.spanAt(0, 0), l.buf.Path())
		ids = append(ids, l.push(token.Invalid, "", token.NoRadix, token.NotNumeric, 0, 0))
		ids = append(ids, l.pushEOF())
		return ids
	}

	if bad, ok := firstInvalidUTF8(l.buf.Text()); !ok {
		l.errs.Error("L002", "illegal UTF-8 byte 0x%02x", l.spanAt(bad, bad+1))
		ids = append(ids, l.pushEOF())
		return ids
	}

	for !l.done() {
		before := l.cursor
		id, ok := l.lexOne()
		if ok {
			ids = append(ids, id)
		}
		if l.cursor == before {
			// Safety valve: lexOne must always make progress. This should
			// be unreachable; if it isn't, treat the byte as unrecognized
			// garbage rather than looping forever.
			start := l.cursor
			l.cursor++
			l.errs.Error("L099", "lexer failed to make progress", l.spanAt(start, l.cursor))
			ids = append(ids, l.push(token.Invalid, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor))
		}
	}
	ids = append(ids, l.pushEOF())
	return ids
}

func firstInvalidUTF8(s string) (offset int, ok bool) {
	off := 0
	for s != "" {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			return off, false
		}
		s = s[size:]
		off += size
	}
	return 0, true
}

func (l *Lexer) done() bool { return l.cursor >= l.buf.Len() }

func (l *Lexer) peekByte() byte {
	if l.done() {
		return 0
	}
	return l.buf.ByteAt(l.cursor)
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.cursor+n >= l.buf.Len() {
		return 0
	}
	return l.buf.ByteAt(l.cursor + n)
}

func (l *Lexer) peekRune() (rune, int) {
	if l.done() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.buf.Text()[l.cursor:])
}

func (l *Lexer) spanAt(start, end int) source.Span {
	return source.NewSpan(l.fs, l.file, start, end)
}

func (l *Lexer) push(kind token.Kind, lexeme string, radix token.Radix, numClass token.NumClass, start, end int) token.ID {
	desc := l.pool.Intern(kind, lexeme)
	return l.pool.Push(desc, radix, numClass, l.spanAt(start, end))
}

func (l *Lexer) pushEOF() token.ID {
	return l.push(token.EOF, "", token.NoRadix, token.NotNumeric, l.cursor, l.cursor)
}

// lexOne consumes and emits exactly one token (or records an error and
// consumes at least one byte), returning its id and whether one was
// emitted (whitespace/comments still count as emitted; this return is only
// false for pathological cases with no forward progress, handled by Lex's
// safety valve).
func (l *Lexer) lexOne() (token.ID, bool) {
	start := l.cursor
	r, size := l.peekRune()

	switch {
	case unicode.IsSpace(r):
		l.cursor += size
		for {
			r2, s2 := l.peekRune()
			if s2 == 0 || !unicode.IsSpace(r2) {
				break
			}
			l.cursor += s2
		}
		return l.push(token.Space, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor), true

	case r == '/' && l.peekByteAt(1) == '/':
		l.cursor += 2
		for !l.done() && l.peekByte() != '\n' {
			l.cursor++
		}
		return l.push(token.Comment, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor), true

	case r == '/' && l.peekByteAt(1) == '*':
		l.cursor += 2
		depth := 1
		for !l.done() && depth > 0 {
			switch {
			case l.peekByte() == '/' && l.peekByteAt(1) == '*':
				depth++
				l.cursor += 2
			case l.peekByte() == '*' && l.peekByteAt(1) == '/':
				depth--
				l.cursor += 2
			default:
				l.cursor++
			}
		}
		if depth > 0 {
			l.errs.Error("L010", "unterminated block comment", l.spanAt(start, l.cursor))
		}
		return l.push(token.Comment, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor), true

	case r == '{' && l.peekByteAt(1) == '{':
		return l.lexRawBlock(start), true

	case r == '#':
		return l.lexNamed(start, token.Directive), true

	// '@' is overloaded between the octal numeric prefix and the
	// attribute sigil; the original lexer resolves this contextually
	// (see lexer.cpp's separate number_literal/attribute dispatch
	// tables), which does not translate cleanly to a single dispatch
	// rune here. We disambiguate on the following byte instead: '@'
	// followed by an octal digit is a number, '@' followed by an
	// identifier-starting letter is an attribute.
	case r == '@' && isOctalDigit(l.peekByteAt(1)):
		return l.lexRadixNumber(start), true

	case r == '@':
		return l.lexNamed(start, token.Attribute), true

	case r == '\'':
		return l.lexCharOrLabel(start), true

	case r == '"':
		return l.lexString(start), true

	case r == '$':
		return l.lexRadixNumber(start), true

	// '%' is overloaded between the binary numeric prefix and the
	// modulus/compound-assignment operators; disambiguate the same way
	// as '@' above: '%' followed by a binary digit is a number literal.
	case r == '%' && (l.peekByteAt(1) == '0' || l.peekByteAt(1) == '1'):
		return l.lexRadixNumber(start), true

	case isDigit(r):
		return l.lexNumber(start), true

	case token.IsIdentStart(r):
		return l.lexIdent(start), true

	default:
		if lexed, ok := l.lexPunct(start); ok {
			return lexed, true
		}
		l.cursor += size
		l.errs.Error("L020", "unrecognized character %q", l.spanAt(start, l.cursor), string(r))
		return l.push(token.Invalid, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor), true
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// lexRawBlock lexes a `{{ ... }}` block, which nests (spec.md §4.3).
func (l *Lexer) lexRawBlock(start int) token.ID {
	l.cursor += 2 // consume "{{"
	depth := 1
	for !l.done() && depth > 0 {
		switch {
		case l.peekByte() == '{' && l.peekByteAt(1) == '{':
			depth++
			l.cursor += 2
		case l.peekByte() == '}' && l.peekByteAt(1) == '}':
			depth--
			l.cursor += 2
		default:
			l.cursor++
		}
	}
	if depth > 0 {
		l.errs.Error("L011", "unterminated raw block", l.spanAt(start, l.cursor))
	}
	return l.push(token.RawBlock, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
}

// lexNamed lexes a `#name` directive or `@name` attribute.
func (l *Lexer) lexNamed(start int, kind token.Kind) token.ID {
	l.cursor++ // consume '#' or '@'
	nameStart := l.cursor
	for {
		r, size := l.peekRune()
		if size == 0 || !token.IsIdentContinue(r) {
			break
		}
		l.cursor += size
	}
	if l.cursor == nameStart {
		l.errs.Error("L021", "expected a name after %q", l.spanAt(start, l.cursor), l.buf.Substring(start, nameStart))
	}
	return l.push(kind, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
}

// lexCharOrLabel disambiguates a character literal 'x' from a label 'name:.
func (l *Lexer) lexCharOrLabel(start int) token.ID {
	// A label is 'ident:'; a char literal is 'x' (possibly escaped) with a
	// closing quote. Try the label form first: scan an identifier, then
	// check for a following ':'.
	save := l.cursor
	l.cursor++ // consume opening '\''
	identStart := l.cursor
	for {
		r, size := l.peekRune()
		if size == 0 || !token.IsIdentContinue(r) {
			break
		}
		l.cursor += size
	}
	if l.cursor > identStart && l.peekByte() == ':' {
		l.cursor++ // consume ':'
		return l.push(token.Label, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
	}

	// Not a label; backtrack and lex a character literal.
	l.cursor = save
	l.cursor++ // consume opening quote
	if l.peekByte() == '\\' {
		l.lexEscape()
	} else {
		_, size := l.peekRune()
		l.cursor += size
	}
	if l.peekByte() != '\'' {
		l.errs.Error("L030", "unterminated character literal", l.spanAt(start, l.cursor))
	} else {
		l.cursor++
	}
	return l.push(token.Char, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
}

// lexString lexes a double-quoted string literal with the standard escape
// set plus \xNN, \uNNNN, \UNNNNNNNN (spec.md §4.3, §6).
func (l *Lexer) lexString(start int) token.ID {
	l.cursor++ // consume opening quote
	for !l.done() {
		switch l.peekByte() {
		case '"':
			l.cursor++
			return l.push(token.String, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
		case '\\':
			l.lexEscape()
		case '\n':
			l.errs.Error("L031", "unterminated string literal", l.spanAt(start, l.cursor))
			return l.push(token.String, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
		default:
			_, size := l.peekRune()
			l.cursor += size
		}
	}
	l.errs.Error("L031", "unterminated string literal", l.spanAt(start, l.cursor))
	return l.push(token.String, l.buf.Substring(start, l.cursor), token.NoRadix, token.NotNumeric, start, l.cursor)
}

func (l *Lexer) lexEscape() {
	start := l.cursor
	l.cursor++ // consume '\\'
	if l.done() {
		return
	}
	switch l.peekByte() {
	case 'x':
		l.cursor++
		l.consumeHexDigits(2, start)
	case 'u':
		l.cursor++
		l.consumeHexDigits(4, start)
	case 'U':
		l.cursor++
		l.consumeHexDigits(8, start)
	case 'n', 't', 'r', '\\', '\'', '"', '0', 'a', 'b', 'f', 'v':
		l.cursor++
	default:
		_, size := l.peekRune()
		l.errs.Error("L032", "unrecognized escape sequence", l.spanAt(start, l.cursor+size))
		l.cursor += size
	}
}

func (l *Lexer) consumeHexDigits(n int, escStart int) {
	for i := 0; i < n; i++ {
		b := l.peekByte()
		if !isHexDigit(b) {
			l.errs.Error("L033", "expected %d hex digits in escape sequence", l.spanAt(escStart, l.cursor), n)
			return
		}
		l.cursor++
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

// lexRadixNumber lexes a $hex, @octal, or %binary literal.
func (l *Lexer) lexRadixNumber(start int) token.ID {
	marker := l.peekByte()
	l.cursor++
	digitsStart := l.cursor

	var radix token.Radix
	var isDigitFn func(byte) bool
	switch marker {
	case '$':
		radix, isDigitFn = token.Hex, isHexDigit
	case '@':
		radix, isDigitFn = token.Octal, func(b byte) bool { return b >= '0' && b <= '7' }
	case '%':
		radix, isDigitFn = token.Binary, func(b byte) bool { return b == '0' || b == '1' }
	}

	for isDigitFn(l.peekByte()) || l.peekByte() == '_' {
		l.cursor++
	}
	if l.cursor == digitsStart {
		l.errs.Error("L040", "radix prefix %q requires at least one digit", l.spanAt(start, l.cursor), string(marker))
	}
	return l.push(token.Number, l.buf.Substring(start, l.cursor), radix, token.IntegerClass, start, l.cursor)
}

// lexNumber lexes a decimal integer or float literal.
func (l *Lexer) lexNumber(start int) token.ID {
	for isDigit(l.peekByte()) || l.peekByte() == '_' {
		l.cursor++
	}
	numClass := token.IntegerClass
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		numClass = token.FloatClass
		l.cursor++ // consume '.'
		for isDigit(l.peekByte()) || l.peekByte() == '_' {
			l.cursor++
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.cursor
		l.cursor++
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.cursor++
		}
		if isDigit(l.peekByte()) {
			numClass = token.FloatClass
			for isDigit(l.peekByte()) {
				l.cursor++
			}
		} else {
			l.cursor = save
		}
	}
	return l.push(token.Number, l.buf.Substring(start, l.cursor), token.Decimal, numClass, start, l.cursor)
}

// lexIdent lexes an identifier or keyword, including the type-tagged form
// `name<T, U>` described in spec.md §6. The generic argument list is left
// in the token stream as separate `<`/`,`/`>` punctuation for the parser
// to consume; the lexer only recognizes the bare name here.
func (l *Lexer) lexIdent(start int) token.ID {
	for {
		r, size := l.peekRune()
		if size == 0 || !token.IsIdentContinue(r) {
			break
		}
		l.cursor += size
	}
	text := l.buf.Substring(start, l.cursor)
	if _, ok := token.Lookup(text); ok {
		return l.push(token.Keyword, text, token.NoRadix, token.NotNumeric, start, l.cursor)
	}
	return l.push(token.Ident, text, token.NoRadix, token.NotNumeric, start, l.cursor)
}

// lexPunct matches the longest valid punctuator prefix at the cursor,
// backtracking to shorter candidates when a longer one doesn't match
// (spec.md §4.3: "Multi-character operator lexers commit to the longest
// prefix that forms a valid token").
func (l *Lexer) lexPunct(start int) (token.ID, bool) {
	remaining := l.buf.Text()[l.cursor:]
	for _, p := range token.Punctuators {
		if strings.HasPrefix(remaining, p) {
			l.cursor += len(p)
			return l.push(token.Punct, p, token.NoRadix, token.NotNumeric, start, l.cursor), true
		}
	}
	return token.ID(0), false
}

// ParseIntLiteral converts a lexed Number token's text into its integer
// value, honoring its radix and stripping `_` digit separators. Exposed for
// the ast/ir layers, which need to materialize literal values during
// AST-to-element lowering and constant folding.
func ParseIntLiteral(text string, radix token.Radix) (uint64, error) {
	clean := strings.ReplaceAll(text, "_", "")
	switch radix {
	case token.Hex:
		return strconv.ParseUint(clean[1:], 16, 64)
	case token.Octal:
		return strconv.ParseUint(clean[1:], 8, 64)
	case token.Binary:
		return strconv.ParseUint(clean[1:], 2, 64)
	default:
		return strconv.ParseUint(clean, 10, 64)
	}
}

// ParseFloatLiteral converts a lexed float Number token's text into its
// float64 value.
func ParseFloatLiteral(text string) (float64, error) {
	clean := strings.ReplaceAll(text, "_", "")
	return strconv.ParseFloat(clean, 64)
}

// ParseStringLiteral decodes a lexed String token's text (including its
// surrounding quotes) into its runtime value, processing escapes per
// spec.md §4.3/§6.
func ParseStringLiteral(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("malformed string literal %q", text)
	}
	return unescape(text[1 : len(text)-1])
}

// ParseCharLiteral decodes a lexed Char token's text into its rune value.
func ParseCharLiteral(text string) (rune, error) {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, fmt.Errorf("malformed character literal %q", text)
	}
	body, err := unescape(text[1 : len(text)-1])
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRuneInString(body)
	if size != len(body) {
		return 0, fmt.Errorf("character literal %q does not contain exactly one rune", text)
	}
	return r, nil
}

func unescape(body string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape at end of literal")
		}
		switch body[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case '\\':
			out.WriteByte('\\')
		case '\'':
			out.WriteByte('\'')
		case '"':
			out.WriteByte('"')
		case '0':
			out.WriteByte(0)
		case 'a':
			out.WriteByte(7)
		case 'b':
			out.WriteByte(8)
		case 'f':
			out.WriteByte(12)
		case 'v':
			out.WriteByte(11)
		case 'x':
			if i+2 >= len(body) {
				return "", fmt.Errorf("truncated \\x escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", err
			}
			out.WriteByte(byte(v))
			i += 2
		case 'u':
			if i+4 >= len(body) {
				return "", fmt.Errorf("truncated \\u escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return "", err
			}
			out.WriteRune(rune(v))
			i += 4
		case 'U':
			if i+8 >= len(body) {
				return "", fmt.Errorf("truncated \\U escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+9], 16, 32)
			if err != nil {
				return "", err
			}
			out.WriteRune(rune(v))
			i += 8
		default:
			return "", fmt.Errorf("unrecognized escape \\%c", body[i])
		}
	}
	return out.String(), nil
}
