package token

// Keyword enumerates Basecode's reserved words (spec.md §6 "Keywords: as
// enumerated in the lexer's keyword set", §4.4's list of prefix-parselet
// keywords). Keywords are a closed, process-wide, read-only set populated
// at init (spec.md §5's "process-wide token keyword canonicals").
type Keyword uint8

const (
	NotKeyword Keyword = iota
	KwIf
	KwElif
	KwElse
	KwWhile
	KwFor
	KwIn
	KwSwitch
	KwCase
	KwFallthrough
	KwBreak
	KwContinue
	KwReturn
	KwDefer
	KwWith
	KwYield
	KwProc
	KwStruct
	KwUnion
	KwEnum
	KwNamespace
	KwModule
	KwImport
	KwTrue
	KwFalse
	KwNil
	KwCast
	KwTransmute
	KwSizeOf
	KwAlignOf
	KwAddressOf
	KwTypeOf
	KwLengthOf
	KwAlloc
	KwFree
	KwCopy
	KwFill
	KwRange
)

var keywordText = map[Keyword]string{
	KwIf: "if", KwElif: "elif", KwElse: "else", KwWhile: "while",
	KwFor: "for", KwIn: "in", KwSwitch: "switch", KwCase: "case",
	KwFallthrough: "fallthrough", KwBreak: "break", KwContinue: "continue",
	KwReturn: "return", KwDefer: "defer", KwWith: "with", KwYield: "yield",
	KwProc: "proc", KwStruct: "struct", KwUnion: "union", KwEnum: "enum",
	KwNamespace: "namespace", KwModule: "module", KwImport: "import",
	KwTrue: "true", KwFalse: "false", KwNil: "nil",
	KwCast: "cast", KwTransmute: "transmute",
	KwSizeOf: "size_of", KwAlignOf: "align_of", KwAddressOf: "address_of",
	KwTypeOf: "type_of", KwLengthOf: "length_of", KwAlloc: "alloc",
	KwFree: "free", KwCopy: "copy", KwFill: "fill", KwRange: "range",
}

var textToKeyword = func() map[string]Keyword {
	m := make(map[string]Keyword, len(keywordText))
	for k, s := range keywordText {
		m[s] = k
	}
	return m
}()

// Text returns the literal spelling of a keyword.
func (k Keyword) Text() string { return keywordText[k] }

// String implements fmt.Stringer.
func (k Keyword) String() string {
	if k == NotKeyword {
		return "<not a keyword>"
	}
	return k.Text()
}

// Lookup returns the Keyword matching name, and whether one was found.
//
// Per spec.md §4.3, "A keyword recognizer matches only if the following
// codepoint is not an identifier continuation"; Lookup itself only does the
// text match, the continuation check is the lexer's job since it requires
// one byte of lookahead beyond name.
func Lookup(name string) (Keyword, bool) {
	k, ok := textToKeyword[name]
	return k, ok
}

// IsIdentContinue reports whether r can continue an identifier (spec.md
// §6: "[A-Za-z_][A-Za-z0-9_]*").
func IsIdentContinue(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// IsIdentStart reports whether r can start an identifier.
func IsIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

// Punctuators is the closed set of multi-character operator spellings,
// ordered longest-first so the lexer's "longest valid prefix" rule (spec.md
// §4.3) can be implemented as a single linear scan.
var Punctuators = []string{
	// Three-character compound assignment forms.
	"+:=", "-:=", "*:=", "/:=", "%:=", "|:=", "&:=", "~:=",
	// Two-character forms.
	"::", ":=", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "..", "->",
	// Single-character forms.
	"+", "-", "*", "/", "%", "^", "=", "<", ">", "!", "~", "&", "|",
	".", ",", ":", ";", "(", ")", "[", "]", "{", "}", "@", "#", "'",
}
