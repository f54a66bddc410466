package token

import (
	"github.com/basecode-lang/basecode-sub003/source"
)

// ID identifies one token occurrence within a Pool's stream. The zero value
// is invalid.
type ID uint32

// descKey is the (kind, lexeme) interning key for a Descriptor, per spec.md
// §3: "Tokens are interned by (kind, lexeme) in a token pool ... equality
// is identity."
type descKey struct {
	kind   Kind
	lexeme string
}

// Descriptor is the interned (kind, lexeme) identity of a token's spelling,
// shared by every occurrence with the same kind and text. Two occurrences
// of the keyword "if" in the same session point at the same *Descriptor;
// comparing descriptor pointers is how "equality is identity" is realized
// without requiring every occurrence of a common keyword to duplicate
// storage for its lexeme.
type Descriptor struct {
	kind    Kind
	lexeme  string
	keyword Keyword // NotKeyword unless kind == Keyword
}

// Kind returns the token kind this descriptor was interned under.
func (d *Descriptor) Kind() Kind { return d.kind }

// Lexeme returns the interned text.
func (d *Descriptor) Lexeme() string { return d.lexeme }

// Keyword returns the keyword this descriptor represents, or NotKeyword.
func (d *Descriptor) Keyword() Keyword { return d.keyword }

// occurrence is one lexed token: a reference to its interned spelling plus
// per-occurrence data (radix, numeric classification, location) that
// cannot be shared across occurrences.
type occurrence struct {
	desc     *Descriptor
	radix    Radix
	numClass NumClass
	loc      source.Span
}

// Pool is the session-scoped token pool described in spec.md §4.2: it
// interns (kind, lexeme) descriptors and stores the per-occurrence stream
// of tokens produced by lexing. A Pool's occurrence addresses (via ID) are
// stable for the lifetime of the session that owns it.
type Pool struct {
	descriptors map[descKey]*Descriptor
	stream      []occurrence
}

// NewPool creates a Pool with every keyword and punctuator canonically
// preallocated, per spec.md §4.2: "Canonical tokens for every keyword and
// punctuator are statically preallocated."
func NewPool() *Pool {
	p := &Pool{descriptors: make(map[descKey]*Descriptor, 128)}
	for kw, text := range keywordText {
		p.descriptors[descKey{Keyword, text}] = &Descriptor{kind: Keyword, lexeme: text, keyword: kw}
	}
	for _, punct := range Punctuators {
		p.descriptors[descKey{Punct, punct}] = &Descriptor{kind: Punct, lexeme: punct}
	}
	// index 0 is reserved as the invalid ID; push a sentinel occurrence.
	p.stream = append(p.stream, occurrence{})
	return p
}

// Intern returns the canonical Descriptor for (kind, lexeme), allocating one
// on first request. Variable tokens (identifiers, numeric and string
// literals) are allocated per lex call, as spec.md §4.2 requires, but still
// get a stable descriptor identity if the same text recurs.
func (p *Pool) Intern(kind Kind, lexeme string) *Descriptor {
	key := descKey{kind, lexeme}
	if d, ok := p.descriptors[key]; ok {
		return d
	}
	d := &Descriptor{kind: kind, lexeme: lexeme}
	if kind == Ident {
		if kw, ok := Lookup(lexeme); ok {
			d.kind, d.keyword = Keyword, kw
		}
	}
	p.descriptors[key] = d
	return d
}

// Push records a new token occurrence and returns its stable ID.
func (p *Pool) Push(desc *Descriptor, radix Radix, numClass NumClass, loc source.Span) ID {
	p.stream = append(p.stream, occurrence{desc: desc, radix: radix, numClass: numClass, loc: loc})
	return ID(len(p.stream) - 1)
}

// Len returns the number of occurrences pushed so far (not counting the
// sentinel at index 0).
func (p *Pool) Len() int { return len(p.stream) - 1 }

// At returns the Token value for a given ID. IDs outside [1, Len()] panic,
// mirroring the arena package's bounds-checking behavior.
func (p *Pool) At(id ID) Token {
	if id == 0 || int(id) >= len(p.stream) {
		panic("basecode/token: invalid token id")
	}
	return Token{pool: p, id: id}
}

// Token is a handle to one occurrence in a Pool. The zero Token is invalid
// (Nil() is true).
type Token struct {
	pool *Pool
	id   ID
}

// Nil reports whether this is the zero Token.
func (t Token) Nil() bool { return t.pool == nil || t.id == 0 }

// ID returns the stable occurrence id.
func (t Token) ID() ID { return t.id }

func (t Token) occ() occurrence { return t.pool.stream[t.id] }

// Kind returns the token's kind.
func (t Token) Kind() Kind {
	if t.Nil() {
		return Invalid
	}
	return t.occ().desc.kind
}

// Lexeme returns the token's literal text.
func (t Token) Lexeme() string {
	if t.Nil() {
		return ""
	}
	return t.occ().desc.lexeme
}

// Keyword returns the keyword this token spells, or NotKeyword.
func (t Token) Keyword() Keyword {
	if t.Nil() {
		return NotKeyword
	}
	return t.occ().desc.keyword
}

// Radix returns the numeric radix (only meaningful for Kind() == Number).
func (t Token) Radix() Radix {
	if t.Nil() {
		return NoRadix
	}
	return t.occ().radix
}

// NumClass returns the numeric classification (only meaningful for Kind()
// == Number).
func (t Token) NumClass() NumClass {
	if t.Nil() {
		return NotNumeric
	}
	return t.occ().numClass
}

// Span returns the token's source location.
func (t Token) Span() source.Span {
	if t.Nil() {
		return source.Span{}
	}
	return t.occ().loc
}

// Descriptor returns the token's interned spelling identity. Comparing two
// tokens' descriptors with == implements spec.md §3's "equality is
// identity" for tokens with the same kind and text.
func (t Token) Descriptor() *Descriptor {
	if t.Nil() {
		return nil
	}
	return t.occ().desc
}

// SameSpelling reports whether t and other share the same interned
// (kind, lexeme) identity.
func (t Token) SameSpelling(other Token) bool {
	return t.Descriptor() == other.Descriptor()
}
