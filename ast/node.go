// Package ast implements the Basecode AST builder and Pratt parser
// (spec.md §4.4): a typed, arena-owned node graph produced from a
// token.Pool's stream.
//
// The context-owns-storage shape (a Builder that owns every node in a
// growable arena and hands out small handle values referencing it) is
// adapted from the teacher's experimental/ast package (Context/Token/Decl
// wrapper-over-arena-pointer pattern); the grammar itself is new: a
// classic Pratt (top-down operator precedence) expression parser with
// prefix/infix parselet tables, rather than protocompile's
// recursive-descent declaration grammar, because spec.md §4.4 specifies
// Pratt parsing explicitly.
package ast

import (
	"github.com/basecode-lang/basecode-sub003/internal/arena"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

// Kind tags an AST node (spec.md §3 "AST node").
type Kind uint8

const (
	KindInvalid Kind = iota

	// Literals.
	KindLiteralBool
	KindLiteralInt
	KindLiteralFloat
	KindLiteralChar
	KindLiteralString
	KindLiteralNil

	// Expressions.
	KindIdent
	KindQualifiedIdent
	KindUnary
	KindBinary
	KindAssign
	KindCast
	KindTransmute
	KindArrayConstructor
	KindTupleConstructor
	KindTypeConstructor
	KindCall
	KindArgList
	KindArgPair
	KindSubscript
	KindMember
	KindSpread
	KindComma // right-leaning pair tree, later flattened by Flatten.
	KindKeyValue
	KindPointerDeref
	KindPointerType
	KindArrayType
	KindMapType
	KindTupleType
	KindFamilyType
	KindNumericType
	KindProcType

	// Declarations & bindings.
	KindDecl
	KindField
	KindInitializer
	KindAssignTarget

	// Control flow.
	KindBlock
	KindStatement
	KindIf
	KindWhile
	KindForIn
	KindSwitch
	KindCase
	KindFallthrough
	KindBreak
	KindContinue
	KindReturn
	KindDefer
	KindWith
	KindYield
	KindLabelDecl

	// Module-level.
	KindModule
	KindNamespace
	KindImport
	KindProgram

	// Directives.
	KindDirective

	// Attributes.
	KindAttributeUse

	// Intrinsics (parsed as ordinary calls to a keyword identifier; tagged
	// distinctly only once the semantic engine recognizes the name).
	KindIntrinsicCall

	// Empty statement (bare ';').
	KindEmpty
)

// rawNode is the pooled storage for one AST node.
type rawNode struct {
	kind Kind
	tok  token.Token // binding token, if any (operator, keyword, identifier).
	span source.Span

	lhs, rhs arena.Pointer[rawNode]
	children []arena.Pointer[rawNode]
}

// sideTable holds the optional, less-common per-node data described in
// spec.md §3: "A side-table records optional labels, comments, attributes,
// and a uniform-call flag." Kept out of rawNode to keep the common case
// small, matching the teacher's habit of hoisting uncommon fields into a
// side map (see Context.literals in experimental/ast/context.go).
type sideTable struct {
	label       string
	comments    []string
	attributes  []Node
	uniformCall bool
}

// Builder owns every AST node produced while lowering one source file, plus
// the lexical-context stacks the parser's parselets consult (spec.md
// §4.4's "scope, switch, case, with, member-access" stacks).
type Builder struct {
	nodes arena.Arena[rawNode]
	side  map[arena.Pointer[rawNode]]*sideTable

	fs   *source.FileSet
	file source.FileID
	pool *token.Pool

	scopeStack        []Node // enclosing block nodes, innermost last.
	switchStack       []Node
	caseStack         []Node
	withStack         []Node
	memberAccessStack []Node // non-empty while parsing a postfix chain after '.'

	nextID uint32
}

// NewBuilder creates a Builder for one file's lowering.
func NewBuilder(fs *source.FileSet, file source.FileID, pool *token.Pool) *Builder {
	return &Builder{fs: fs, file: file, pool: pool, side: map[arena.Pointer[rawNode]]*sideTable{}}
}

// Node is a handle to one AST node. The zero Node is Nil.
type Node struct {
	b   *Builder
	ptr arena.Pointer[rawNode]
}

// Nil reports whether this is the zero Node.
func (n Node) Nil() bool { return n.b == nil || n.ptr.Nil() }

func (n Node) raw() *rawNode { return n.ptr.In(&n.b.nodes) }

// Kind returns the node's tag.
func (n Node) Kind() Kind {
	if n.Nil() {
		return KindInvalid
	}
	return n.raw().kind
}

// Token returns the node's binding token, if any.
func (n Node) Token() token.Token {
	if n.Nil() {
		return token.Token{}
	}
	return n.raw().tok
}

// Span returns the node's source location.
func (n Node) Span() source.Span {
	if n.Nil() {
		return source.Span{}
	}
	return n.raw().span
}

// LHS returns the node's primary left child.
func (n Node) LHS() Node {
	if n.Nil() {
		return Node{}
	}
	return Node{n.b, n.raw().lhs}
}

// RHS returns the node's primary right child.
func (n Node) RHS() Node {
	if n.Nil() {
		return Node{}
	}
	return Node{n.b, n.raw().rhs}
}

// Children returns the node's ordered list of additional children (e.g.
// block statements, call arguments after the first).
func (n Node) Children() []Node {
	if n.Nil() {
		return nil
	}
	raw := n.raw().children
	out := make([]Node, len(raw))
	for i, p := range raw {
		out[i] = Node{n.b, p}
	}
	return out
}

// AppendChild appends a child node.
func (n Node) AppendChild(child Node) {
	raw := n.raw()
	raw.children = append(raw.children, child.ptr)
}

func (n Node) side(create bool) *sideTable {
	st, ok := n.b.side[n.ptr]
	if !ok && create {
		st = &sideTable{}
		n.b.side[n.ptr] = st
	}
	return st
}

// Label returns the node's leading label, if one was attached.
func (n Node) Label() string {
	if st := n.side(false); st != nil {
		return st.label
	}
	return ""
}

// SetLabel attaches a label.
func (n Node) SetLabel(label string) { n.side(true).label = label }

// Comments returns comments attached to this node.
func (n Node) Comments() []string {
	if st := n.side(false); st != nil {
		return st.comments
	}
	return nil
}

// AddComment attaches a comment.
func (n Node) AddComment(c string) { n.side(true).comments = append(n.side(true).comments, c) }

// Attributes returns attributes attached to this node.
func (n Node) Attributes() []Node {
	if st := n.side(false); st != nil {
		return st.attributes
	}
	return nil
}

// AddAttribute attaches an attribute.
func (n Node) AddAttribute(a Node) { n.side(true).attributes = append(n.side(true).attributes, a) }

// UniformCall reports whether this call node was parsed via uniform
// function call syntax, i.e. `a.f(b)` (spec.md §4.4 "UFCS").
func (n Node) UniformCall() bool {
	if st := n.side(false); st != nil {
		return st.uniformCall
	}
	return false
}

// SetUniformCall marks this call node as UFCS-desugared.
func (n Node) SetUniformCall() { n.side(true).uniformCall = true }

// newNode allocates a fresh node with a monotonically increasing id
// (spec.md §4.4: "assigns monotonically increasing ids").
func (b *Builder) newNode(kind Kind, tok token.Token, span source.Span) Node {
	b.nextID++
	ptr := b.nodes.New(rawNode{kind: kind, tok: tok, span: span})
	return Node{b, ptr}
}

// New constructs a node with the given kind, binding token, and children.
func (b *Builder) New(kind Kind, tok token.Token, span source.Span, lhs, rhs Node, children ...Node) Node {
	n := b.newNode(kind, tok, span)
	raw := n.raw()
	raw.lhs, raw.rhs = lhs.ptr, rhs.ptr
	for _, c := range children {
		raw.children = append(raw.children, c.ptr)
	}
	return n
}

// PushScope pushes block onto the builder's scope stack.
func (b *Builder) PushScope(block Node) { b.scopeStack = append(b.scopeStack, block) }

// PopScope pops the innermost scope.
func (b *Builder) PopScope() {
	if len(b.scopeStack) > 0 {
		b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	}
}

// CurrentScope returns the innermost pushed block, or the zero Node.
func (b *Builder) CurrentScope() Node {
	if len(b.scopeStack) == 0 {
		return Node{}
	}
	return b.scopeStack[len(b.scopeStack)-1]
}

// PushSwitch / PopSwitch / CurrentSwitch manage the switch-statement stack,
// consulted by `case`/`fallthrough` parselets.
func (b *Builder) PushSwitch(n Node) { b.switchStack = append(b.switchStack, n) }
func (b *Builder) PopSwitch() {
	if len(b.switchStack) > 0 {
		b.switchStack = b.switchStack[:len(b.switchStack)-1]
	}
}
func (b *Builder) CurrentSwitch() Node {
	if len(b.switchStack) == 0 {
		return Node{}
	}
	return b.switchStack[len(b.switchStack)-1]
}

// PushCase / PopCase / CurrentCase manage the case-clause stack.
func (b *Builder) PushCase(n Node) { b.caseStack = append(b.caseStack, n) }
func (b *Builder) PopCase() {
	if len(b.caseStack) > 0 {
		b.caseStack = b.caseStack[:len(b.caseStack)-1]
	}
}
func (b *Builder) CurrentCase() Node {
	if len(b.caseStack) == 0 {
		return Node{}
	}
	return b.caseStack[len(b.caseStack)-1]
}

// PushWith / PopWith / CurrentWith manage the `with` stack.
func (b *Builder) PushWith(n Node) { b.withStack = append(b.withStack, n) }
func (b *Builder) PopWith() {
	if len(b.withStack) > 0 {
		b.withStack = b.withStack[:len(b.withStack)-1]
	}
}
func (b *Builder) CurrentWith() Node {
	if len(b.withStack) == 0 {
		return Node{}
	}
	return b.withStack[len(b.withStack)-1]
}

// PushMemberAccess / PopMemberAccess / InMemberAccess manage the
// member-access stack that the call parselet consults to detect UFCS
// (spec.md §4.4).
func (b *Builder) PushMemberAccess(n Node) { b.memberAccessStack = append(b.memberAccessStack, n) }
func (b *Builder) PopMemberAccess() {
	if len(b.memberAccessStack) > 0 {
		b.memberAccessStack = b.memberAccessStack[:len(b.memberAccessStack)-1]
	}
}
func (b *Builder) InMemberAccess() bool { return len(b.memberAccessStack) > 0 }
func (b *Builder) CurrentMemberAccess() Node {
	if len(b.memberAccessStack) == 0 {
		return Node{}
	}
	return b.memberAccessStack[len(b.memberAccessStack)-1]
}

// Flatten walks a right-leaning comma-pair tree (built by the comma infix
// parselet, spec.md §4.4) and returns its elements in left-to-right order.
func Flatten(n Node) []Node {
	var out []Node
	for !n.Nil() && n.Kind() == KindComma {
		out = append(out, n.LHS())
		n = n.RHS()
	}
	if !n.Nil() {
		out = append(out, n)
	}
	return out
}
