package ir

import (
	"github.com/basecode-lang/basecode-sub003/internal/arena"
	"github.com/basecode-lang/basecode-sub003/source"
)

// rawElem is the pooled storage for one element (spec.md §3 "Element").
//
// Rather than one Go struct (or interface) per element kind, every
// element shares this single backing layout; Kind selects which fields
// are meaningful, and capability dispatch (sema's inferType/fold, and
// this package's OnAsXxx/OnEquals/etc.) switches on Kind to interpret
// them. This mirrors ast.rawNode's shape — the same "closed tagged union
// over one pool" answer to spec.md's Design Notes §9 guidance, applied a
// second time to the IR layer.
type rawElem struct {
	kind Kind
	span source.Span

	parentScope arena.Pointer[rawElem] // enclosing block; nil for the program root.
	parentElem  arena.Pointer[rawElem] // owner, for on_owned_elements enumeration.
	module      arena.Pointer[rawElem]

	lhs, rhs arena.Pointer[rawElem]
	children []arena.Pointer[rawElem]

	// Cached semantic-pass results.
	resolvedType arena.Pointer[rawElem]
	foldedValue  arena.Pointer[rawElem]
	noFold       bool
	isConstBind  bool // declared via '::' (spec.md §4.6 "marked constant").

	// Literal / name payload. Only the field matching Kind is meaningful.
	name     string // identifier/symbol/field/type name.
	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	runeVal  rune
	strVal   string

	// Numeric type payload (KindTypeNumeric).
	numWidth  int
	numSigned bool
	numFloat  bool

	// Composite type payload (KindTypeComposite).
	compositeKind CompositeKind

	// Procedure type payload.
	foreign    bool
	intrinsic  string // non-empty if bound via #intrinsic.
	shouldEmit bool

	uniformCall bool // call node parsed via UFCS (mirrors ast.Node.UniformCall).
}

// Elem is a handle to one element. The zero Elem is Nil.
type Elem struct {
	b   *Builder
	ptr arena.Pointer[rawElem]
}

func (e Elem) raw() *rawElem { return e.ptr.In(&e.b.elems) }

// Nil reports whether this is the zero Elem.
func (e Elem) Nil() bool { return e.b == nil || e.ptr.Nil() }

// Kind returns the element's tag.
func (e Elem) Kind() Kind {
	if e.Nil() {
		return KindInvalid
	}
	return e.raw().kind
}

// Span returns the element's source location.
func (e Elem) Span() source.Span {
	if e.Nil() {
		return source.Span{}
	}
	return e.raw().span
}

// ParentScope returns the innermost enclosing block, or Nil for the
// program root (spec.md invariant 1).
func (e Elem) ParentScope() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().parentScope}
}

// SetParentScope sets the element's enclosing block.
func (e Elem) SetParentScope(scope Elem) { e.raw().parentScope = scope.ptr }

// ParentElem returns the owning element (spec.md §3 "parent element for
// ownership enumeration").
func (e Elem) ParentElem() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().parentElem}
}

// SetParentElem sets the owning element.
func (e Elem) SetParentElem(owner Elem) { e.raw().parentElem = owner.ptr }

// Module returns the owning module element.
func (e Elem) Module() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().module}
}

// SetModule sets the owning module element.
func (e Elem) SetModule(m Elem) { e.raw().module = m.ptr }

// LHS returns the element's primary left child.
func (e Elem) LHS() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().lhs}
}

// SetLHS sets the element's primary left child.
func (e Elem) SetLHS(v Elem) { e.raw().lhs = v.ptr }

// RHS returns the element's primary right child.
func (e Elem) RHS() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().rhs}
}

// SetRHS sets the element's primary right child.
func (e Elem) SetRHS(v Elem) { e.raw().rhs = v.ptr }

// Children returns the element's ordered additional children.
func (e Elem) Children() []Elem {
	if e.Nil() {
		return nil
	}
	raw := e.raw().children
	out := make([]Elem, len(raw))
	for i, p := range raw {
		out[i] = Elem{e.b, p}
	}
	return out
}

// AppendChild appends a child.
func (e Elem) AppendChild(child Elem) {
	raw := e.raw()
	raw.children = append(raw.children, child.ptr)
}

// SetChildren overwrites the element's full children list — used by
// directive evaluation to drop discarded #if branches from the graph.
func (e Elem) SetChildren(children []Elem) {
	raw := e.raw()
	raw.children = raw.children[:0]
	for _, c := range children {
		raw.children = append(raw.children, c.ptr)
	}
}

// ReplaceChild overwrites the child at index i — the "on_apply_fold_result"
// hook spec.md §4.7 describes, letting a parent substitute a folded
// constant for one of its children in place.
func (e Elem) ReplaceChild(i int, child Elem) {
	raw := e.raw()
	if i >= 0 && i < len(raw.children) {
		raw.children[i] = child.ptr
	}
}

// Name returns the element's identifier/symbol/field/type name.
func (e Elem) Name() string {
	if e.Nil() {
		return ""
	}
	return e.raw().name
}

// SetName sets the element's name.
func (e Elem) SetName(name string) { e.raw().name = name }

// RawString returns the element's auxiliary string payload — the
// #foreign symbol name or the #language raw block text, neither of
// which is a KindLitString literal so OnAsString does not cover them.
func (e Elem) RawString() string {
	if e.Nil() {
		return ""
	}
	return e.raw().strVal
}

// ResolvedType returns the cached inferred/declared type, if the type
// inference pass has already run for this element.
func (e Elem) ResolvedType() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().resolvedType}
}

// SetResolvedType caches this element's inferred type.
func (e Elem) SetResolvedType(t Elem) { e.raw().resolvedType = t.ptr }

// FoldedValue returns the cached constant-folding result, if any.
func (e Elem) FoldedValue() Elem {
	if e.Nil() {
		return Elem{}
	}
	return Elem{e.b, e.raw().foldedValue}
}

// SetFoldedValue caches this element's folded constant value.
func (e Elem) SetFoldedValue(v Elem) { e.raw().foldedValue = v.ptr }

// NoFold reports whether a `no_fold` attribute suppressed folding for this
// element (spec.md §4.6 "Folding respects a no_fold attribute").
func (e Elem) NoFold() bool {
	if e.Nil() {
		return false
	}
	return e.raw().noFold
}

// SetNoFold marks this element as exempt from constant folding.
func (e Elem) SetNoFold(v bool) { e.raw().noFold = v }

// IsConstBinding reports whether this declaration was bound with `::`
// (spec.md §4.6: "Identifier references fold through their initializer if
// the identifier is marked constant").
func (e Elem) IsConstBinding() bool {
	if e.Nil() {
		return false
	}
	return e.raw().isConstBind
}

// SetConstBinding marks a declaration as a compile-time constant binding.
func (e Elem) SetConstBinding(v bool) { e.raw().isConstBind = v }

// UniformCall reports whether this call element originated from UFCS
// desugaring.
func (e Elem) UniformCall() bool {
	if e.Nil() {
		return false
	}
	return e.raw().uniformCall
}

// SetUniformCall marks this call element as UFCS-desugared.
func (e Elem) SetUniformCall(v bool) { e.raw().uniformCall = v }

// OnOwnedElements enumerates the child elements this node owns (spec.md
// §4.6 "on_owned_elements"), used by traversal and lifetime analysis.
func (e Elem) OnOwnedElements() []Elem {
	if e.Nil() {
		return nil
	}
	var out []Elem
	if l := e.LHS(); !l.Nil() {
		out = append(out, l)
	}
	if r := e.RHS(); !r.Nil() {
		out = append(out, r)
	}
	out = append(out, e.Children()...)
	return out
}

// Builder is the element builder (spec.md §4.5): the sole factory for
// element creation. It owns every element in an arena, keeps the
// interning caches for types/symbols/singleton literals, and is
// responsible for wiring parent-scope/parent-element/module links.
type Builder struct {
	elems arena.Arena[rawElem]
	block map[arena.Pointer[rawElem]]*blockData

	// Interning caches (spec.md invariants 5 and 7).
	singletons   map[Kind]Elem // true / false / nil / uninitialized (the last is the `_` value sink).
	pointerCache map[arena.Pointer[rawElem]]Elem
	numericCache map[numericKey]Elem
	arrayCache   map[arrayKey]Elem
}

// NewBuilder creates an empty element builder.
func NewBuilder() *Builder {
	return &Builder{
		block:        map[arena.Pointer[rawElem]]*blockData{},
		singletons:   map[Kind]Elem{},
		pointerCache: map[arena.Pointer[rawElem]]Elem{},
		numericCache: map[numericKey]Elem{},
		arrayCache:   map[arrayKey]Elem{},
	}
}

// new allocates a fresh element with the given kind and span, parented
// under the builder's bookkeeping; callers are responsible for setting
// LHS/RHS/children/name/payload afterward.
func (b *Builder) new(kind Kind, span source.Span) Elem {
	ptr := b.elems.New(rawElem{kind: kind, span: span})
	return Elem{b, ptr}
}
