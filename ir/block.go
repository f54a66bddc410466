package ir

import "github.com/basecode-lang/basecode-sub003/internal/arena"

// blockData holds the per-scope bookkeeping spec.md invariant 2 assigns to
// every block: an identifier map, a type map, child blocks, imports, and a
// defer stack. Kept in a side map off the builder (same shape as
// ast.sideTable) rather than inline in rawElem, since only Block-kind
// elements need it.
type blockData struct {
	identifiers map[string]Elem
	types       map[string]Elem
	childBlocks []Elem
	imports     []Elem
	deferStack  []Elem
}

func (e Elem) block(create bool) *blockData {
	bd, ok := e.b.block[e.ptr]
	if !ok && create {
		bd = &blockData{identifiers: map[string]Elem{}, types: map[string]Elem{}}
		e.b.block[e.ptr] = bd
	}
	return bd
}

// AddIdentifier registers name in this block's identifier map. Returns
// false without modifying the map if name is already bound (spec.md
// invariant 4: "Identifier names are unique within a single scope").
func (e Elem) AddIdentifier(name string, id Elem) bool {
	bd := e.block(true)
	if _, exists := bd.identifiers[name]; exists {
		return false
	}
	bd.identifiers[name] = id
	return true
}

// Identifier looks up name in this block's own identifier map (no
// ascent); ascent/namespace-chase is the scope manager's job.
func (e Elem) Identifier(name string) (Elem, bool) {
	bd := e.block(false)
	if bd == nil {
		return Elem{}, false
	}
	id, ok := bd.identifiers[name]
	return id, ok
}

// Identifiers returns every identifier bound directly in this block.
func (e Elem) Identifiers() map[string]Elem {
	bd := e.block(false)
	if bd == nil {
		return nil
	}
	return bd.identifiers
}

// AddType registers a type under a qualified name in this block's type
// map. Returns false if the name is already bound to a different element
// (spec.md §4.5: "duplicate-name registrations are rejected"); re-adding
// the same element is a no-op success, matching invariant 7's "a type,
// once registered... is interned."
func (e Elem) AddType(name string, t Elem) bool {
	bd := e.block(true)
	if existing, exists := bd.types[name]; exists {
		return existing.ptr == t.ptr
	}
	bd.types[name] = t
	return true
}

// Type looks up name in this block's own type map (no ascent).
func (e Elem) Type(name string) (Elem, bool) {
	bd := e.block(false)
	if bd == nil {
		return Elem{}, false
	}
	t, ok := bd.types[name]
	return t, ok
}

// Types returns every type bound directly in this block.
func (e Elem) Types() map[string]Elem {
	bd := e.block(false)
	if bd == nil {
		return nil
	}
	return bd.types
}

// ChildBlocks returns the blocks directly nested in this one.
func (e Elem) ChildBlocks() []Elem {
	bd := e.block(false)
	if bd == nil {
		return nil
	}
	return bd.childBlocks
}

// AddChildBlock registers child as nested directly in this block.
func (e Elem) AddChildBlock(child Elem) {
	bd := e.block(true)
	bd.childBlocks = append(bd.childBlocks, child)
}

// Imports returns the imports declared directly in this block.
func (e Elem) Imports() []Elem {
	bd := e.block(false)
	if bd == nil {
		return nil
	}
	return bd.imports
}

// AddImport records an import declared in this block.
func (e Elem) AddImport(imp Elem) {
	bd := e.block(true)
	bd.imports = append(bd.imports, imp)
}

// PushDefer pushes a deferred statement onto this block's defer stack.
func (e Elem) PushDefer(stmt Elem) {
	bd := e.block(true)
	bd.deferStack = append(bd.deferStack, stmt)
}

// DeferStack returns this block's deferred statements in push order.
// Popping them LIFO happens during scope emission, a collaborator
// concern this core does not implement; iterate in reverse to do so.
func (e Elem) DeferStack() []Elem {
	bd := e.block(false)
	if bd == nil {
		return nil
	}
	return bd.deferStack
}

// numericKey interns numeric types by (width, signed, float).
type numericKey struct {
	width  int
	signed bool
	float  bool
}

// arrayKey interns array types by (element type, size). A size of -1
// means an unsized/slice-shaped array.
type arrayKey struct {
	elem arena.Pointer[rawElem]
	size int
}
