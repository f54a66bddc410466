// Package scope implements the scope manager (spec.md §4.5 "Scope
// manager"): the current-block stack, symbol/type lookup with
// walk-upward-then-namespace-chase semantics, and pointer-type interning
// delegated to the element builder.
//
// scope depends on ir (it operates entirely through ir.Elem's public
// block-accessor API) but ir never depends back on scope — see
// DESIGN.md's "ir" entry for why on_infer_type/on_fold live in sema
// instead of here or in ir.
//
// Grounded on the retrieval pack's standalone symbol-table file
// (other_examples, a scope/symbol package for a similar small-language
// compiler): a parent-linked Scope type with a name index and a explicit
// push/pop stack, adapted here onto ir.Elem blocks instead of a separate
// Scope struct, since ir.Elem already carries the per-block bookkeeping
// invariant 2 requires.
package scope

import (
	"errors"
	"strings"

	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/source"
)

// ErrDuplicateType is returned by AddTypeToScope when a different type is
// already registered under the same name in the target scope.
var ErrDuplicateType = errors.New("scope: type already registered under this name")

// Manager is the scope manager: the current block stack plus lookup
// operations over it.
type Manager struct {
	builder *ir.Builder
	stack   []ir.Elem
	root    ir.Elem
}

// NewManager creates a scope manager rooted at root (the program block).
func NewManager(builder *ir.Builder, root ir.Elem) *Manager {
	return &Manager{builder: builder, stack: []ir.Elem{root}, root: root}
}

// CurrentScope returns the innermost block.
func (m *Manager) CurrentScope() ir.Elem {
	if len(m.stack) == 0 {
		return ir.Elem{}
	}
	return m.stack[len(m.stack)-1]
}

// PushScope pushes block as the new innermost scope, synchronized with
// the parser's own scope stack during lowering.
func (m *Manager) PushScope(block ir.Elem) {
	m.stack = append(m.stack, block)
}

// PopScope pops the innermost scope.
func (m *Manager) PopScope() {
	if len(m.stack) > 1 { // never pop the root.
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// Root returns the program root block.
func (m *Manager) Root() ir.Elem { return m.root }

// splitQualified splits a spec.md invariant-6 qualified name
// (`ns1::ns2::...::name`) into its namespace path and final name.
func splitQualified(qualified string) (namespaces []string, name string) {
	parts := strings.Split(qualified, "::")
	if len(parts) == 1 {
		return nil, parts[0]
	}
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// FindIdentifier resolves qualifiedSymbol using walk-upward-then-
// namespace-chase semantics (spec.md §4.5): starting at from (the
// caller's current scope), check that block's identifier map; if the
// symbol is qualified, chase the namespace path from wherever the first
// namespace segment is found; otherwise ascend to parent scopes until
// found or the root is reached.
func (m *Manager) FindIdentifier(from ir.Elem, qualifiedSymbol string) (ir.Elem, bool) {
	namespaces, name := splitQualified(qualifiedSymbol)
	if len(namespaces) == 0 {
		return m.findUnqualified(from, name)
	}

	nsScope, ok := m.findUnqualified(from, namespaces[0])
	if !ok {
		return ir.Elem{}, false
	}
	cur := nsScope
	for _, seg := range namespaces[1:] {
		next, ok := cur.Identifier(seg)
		if !ok {
			return ir.Elem{}, false
		}
		cur = next
	}
	return cur.Identifier(name)
}

// findUnqualified ascends from scope to the root, checking each block's
// own identifier map in turn.
func (m *Manager) findUnqualified(scope ir.Elem, name string) (ir.Elem, bool) {
	for cur := scope; !cur.Nil(); cur = cur.ParentScope() {
		if id, ok := cur.Identifier(name); ok {
			return id, true
		}
	}
	return ir.Elem{}, false
}

// FindType is the type-map analogue of FindIdentifier; callers should
// substitute ir's unknown-type singleton when ok is false (spec.md §4.5:
// "unresolved queries return unknown_type").
func (m *Manager) FindType(from ir.Elem, qualifiedSymbol string) (ir.Elem, bool) {
	namespaces, name := splitQualified(qualifiedSymbol)
	if len(namespaces) == 0 {
		return m.findTypeUnqualified(from, name)
	}

	nsScope, ok := m.findUnqualified(from, namespaces[0])
	if !ok {
		return ir.Elem{}, false
	}
	cur := nsScope
	for _, seg := range namespaces[1:] {
		next, ok := cur.Identifier(seg)
		if !ok {
			return ir.Elem{}, false
		}
		cur = next
	}
	return cur.Type(name)
}

func (m *Manager) findTypeUnqualified(scope ir.Elem, name string) (ir.Elem, bool) {
	for cur := scope; !cur.Nil(); cur = cur.ParentScope() {
		if t, ok := cur.Type(name); ok {
			return t, true
		}
	}
	return ir.Elem{}, false
}

// FindPointerType interns a pointer type over base, delegating to the
// element builder's pointer cache (spec.md invariant 7/8).
func (m *Manager) FindPointerType(span source.Span, base ir.Elem) ir.Elem {
	return m.builder.MakePointerType(span, base)
}

// AddTypeToScope registers t under name in scope's type map (the current
// scope if scope is the zero Elem). Returns ErrDuplicateType if a
// different type is already registered under name.
func (m *Manager) AddTypeToScope(scope ir.Elem, name string, t ir.Elem) error {
	if scope.Nil() {
		scope = m.CurrentScope()
	}
	if !scope.AddType(name, t) {
		return ErrDuplicateType
	}
	return nil
}

// VisitBlocks performs a top-down preorder traversal over all blocks
// reachable from root (the program root if root is the zero Elem),
// invoking pred per block; it aborts as soon as pred returns false.
func (m *Manager) VisitBlocks(root ir.Elem, pred func(ir.Elem) bool) {
	if root.Nil() {
		root = m.root
	}
	m.visit(root, pred)
}

func (m *Manager) visit(block ir.Elem, pred func(ir.Elem) bool) bool {
	if !pred(block) {
		return false
	}
	for _, child := range block.ChildBlocks() {
		if !m.visit(child, pred) {
			return false
		}
	}
	return true
}
