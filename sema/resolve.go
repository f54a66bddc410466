package sema

import "github.com/basecode-lang/basecode-sub003/ir"

// symbolResolutionPass is spec.md §4.7 pass 2: for every identifier
// reference, find the target identifier via the scope manager and link
// it in (ir.literal.go's OnIsConstant and the later passes all assume a
// resolved KindExprIdentRef has its RHS set to the target Decl).
func (e *Engine) symbolResolutionPass(program ir.Elem) {
	e.walkBlocks(program, func(block ir.Elem) {
		eachStatement(block, func(stmt ir.Elem) {
			e.resolveRefs(block, stmt)
		})
	})
}

// resolveRefs recurses through expr's owned elements in left-to-right
// order (spec.md §5's ordering guarantee), resolving every
// KindExprIdentRef it finds against scope.
func (e *Engine) resolveRefs(scopeElem, expr ir.Elem) {
	if expr.Nil() {
		return
	}
	if expr.Kind() == ir.KindExprIdentRef {
		target, ok := e.Scope.FindIdentifier(scopeElem, expr.Name())
		if !ok {
			e.Errs.Error("C201", "undefined identifier %q", expr.Span(), expr.Name())
			return
		}
		expr.SetRHS(target)
		return
	}
	for _, child := range expr.OnOwnedElements() {
		e.resolveRefs(scopeElem, child)
	}
}
