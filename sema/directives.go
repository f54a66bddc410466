package sema

import (
	"github.com/basecode-lang/basecode-sub003/directive"
	"github.com/basecode-lang/basecode-sub003/ir"
)

// directiveEvaluationPass is spec.md §4.7 pass 3: run #if selection,
// #foreign/#intrinsic attachment, and #core_type injection. Per-kind
// logic lives in package directive; this pass walks the graph in source
// order and dispatches to it, rebuilding each block's statement list
// with discarded #if branches (spec.md §4.6) removed.
func (e *Engine) directiveEvaluationPass(program ir.Elem) {
	e.walkBlocks(program, func(block ir.Elem) {
		var kept []ir.Elem
		for _, stmt := range block.Children() {
			replaced, drop := directive.Evaluate(e.Scope, e.Errs, block, stmt)
			if drop {
				continue
			}
			if !replaced.Nil() {
				kept = append(kept, replaced)
			} else {
				kept = append(kept, stmt)
			}
		}
		block.SetChildren(kept)
	})
}
