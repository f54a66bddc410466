// Package sema implements the semantic engine (spec.md §4.7): the fixed
// eight-pass pipeline that turns a lowered element graph into a checked
// program. This is also where on_infer_type and on_fold live (spec.md
// §4.6) — both need the current scope and the engine's own pass state,
// which is why they are ordinary functions here operating on ir.Elem's
// public API rather than ir.Elem methods (see DESIGN.md's "ir" entry for
// the full circular-import rationale).
//
// Grounded on protocompile's multi-pass linker (`experimental/linker` —
// symbol table construction, then per-file resolution, then validation,
// each a separate traversal over the same AST/IR rather than one
// monolithic walk) translated onto spec.md's own named eight passes.
package sema

import (
	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/scope"
)

// (finalizeConfig and WithCollaborators are defined in finalize.go,
// alongside the pass that consumes them.)

// maxTypeDeclFixpointIterations bounds pass 1's repeat-to-fixpoint loop
// (spec.md §4.7 pass 1: "limited to N iterations").
const maxTypeDeclFixpointIterations = 16

// Engine runs the semantic pipeline over one session's element graph.
type Engine struct {
	Builder *ir.Builder
	Scope   *scope.Manager
	Errs    *report.Report

	unknownType ir.Elem
	collab      finalizeConfig
}

// NewEngine creates a semantic engine bound to builder/scope/errs. The
// caller must already have lowered the AST into a program-rooted element
// graph via builder and registered its blocks with scope.
func NewEngine(builder *ir.Builder, mgr *scope.Manager, errs *report.Report) *Engine {
	return &Engine{
		Builder:     builder,
		Scope:       mgr,
		Errs:        errs,
		unknownType: builder.MakeUnknownType(mgr.Root().Span()),
	}
}

// Run executes all eight passes in order over program. It does not stop
// early on error within a pass (each pass is pessimistic, per spec.md
// §4.7), but later passes still run over whatever the graph looks like
// after an earlier pass recorded errors — spec.md's "session fails
// overall if any error is recorded" is a final check, not a per-pass
// short-circuit.
func (e *Engine) Run(program ir.Elem) {
	e.typeDeclarationPass(program)
	e.symbolResolutionPass(program)
	e.directiveEvaluationPass(program)
	e.typeInferencePass(program)
	e.constantFoldingPass(program)
	e.overloadResolutionPass(program)
	e.typeCheckPass(program)
	e.finalizationPass(program)
}

// Succeeded reports whether the session completed with zero errors
// recorded (spec.md §4.7: "the session is successful iff no error was
// reported").
func (e *Engine) Succeeded() bool {
	return !e.Errs.HasErrors()
}

// walkBlocks visits every block reachable from program in source order
// (spec.md §5 "within one pass, elements are visited in program order"),
// calling visit once for each block.
func (e *Engine) walkBlocks(program ir.Elem, visit func(block ir.Elem)) {
	e.Scope.VisitBlocks(program, func(b ir.Elem) bool {
		visit(b)
		return true
	})
}

// eachStatement walks a block's owned statement children in source
// order, recursing into nested expression trees via fn's own logic.
func eachStatement(block ir.Elem, fn func(stmt ir.Elem)) {
	for _, child := range block.Children() {
		fn(child)
	}
}
