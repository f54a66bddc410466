// Package directive implements the evaluate/execute phases spec.md
// §4.6 "Directives" describes for #type, #foreign, #intrinsic,
// #assembly, #run, #if/#elif/#else, #language, and #core_type.
//
// Evaluate runs during the semantic engine's directive-evaluation pass
// (spec.md §4.7 pass 3) and needs only the graph and the scope manager.
// Execute runs later — for #foreign during finalization (it needs the
// FFI collaborator to resolve a real symbol address) and for #run during
// finalization (it needs the VM collaborator to actually evaluate the
// expression) — so Execute takes the collab interfaces directly rather
// than a whole session, keeping this package's dependency surface to
// ir/scope/intrinsic/collab/report only (no dependency on sema, which
// depends on this package instead).
//
// Grounded on the same protocompile multi-phase-resolution shape
// sema/engine.go cites, narrowed to directive-kind dispatch; the
// evaluate/execute naming itself is spec.md's own.
package directive

import (
	"github.com/basecode-lang/basecode-sub003/collab"
	"github.com/basecode-lang/basecode-sub003/intrinsic"
	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/scope"
)

// Evaluate handles one block statement that may wrap a directive
// element. drop reports that the statement (and any discarded #if
// branches) should be removed from the graph; replacement, when
// non-nil, is the statement that should take stmt's place (the selected
// #if/#elif/#else branch's body).
func Evaluate(mgr *scope.Manager, errs *report.Report, block, stmt ir.Elem) (replacement ir.Elem, drop bool) {
	dir := stmt
	if stmt.Kind() == ir.KindStatement {
		dir = stmt.LHS()
	}
	switch dir.Kind() {
	case ir.KindDirIf:
		return evaluateIf(errs, dir)
	case ir.KindDirForeign:
		dir.LHS().SetForeign(true)
	case ir.KindDirIntrinsic:
		procType := dir.LHS()
		procType.SetIntrinsicName(dir.Name())
		intrinsic.Register(dir.Name(), procType)
	case ir.KindDirCoreType:
		typeDecl := dir.LHS()
		if err := mgr.AddTypeToScope(mgr.Root(), typeDecl.Name(), typeDecl); err != nil {
			errs.Error("C301", "core type injection failed for %q: %v", dir.Span(), typeDecl.Name(), err)
		}
	case ir.KindDirType:
		// "ensures T is known; no code generated" — the type-declaration
		// pass (sema pass 1) already performs the "known" check via
		// resolveTypeBases; nothing further happens at evaluate time.
	case ir.KindDirLanguage:
		// Tagged with a target language; its arguments come from string
		// literals at lowering time, and nothing is evaluated or validated.
	case ir.KindDirAssembly:
		dir.SetShouldEmit(false)
	}
	return ir.Elem{}, false
}

// evaluateIf selects at most one branch of a #if/#elif/#else chain. The
// condition must fold to a constant boolean; #if conditions are
// evaluated ahead of the general constant-folding pass, so only
// already-literal conditions are accepted here.
func evaluateIf(errs *report.Report, dir ir.Elem) (ir.Elem, bool) {
	cond := dir.LHS()
	v, ok := cond.OnAsBool()
	if !ok {
		errs.Error("C302", "#if condition must fold to a constant boolean", cond.Span())
		return ir.Elem{}, true
	}
	if v {
		return dir.RHS(), false
	}
	children := dir.Children()
	for _, elif := range children {
		if elif.Kind() != ir.KindDirIf {
			continue // trailing #else body, not a further #elif branch.
		}
		if ev, ok := elif.LHS().OnAsBool(); ok && ev {
			return elif.RHS(), false
		}
	}
	if n := len(children); n > 0 && children[n-1].Kind() != ir.KindDirIf {
		return children[n-1], false // #else body.
	}
	return ir.Elem{}, true
}

// ExecuteForeign resolves a #foreign-bound procedure's symbol address via
// the FFI collaborator (spec.md §4.6: "resolves the symbol via the FFI
// collaborator during execute").
func ExecuteForeign(ffi collab.FFI, errs *report.Report, dir ir.Elem) {
	library := dir.Name()
	symbol := dir.RawString()
	if _, err := ffi.ResolveSymbol(library, symbol); err != nil {
		errs.Error("C303", "failed to resolve foreign symbol %s::%s: %v", dir.Span(), library, symbol, err)
	}
}

// ExecuteRun evaluates a #run expression via the VM collaborator
// (spec.md §4.6: "#run expr — flags an expression to be evaluated at
// compile time by the VM collaborator").
func ExecuteRun(vm collab.VM, errs *report.Report, dir ir.Elem) {
	if err := vm.Run(dir.LHS()); err != nil {
		errs.Error("C304", "#run evaluation failed: %v", dir.Span(), err)
	}
}
