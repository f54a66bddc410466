// Package collab declares the three external collaborator interfaces
// spec.md §6 names — assembler/emitter, FFI, virtual machine — whose
// internals are explicitly out of scope ("the core exposes interfaces to
// them but their internals are not specified"). This package exists so
// the rest of the compiler (directive's #foreign/#run execute phases,
// sema's finalization pass) can depend on the interface without pulling
// in a concrete implementation.
package collab

import "github.com/basecode-lang/basecode-sub003/ir"

// Emitter consumes the finalized element graph and emits target code.
// "Receives on_emit_* calls from elements" (spec.md §6) — modeled here
// as one Emit entry point per element, since on_emit_* itself is a
// family of hooks whose concrete shape is unspecified.
type Emitter interface {
	Emit(module ir.Elem) error
}

// FFI resolves a library/function-signature pair to a callable address.
type FFI interface {
	// ResolveSymbol returns an implementation-defined address token for
	// symbol in library. The token's concrete representation is up to
	// the collaborator; the core only threads it through for diagnostics.
	ResolveSymbol(library, symbol string) (uintptr, error)
}

// VM executes compile-time #run directives and assembles raw #assembly
// blocks.
type VM interface {
	// Run evaluates expr (a #run directive's expression) at compile
	// time.
	Run(expr ir.Elem) error
	// Assemble assembles a raw #assembly block's text, tagged
	// should_emit=false for the emitter to interpret.
	Assemble(rawBlock string) error
}

// NopFFI is a zero-effort FFI collaborator that always fails to resolve
// — useful for sessions that never invoke #foreign and want a non-nil
// collaborator without standing up a real linker.
type NopFFI struct{}

// ResolveSymbol always reports the symbol unresolved.
func (NopFFI) ResolveSymbol(library, symbol string) (uintptr, error) {
	return 0, errSymbolNotFound{library, symbol}
}

type errSymbolNotFound struct{ library, symbol string }

func (e errSymbolNotFound) Error() string {
	return "symbol " + e.symbol + " not found in library " + e.library
}

// NopVM is a #run/#assembly collaborator that performs no compile-time
// execution; #run expressions are left unevaluated (not an error — a
// session without a VM collaborator simply cannot finalize #run, which
// callers should treat as a configuration gap rather than a defect).
type NopVM struct{}

// Run is a no-op.
func (NopVM) Run(ir.Elem) error { return nil }

// Assemble is a no-op.
func (NopVM) Assemble(string) error { return nil }
