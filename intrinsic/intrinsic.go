// Package intrinsic implements the compiler-known intrinsic registry
// (spec.md §4.6 "Intrinsics"): size_of, align_of, address_of, type_of,
// length_of, alloc, free, copy, fill, range. Each is bound to a real
// procedure type when a `#intrinsic name` directive is evaluated; this
// package only tracks which names are registered and implements the
// handful that can fold at compile time.
//
// Grounded on protocompile's well-known-imports registry (a process-wide
// table of names the compiler treats specially): one package-level table
// guarded by a sync.RWMutex. Register takes the write lock and Lookup
// takes the read lock.
package intrinsic

import (
	"sync"

	"github.com/basecode-lang/basecode-sub003/ir"
)

// Name enumerates the ten registered intrinsics.
type Name string

const (
	SizeOf    Name = "size_of"
	AlignOf   Name = "align_of"
	AddressOf Name = "address_of"
	TypeOf    Name = "type_of"
	LengthOf  Name = "length_of"
	Alloc     Name = "alloc"
	Free      Name = "free"
	Copy      Name = "copy"
	Fill      Name = "fill"
	Range     Name = "range"
)

// foldable lists the intrinsics whose can_fold() spec.md §4.6 describes
// as true under constant arguments: size_of, align_of, length_of,
// type_of, address_of (of a constant), and range (over constant bounds).
var foldable = map[Name]bool{
	SizeOf: true, AlignOf: true, LengthOf: true, TypeOf: true,
	AddressOf: true, Range: true,
}

var (
	mu       sync.RWMutex
	registry = map[Name]ir.Elem{}
)

// Register binds name to procType (spec.md: "Intrinsic registration
// happens when the compiler sees #intrinsic bound to a procedure type
// declaration"). Re-registering the same name with a different
// procedure type overwrites the previous binding; callers are expected
// to do this only once, during bootstrap-source loading.
func Register(name string, procType ir.Elem) {
	mu.Lock()
	defer mu.Unlock()
	registry[Name(name)] = procType
}

// Lookup returns the procedure type registered under name, if any.
func Lookup(name string) (ir.Elem, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[Name(name)]
	return t, ok
}

// IsRegistered reports whether name is a known intrinsic name, whether
// or not a procedure type has been bound to it yet.
func IsRegistered(name string) bool {
	_, ok := registeredNames[Name(name)]
	return ok
}

var registeredNames = map[Name]bool{
	SizeOf: true, AlignOf: true, AddressOf: true, TypeOf: true, LengthOf: true,
	Alloc: true, Free: true, Copy: true, Fill: true, Range: true,
}

// CanFold reports whether name's intrinsic is foldable when its
// arguments are constant (spec.md §4.6's can_fold() list).
func CanFold(name string) bool {
	return foldable[Name(name)]
}

// KindToName maps an ir.KindIntrinsicXxx element back to its registered
// name, for the folding dispatch in sema.
func KindToName(k ir.Kind) (Name, bool) {
	switch k {
	case ir.KindIntrinsicSizeOf:
		return SizeOf, true
	case ir.KindIntrinsicAlignOf:
		return AlignOf, true
	case ir.KindIntrinsicAddressOf:
		return AddressOf, true
	case ir.KindIntrinsicTypeOf:
		return TypeOf, true
	case ir.KindIntrinsicLengthOf:
		return LengthOf, true
	case ir.KindIntrinsicAlloc:
		return Alloc, true
	case ir.KindIntrinsicFree:
		return Free, true
	case ir.KindIntrinsicCopy:
		return Copy, true
	case ir.KindIntrinsicFill:
		return Fill, true
	case ir.KindIntrinsicRange:
		return Range, true
	default:
		return "", false
	}
}

// SizeOfType returns the byte size of a resolved type, for size_of/
// align_of folding. Composite/array sizes are computed structurally;
// pointers are machine-word sized.
func SizeOfType(t ir.Elem) (int, bool) {
	switch t.Kind() {
	case ir.KindTypeNumeric:
		return t.NumWidth() / 8, true
	case ir.KindTypeBool:
		return 1, true
	case ir.KindTypeRune:
		return 4, true
	case ir.KindTypePointer:
		return 8, true
	case ir.KindTypeArray:
		elemSize, ok := SizeOfType(t.LHS())
		if !ok || t.ArraySize() < 0 {
			return 0, false
		}
		return elemSize * t.ArraySize(), true
	case ir.KindTypeComposite:
		total := 0
		for _, f := range t.Children() {
			sz, ok := SizeOfType(f.RHS())
			if !ok {
				return 0, false
			}
			total += sz
		}
		return total, true
	default:
		return 0, false
	}
}

// AlignOfType returns a type's alignment, which for this scalar-and-
// aggregate type system is the same as its own size for scalars, and
// the largest member alignment for composites.
func AlignOfType(t ir.Elem) (int, bool) {
	switch t.Kind() {
	case ir.KindTypeComposite:
		best := 1
		for _, f := range t.Children() {
			a, ok := AlignOfType(f.RHS())
			if !ok {
				return 0, false
			}
			if a > best {
				best = a
			}
		}
		return best, true
	case ir.KindTypeArray:
		return AlignOfType(t.LHS())
	default:
		return SizeOfType(t)
	}
}
