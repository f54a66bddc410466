// Package ir implements the Basecode element graph (spec.md §3 "Element",
// §4.5 "Element builder", §4.6 "Element operations"): the compiler's
// typed intermediate representation, built from the AST during lowering
// and mutated in place by the semantic engine's passes.
//
// spec.md's Design Notes §9 calls for a tagged, closed algebraic family of
// roughly eighty element kinds. Rather than ~80 separate Go interface
// implementations (the literal translation of the original's deep C++
// class hierarchy), this package follows the arena-plus-kind-tag shape
// already used by ast.Node: one Kind enum, a handful of concrete backing
// field groups shared across related kinds, and capability dispatch via a
// switch on Kind. Operations that need scope/session context beyond an
// element's own data (on_infer_type, on_fold) are implemented as
// dispatch functions in package sema rather than methods here, since ir
// must not import scope or sema — see DESIGN.md's "ir" entry.
package ir

import "fmt"

// Kind tags an element (spec.md §3 "kind tag (element kind)").
type Kind uint8

const (
	KindInvalid Kind = iota

	// Literals.
	KindLitBool
	KindLitInt
	KindLitFloat
	KindLitRune
	KindLitString
	KindLitNil
	KindLitUninitialized

	// Types.
	KindTypeNumeric
	KindTypeBool
	KindTypeRune
	KindTypeString
	KindTypePointer
	KindTypeArray
	KindTypeMap
	KindTypeTuple
	KindTypeComposite // struct/union/enum, distinguished by CompositeKind.
	KindTypeNamespace
	KindTypeModule
	KindTypeAny
	KindTypeInfo
	KindTypeProcedure
	KindTypeUnknown
	KindTypeFamily
	KindTypeSpread

	// Expressions.
	KindExprUnary
	KindExprBinary
	KindExprCast
	KindExprTransmute
	KindExprArrayConstructor
	KindExprTupleConstructor
	KindExprTypeConstructor
	KindExprCall
	KindExprArgList
	KindExprArgPair
	KindExprIdentRef
	KindExprSubscript
	KindExprMember
	KindExprSpread

	// Declarations & bindings.
	KindSymbol
	KindQualifiedSymbol
	KindDecl
	KindIdent
	KindInitializer
	KindField
	KindAssign
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
	KindLabel

	// Module-level.
	KindModule
	KindNamespace
	KindImport
	KindProgram
	KindProcType
	KindProcInstance

	// Directives.
	KindDirAssembly
	KindDirForeign
	KindDirIntrinsic
	KindDirType
	KindDirRun
	KindDirIf
	KindDirCoreType
	KindDirLanguage

	// Intrinsics.
	KindIntrinsicSizeOf
	KindIntrinsicAlignOf
	KindIntrinsicAddressOf
	KindIntrinsicTypeOf
	KindIntrinsicLengthOf
	KindIntrinsicAlloc
	KindIntrinsicFree
	KindIntrinsicCopy
	KindIntrinsicFill
	KindIntrinsicRange
)

var kindNames = map[Kind]string{
	KindInvalid: "Invalid",

	KindLitBool: "LitBool", KindLitInt: "LitInt", KindLitFloat: "LitFloat",
	KindLitRune: "LitRune", KindLitString: "LitString", KindLitNil: "LitNil",
	KindLitUninitialized: "LitUninitialized",

	KindTypeNumeric: "TypeNumeric", KindTypeBool: "TypeBool", KindTypeRune: "TypeRune",
	KindTypeString: "TypeString", KindTypePointer: "TypePointer", KindTypeArray: "TypeArray",
	KindTypeMap: "TypeMap", KindTypeTuple: "TypeTuple", KindTypeComposite: "TypeComposite",
	KindTypeNamespace: "TypeNamespace", KindTypeModule: "TypeModule", KindTypeAny: "TypeAny",
	KindTypeInfo: "TypeInfo", KindTypeProcedure: "TypeProcedure", KindTypeUnknown: "TypeUnknown",
	KindTypeFamily: "TypeFamily", KindTypeSpread: "TypeSpread",

	KindExprUnary: "ExprUnary", KindExprBinary: "ExprBinary", KindExprCast: "ExprCast",
	KindExprTransmute: "ExprTransmute", KindExprArrayConstructor: "ExprArrayConstructor",
	KindExprTupleConstructor: "ExprTupleConstructor", KindExprTypeConstructor: "ExprTypeConstructor",
	KindExprCall: "ExprCall", KindExprArgList: "ExprArgList", KindExprArgPair: "ExprArgPair",
	KindExprIdentRef: "ExprIdentRef", KindExprSubscript: "ExprSubscript",
	KindExprMember: "ExprMember", KindExprSpread: "ExprSpread",

	KindSymbol: "Symbol", KindQualifiedSymbol: "QualifiedSymbol", KindDecl: "Decl",
	KindIdent: "Ident", KindInitializer: "Initializer", KindField: "Field",
	KindAssign: "Assign", KindAssignTarget: "AssignTarget",

	KindBlock: "Block", KindStatement: "Statement", KindIf: "If", KindWhile: "While",
	KindForIn: "ForIn", KindSwitch: "Switch", KindCase: "Case", KindFallthrough: "Fallthrough",
	KindBreak: "Break", KindContinue: "Continue", KindReturn: "Return", KindDefer: "Defer",
	KindWith: "With", KindLabel: "Label",

	KindModule: "Module", KindNamespace: "Namespace", KindImport: "Import",
	KindProgram: "Program", KindProcType: "ProcType", KindProcInstance: "ProcInstance",

	KindDirAssembly: "DirAssembly", KindDirForeign: "DirForeign", KindDirIntrinsic: "DirIntrinsic",
	KindDirType: "DirType", KindDirRun: "DirRun", KindDirIf: "DirIf",
	KindDirCoreType: "DirCoreType", KindDirLanguage: "DirLanguage",

	KindIntrinsicSizeOf: "IntrinsicSizeOf", KindIntrinsicAlignOf: "IntrinsicAlignOf",
	KindIntrinsicAddressOf: "IntrinsicAddressOf", KindIntrinsicTypeOf: "IntrinsicTypeOf",
	KindIntrinsicLengthOf: "IntrinsicLengthOf", KindIntrinsicAlloc: "IntrinsicAlloc",
	KindIntrinsicFree: "IntrinsicFree", KindIntrinsicCopy: "IntrinsicCopy",
	KindIntrinsicFill: "IntrinsicFill", KindIntrinsicRange: "IntrinsicRange",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ir.Kind(%d)", int(k))
}

// IsType reports whether k is one of the type-family kinds.
func (k Kind) IsType() bool {
	return k >= KindTypeNumeric && k <= KindTypeSpread
}

// IsLiteral reports whether k is one of the literal-family kinds.
func (k Kind) IsLiteral() bool {
	return k >= KindLitBool && k <= KindLitUninitialized
}

// IsIntrinsic reports whether k is one of the registered-intrinsic kinds.
func (k Kind) IsIntrinsic() bool {
	return k >= KindIntrinsicSizeOf && k <= KindIntrinsicRange
}

// CompositeKind distinguishes the three composite type shapes that share
// KindTypeComposite.
type CompositeKind uint8

const (
	CompositeNone CompositeKind = iota
	CompositeStruct
	CompositeUnion
	CompositeEnum
)
