package sema

import "github.com/basecode-lang/basecode-sub003/ir"

// Default literal types (spec.md's lexical surface section doesn't pin a
// bit width for bare numeric literals; `i32`/`f64` are this compiler's
// chosen defaults). No pass narrows a literal away from these defaults:
// NarrowToValue (typecheck.go) is a standalone range check that no pass
// calls.
const (
	defaultIntWidth   = 32
	defaultFloatWidth = 64
)

// typeInferencePass is spec.md §4.7 pass 4: assign each typed element
// its inferred type, propagating from literals and declarations upward
// through operators and calls.
func (e *Engine) typeInferencePass(program ir.Elem) {
	e.walkBlocks(program, func(block ir.Elem) {
		eachStatement(block, func(stmt ir.Elem) {
			e.inferType(stmt)
		})
	})
}

// inferType is on_infer_type's dispatch function (spec.md §4.6); it
// lives here rather than as an ir.Elem method because it needs the
// engine's scope manager and builder to manufacture/interning result
// types.
func (e *Engine) inferType(el ir.Elem) ir.Elem {
	if el.Nil() {
		return e.unknownType
	}
	if t := el.ResolvedType(); !t.Nil() {
		return t
	}

	var t ir.Elem
	switch el.Kind() {
	case ir.KindLitBool:
		t = e.Builder.MakeBoolType(el.Span())
	case ir.KindLitInt:
		t = e.Builder.MakeNumericType(el.Span(), defaultIntWidth, true, false)
	case ir.KindLitFloat:
		t = e.Builder.MakeNumericType(el.Span(), defaultFloatWidth, true, true)
	case ir.KindLitRune:
		t = e.Builder.MakeRuneType(el.Span())
	case ir.KindLitString:
		t = e.Builder.MakeStringType(el.Span())
	case ir.KindLitNil, ir.KindLitUninitialized:
		t = e.Builder.MakeAnyType(el.Span())

	case ir.KindStatement:
		t = e.inferType(el.LHS())

	case ir.KindDecl:
		t = e.inferDecl(el)

	case ir.KindInitializer:
		t = e.inferType(el.LHS())

	case ir.KindIdent:
		t = e.unknownType // resolved at its owning Decl, not standalone.

	case ir.KindExprIdentRef:
		target := el.RHS()
		if target.Nil() {
			t = e.unknownType
			break
		}
		t = e.inferType(target)

	case ir.KindExprUnary:
		t = e.inferType(el.LHS())

	case ir.KindExprBinary:
		t = e.inferBinary(el)

	case ir.KindExprCast, ir.KindExprTransmute:
		t = el.LHS() // the cast's target-type operand is itself a type element.

	case ir.KindExprSubscript:
		base := e.inferType(el.LHS())
		if base.Kind() == ir.KindTypeArray {
			t = base.LHS()
		} else {
			t = e.unknownType
		}

	case ir.KindExprMember:
		base := e.inferType(el.LHS())
		t = e.unknownType
		if base.Kind() == ir.KindTypeComposite {
			for _, f := range base.Children() {
				if f.Name() == el.Name() {
					t = f.RHS()
					break
				}
			}
		}

	case ir.KindExprArrayConstructor:
		children := el.Children()
		if len(children) == 0 {
			t = e.Builder.MakeArrayType(el.Span(), e.unknownType, 0)
			break
		}
		elemType := e.inferType(children[0])
		t = e.Builder.MakeArrayType(el.Span(), elemType, len(children))

	case ir.KindExprCall:
		t = e.inferCall(el)

	case ir.KindReturn:
		t = e.inferType(el.LHS())

	case ir.KindAssign:
		t = e.inferType(el.RHS())

	default:
		t = e.unknownType
	}

	el.SetResolvedType(t)
	return t
}

// inferDecl infers a declaration's type: the explicit declared-type
// child wins when present, otherwise the initializer's inferred type.
func (e *Engine) inferDecl(decl ir.Elem) ir.Elem {
	if children := decl.Children(); len(children) > 0 {
		declared := children[0]
		if init := decl.RHS(); !init.Nil() {
			e.inferType(init)
		}
		decl.LHS().SetResolvedType(declared)
		return declared
	}
	init := decl.RHS()
	if init.Nil() {
		return e.unknownType
	}
	t := e.inferType(init)
	decl.LHS().SetResolvedType(t)
	return t
}

// inferBinary infers a binary expression's type via numeric promotion:
// float beats int beats rune beats bool; string+string stays string.
func (e *Engine) inferBinary(bin ir.Elem) ir.Elem {
	lt := e.inferType(bin.LHS())
	rt := e.inferType(bin.RHS())

	switch {
	case lt.Kind() == ir.KindTypeString && rt.Kind() == ir.KindTypeString:
		return lt
	case lt.Kind() == ir.KindTypeNumeric && rt.Kind() == ir.KindTypeNumeric:
		if lt.NumFloat() || rt.NumFloat() {
			width := lt.NumWidth()
			if rt.NumWidth() > width {
				width = rt.NumWidth()
			}
			return e.Builder.MakeNumericType(bin.Span(), width, true, true)
		}
		width := lt.NumWidth()
		if rt.NumWidth() > width {
			width = rt.NumWidth()
		}
		return e.Builder.MakeNumericType(bin.Span(), width, lt.NumSigned() || rt.NumSigned(), false)
	case lt.Kind() == ir.KindTypeBool && rt.Kind() == ir.KindTypeBool:
		return lt
	default:
		return e.unknownType
	}
}

// inferCall infers a call's type from its resolved callee's procedure
// type return type; unresolved/overloaded callees yield unknown_type
// until the overload resolution pass (§4.7 pass 6) settles the choice.
func (e *Engine) inferCall(call ir.Elem) ir.Elem {
	for _, arg := range call.RHS().Children() {
		e.inferType(arg.RHS())
	}
	callee := call.LHS()
	if callee.Kind() == ir.KindExprIdentRef {
		target := callee.RHS()
		if !target.Nil() {
			procType := target.ResolvedType()
			if procType.Nil() {
				procType = e.inferType(target)
			}
			if procType.Kind() == ir.KindTypeProcedure {
				return procType.RHS()
			}
		}
	}
	return e.unknownType
}
