package ir

import "github.com/basecode-lang/basecode-sub003/source"

// Every exported MakeXxx function below is a `make_*` factory as spec.md
// §4.5 describes: the Builder is the sole constructor for its kind, it
// assigns parent-element/parent-scope/module linkage via the caller-
// supplied owner/scope, and (where the kind is an interned entity)
// consults a cache before allocating.

// MakeProgram creates the program root element (spec.md §3: "program
// (root)"). It has no parent element or parent scope.
func (b *Builder) MakeProgram(span source.Span) Elem {
	return b.new(KindProgram, span)
}

// MakeBlock creates a block/scope element, linked under parent.
func (b *Builder) MakeBlock(span source.Span, owner, parentScope Elem) Elem {
	e := b.new(KindBlock, span)
	e.SetParentElem(owner)
	e.SetParentScope(parentScope)
	return e
}

// --- Literals (spec.md invariant 5: singletons shared by reference) ---

func (b *Builder) singleton(kind Kind, span source.Span, init func(Elem)) Elem {
	if e, ok := b.singletons[kind]; ok {
		return e
	}
	e := b.new(kind, span)
	init(e)
	b.singletons[kind] = e
	return e
}

// MakeLitBool returns the shared true/false singleton literal.
func (b *Builder) MakeLitBool(span source.Span, v bool) Elem {
	kind := KindLitBool
	cacheKind := Kind(int(kind) + 100) // true/false need distinct cache slots.
	if v {
		cacheKind++
	}
	return b.singleton(cacheKind, span, func(e Elem) {
		e.raw().kind = KindLitBool
		e.raw().boolVal = v
	})
}

// MakeLitNil returns the shared nil singleton literal.
func (b *Builder) MakeLitNil(span source.Span) Elem {
	return b.singleton(KindLitNil, span, func(Elem) {})
}

// MakeLitUninitialized returns the shared `_` value-sink singleton.
func (b *Builder) MakeLitUninitialized(span source.Span) Elem {
	return b.singleton(KindLitUninitialized, span, func(Elem) {})
}

// MakeLitInt creates an integer literal. Integer literals are allocated
// per occurrence (only the three named singletons above are shared).
func (b *Builder) MakeLitInt(span source.Span, v int64) Elem {
	e := b.new(KindLitInt, span)
	e.raw().intVal = v
	return e
}

// MakeLitFloat creates a float literal.
func (b *Builder) MakeLitFloat(span source.Span, v float64) Elem {
	e := b.new(KindLitFloat, span)
	e.raw().floatVal = v
	return e
}

// MakeLitRune creates a rune literal.
func (b *Builder) MakeLitRune(span source.Span, v rune) Elem {
	e := b.new(KindLitRune, span)
	e.raw().runeVal = v
	return e
}

// MakeLitString creates a string literal.
func (b *Builder) MakeLitString(span source.Span, v string) Elem {
	e := b.new(KindLitString, span)
	e.raw().strVal = v
	return e
}

// --- Declarations & bindings ---

// MakeSymbol creates a plain (unqualified) symbol element.
func (b *Builder) MakeSymbol(span source.Span, name string) Elem {
	e := b.new(KindSymbol, span)
	e.SetName(name)
	return e
}

// MakeQualifiedSymbol creates a qualified symbol `ns::...::name` (spec.md
// invariant 6). namespaces is the dot-free path prefix, already resolved
// to individual namespace names.
func (b *Builder) MakeQualifiedSymbol(span source.Span, namespaces []string, name string) Elem {
	e := b.new(KindQualifiedSymbol, span)
	e.SetName(QualifiedName(namespaces, name))
	return e
}

// QualifiedName renders a symbol's fully-qualified name per spec.md
// invariant 6: `namespace1::namespace2::...::name`.
func QualifiedName(namespaces []string, name string) string {
	out := ""
	for _, ns := range namespaces {
		out += ns + "::"
	}
	return out + name
}

// MakeIdent creates a named-binding identifier element.
func (b *Builder) MakeIdent(span source.Span, name string) Elem {
	e := b.new(KindIdent, span)
	e.SetName(name)
	return e
}

// MakeDecl creates a declaration element binding name to an optional
// declared type and/or initializer.
func (b *Builder) MakeDecl(span source.Span, name Elem, declaredType, init Elem) Elem {
	e := b.new(KindDecl, span)
	e.SetLHS(name)
	if !init.Nil() {
		e.SetRHS(b.MakeInitializer(span, init))
	}
	if !declaredType.Nil() {
		e.AppendChild(declaredType)
	}
	return e
}

// MakeInitializer wraps an initializer expression.
func (b *Builder) MakeInitializer(span source.Span, value Elem) Elem {
	e := b.new(KindInitializer, span)
	e.SetLHS(value)
	return e
}

// MakeField creates a composite-type field (name + declared type).
func (b *Builder) MakeField(span source.Span, name string, fieldType Elem) Elem {
	e := b.new(KindField, span)
	e.SetName(name)
	e.SetRHS(fieldType)
	return e
}

// MakeAssign creates an assignment element.
func (b *Builder) MakeAssign(span source.Span, target, value Elem) Elem {
	e := b.new(KindAssign, span)
	e.SetLHS(target)
	e.SetRHS(value)
	return e
}

// MakeAssignTarget wraps an lvalue expression as an assignment target.
func (b *Builder) MakeAssignTarget(span source.Span, target Elem) Elem {
	e := b.new(KindAssignTarget, span)
	e.SetLHS(target)
	return e
}

// --- Expressions ---

// MakeUnary creates a unary-operator element; op is the operator spelling
// (e.g. "-", "!", "~", "&").
func (b *Builder) MakeUnary(span source.Span, op string, operand Elem) Elem {
	e := b.new(KindExprUnary, span)
	e.SetName(op)
	e.SetLHS(operand)
	return e
}

// MakeBinary creates a binary-operator element.
func (b *Builder) MakeBinary(span source.Span, op string, lhs, rhs Elem) Elem {
	e := b.new(KindExprBinary, span)
	e.SetName(op)
	e.SetLHS(lhs)
	e.SetRHS(rhs)
	return e
}

// MakeCast creates a `cast(T) expr` element.
func (b *Builder) MakeCast(span source.Span, targetType, operand Elem) Elem {
	e := b.new(KindExprCast, span)
	e.SetLHS(targetType)
	e.SetRHS(operand)
	return e
}

// MakeTransmute creates a `transmute(T) expr` element.
func (b *Builder) MakeTransmute(span source.Span, targetType, operand Elem) Elem {
	e := b.new(KindExprTransmute, span)
	e.SetLHS(targetType)
	e.SetRHS(operand)
	return e
}

// MakeArrayConstructor creates an array-literal constructor.
func (b *Builder) MakeArrayConstructor(span source.Span, elems []Elem) Elem {
	e := b.new(KindExprArrayConstructor, span)
	for _, el := range elems {
		e.AppendChild(el)
	}
	return e
}

// MakeTupleConstructor creates a tuple-literal constructor.
func (b *Builder) MakeTupleConstructor(span source.Span, elems []Elem) Elem {
	e := b.new(KindExprTupleConstructor, span)
	for _, el := range elems {
		e.AppendChild(el)
	}
	return e
}

// MakeTypeConstructor creates a type-literal constructor (e.g. a struct
// literal `Point{x = 1, y = 2}`).
func (b *Builder) MakeTypeConstructor(span source.Span, typeExpr Elem, fields []Elem) Elem {
	e := b.new(KindExprTypeConstructor, span)
	e.SetLHS(typeExpr)
	for _, f := range fields {
		e.AppendChild(f)
	}
	return e
}

// MakeCall creates a procedure-call element over an unresolved callee
// reference and an argument list.
func (b *Builder) MakeCall(span source.Span, callee, args Elem, uniform bool) Elem {
	e := b.new(KindExprCall, span)
	e.SetLHS(callee)
	e.SetRHS(args)
	e.SetUniformCall(uniform)
	return e
}

// MakeArgList creates an argument-list element.
func (b *Builder) MakeArgList(span source.Span, args []Elem) Elem {
	e := b.new(KindExprArgList, span)
	for _, a := range args {
		e.AppendChild(a)
	}
	return e
}

// MakeArgPair creates a (name?, value) argument-list entry; name may be
// the zero Elem for a positional argument.
func (b *Builder) MakeArgPair(span source.Span, name, value Elem) Elem {
	e := b.new(KindExprArgPair, span)
	e.SetLHS(name)
	e.SetRHS(value)
	return e
}

// MakeIdentRef creates an unresolved identifier reference; symbol
// resolution (spec.md §4.7 pass 2) fills in ResolvedType/links it to its
// target via RHS.
func (b *Builder) MakeIdentRef(span source.Span, name string) Elem {
	e := b.new(KindExprIdentRef, span)
	e.SetName(name)
	return e
}

// MakeSubscript creates an array/map subscript element.
func (b *Builder) MakeSubscript(span source.Span, base, index Elem) Elem {
	e := b.new(KindExprSubscript, span)
	e.SetLHS(base)
	e.SetRHS(index)
	return e
}

// MakeMember creates a member-access element (`base.name`).
func (b *Builder) MakeMember(span source.Span, base Elem, name string) Elem {
	e := b.new(KindExprMember, span)
	e.SetLHS(base)
	e.SetName(name)
	return e
}

// MakeSpread creates a variadic spread-operator element.
func (b *Builder) MakeSpread(span source.Span, operand Elem) Elem {
	e := b.new(KindExprSpread, span)
	e.SetLHS(operand)
	return e
}

// --- Control flow ---

func (b *Builder) MakeStatement(span source.Span, expr Elem) Elem {
	e := b.new(KindStatement, span)
	e.SetLHS(expr)
	return e
}

func (b *Builder) MakeIf(span source.Span, cond, then, els Elem) Elem {
	e := b.new(KindIf, span)
	e.SetLHS(cond)
	e.SetRHS(then)
	if !els.Nil() {
		e.AppendChild(els)
	}
	return e
}

func (b *Builder) MakeWhile(span source.Span, cond, body Elem) Elem {
	e := b.new(KindWhile, span)
	e.SetLHS(cond)
	e.SetRHS(body)
	return e
}

func (b *Builder) MakeForIn(span source.Span, binder, iterable, body Elem) Elem {
	e := b.new(KindForIn, span)
	e.SetLHS(binder)
	e.SetRHS(iterable)
	e.AppendChild(body)
	return e
}

func (b *Builder) MakeSwitch(span source.Span, subject Elem, cases []Elem) Elem {
	e := b.new(KindSwitch, span)
	e.SetLHS(subject)
	for _, c := range cases {
		e.AppendChild(c)
	}
	return e
}

func (b *Builder) MakeCase(span source.Span, labels Elem, body []Elem) Elem {
	e := b.new(KindCase, span)
	e.SetLHS(labels)
	for _, s := range body {
		e.AppendChild(s)
	}
	return e
}

func (b *Builder) MakeFallthrough(span source.Span, target Elem) Elem {
	e := b.new(KindFallthrough, span)
	e.SetLHS(target)
	return e
}

func (b *Builder) MakeBreak(span source.Span, label string) Elem {
	e := b.new(KindBreak, span)
	e.SetName(label)
	return e
}

func (b *Builder) MakeContinue(span source.Span, label string) Elem {
	e := b.new(KindContinue, span)
	e.SetName(label)
	return e
}

func (b *Builder) MakeReturn(span source.Span, value Elem) Elem {
	e := b.new(KindReturn, span)
	e.SetLHS(value)
	return e
}

func (b *Builder) MakeDefer(span source.Span, stmt Elem) Elem {
	e := b.new(KindDefer, span)
	e.SetLHS(stmt)
	return e
}

func (b *Builder) MakeWith(span source.Span, binding, body Elem) Elem {
	e := b.new(KindWith, span)
	e.SetLHS(binding)
	e.SetRHS(body)
	return e
}

func (b *Builder) MakeLabel(span source.Span, name string, target Elem) Elem {
	e := b.new(KindLabel, span)
	e.SetName(name)
	e.SetLHS(target)
	return e
}

// --- Module level ---

func (b *Builder) MakeModule(span source.Span, name string) Elem {
	e := b.new(KindModule, span)
	e.SetName(name)
	return e
}

func (b *Builder) MakeNamespace(span source.Span, name string, body Elem) Elem {
	e := b.new(KindNamespace, span)
	e.SetName(name)
	e.SetLHS(body)
	return e
}

func (b *Builder) MakeImport(span source.Span, path string) Elem {
	e := b.new(KindImport, span)
	e.SetName(path)
	return e
}

func (b *Builder) MakeProcInstance(span source.Span, procType, body Elem) Elem {
	e := b.new(KindProcInstance, span)
	e.SetLHS(procType)
	e.SetRHS(body)
	return e
}

// --- Directives ---

func (b *Builder) MakeDirAssembly(span source.Span, rawBlock string) Elem {
	e := b.new(KindDirAssembly, span)
	e.SetName(rawBlock)
	return e
}

func (b *Builder) MakeDirForeign(span source.Span, procType Elem, library, symbol string) Elem {
	e := b.new(KindDirForeign, span)
	e.SetLHS(procType)
	e.SetName(library)
	e.raw().strVal = symbol
	return e
}

func (b *Builder) MakeDirIntrinsic(span source.Span, procType Elem, name string) Elem {
	e := b.new(KindDirIntrinsic, span)
	e.SetLHS(procType)
	e.SetName(name)
	return e
}

func (b *Builder) MakeDirType(span source.Span, typeExpr Elem) Elem {
	e := b.new(KindDirType, span)
	e.SetLHS(typeExpr)
	return e
}

func (b *Builder) MakeDirRun(span source.Span, expr Elem) Elem {
	e := b.new(KindDirRun, span)
	e.SetLHS(expr)
	return e
}

func (b *Builder) MakeDirIf(span source.Span, cond, then Elem, elifs []Elem, els Elem) Elem {
	e := b.new(KindDirIf, span)
	e.SetLHS(cond)
	e.SetRHS(then)
	for _, elif := range elifs {
		e.AppendChild(elif)
	}
	if !els.Nil() {
		e.AppendChild(els)
	}
	return e
}

func (b *Builder) MakeDirCoreType(span source.Span, typeDecl Elem) Elem {
	e := b.new(KindDirCoreType, span)
	e.SetLHS(typeDecl)
	return e
}

func (b *Builder) MakeDirLanguage(span source.Span, lang, rawBlock string) Elem {
	e := b.new(KindDirLanguage, span)
	e.SetName(lang)
	e.raw().strVal = rawBlock
	return e
}

// --- Intrinsics ---

var intrinsicKindByName = map[string]Kind{
	"size_of": KindIntrinsicSizeOf, "align_of": KindIntrinsicAlignOf,
	"address_of": KindIntrinsicAddressOf, "type_of": KindIntrinsicTypeOf,
	"length_of": KindIntrinsicLengthOf, "alloc": KindIntrinsicAlloc,
	"free": KindIntrinsicFree, "copy": KindIntrinsicCopy,
	"fill": KindIntrinsicFill, "range": KindIntrinsicRange,
}

// MakeIntrinsicCall creates an intrinsic-call element for a registered
// intrinsic name (spec.md §4.6: "A call whose target resolves to a
// registered intrinsic name is rebuilt as the corresponding intrinsic
// element"). Returns the zero Elem if name is not a known intrinsic.
func (b *Builder) MakeIntrinsicCall(span source.Span, name string, args Elem) Elem {
	kind, ok := intrinsicKindByName[name]
	if !ok {
		return Elem{}
	}
	e := b.new(kind, span)
	e.SetRHS(args)
	return e
}
