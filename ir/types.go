package ir

import "github.com/basecode-lang/basecode-sub003/source"

// Type constructors. Each interned kind (numeric, pointer, array) is
// cached on the Builder so that spec.md invariant 7 — "a type, once
// registered under a given shape, is interned and subsequent requests for
// the same shape return the existing element" — holds without per-call
// caller bookkeeping.

// MakeNumericType returns the interned numeric type for (width, signed,
// float). width is in bits (8/16/32/64); float implies signed.
func (b *Builder) MakeNumericType(span source.Span, width int, signed, float bool) Elem {
	key := numericKey{width: width, signed: signed, float: float}
	if e, ok := b.numericCache[key]; ok {
		return e
	}
	e := b.new(KindTypeNumeric, span)
	e.raw().numWidth = width
	e.raw().numSigned = signed
	e.raw().numFloat = float
	b.numericCache[key] = e
	return e
}

// MakeBoolType returns the shared bool type singleton.
func (b *Builder) MakeBoolType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeBool), span, func(e Elem) { e.raw().kind = KindTypeBool })
}

// MakeRuneType returns the shared rune type singleton.
func (b *Builder) MakeRuneType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeRune), span, func(e Elem) { e.raw().kind = KindTypeRune })
}

// MakeStringType returns the shared string type singleton.
func (b *Builder) MakeStringType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeString), span, func(e Elem) { e.raw().kind = KindTypeString })
}

// MakeAnyType returns the shared `any` type singleton.
func (b *Builder) MakeAnyType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeAny), span, func(e Elem) { e.raw().kind = KindTypeAny })
}

// MakeTypeInfoType returns the shared reflection type-info singleton
// (the `#type` directive's result type, spec.md §7).
func (b *Builder) MakeTypeInfoType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeInfo), span, func(e Elem) { e.raw().kind = KindTypeInfo })
}

// MakeUnknownType returns the shared placeholder type assigned before
// type inference resolves an element's real type.
func (b *Builder) MakeUnknownType(span source.Span) Elem {
	return b.singleton(typeSingletonKind(KindTypeUnknown), span, func(e Elem) { e.raw().kind = KindTypeUnknown })
}

// typeSingletonKind maps a type Kind onto one of the dedicated cache
// slots above KindIntrinsicRange, mirroring the scheme MakeLitBool's
// cacheKind trick uses for the two bool singletons.
func typeSingletonKind(k Kind) Kind {
	return Kind(int(k) + 200)
}

// MakePointerType returns the interned pointer-to-base type. Pointer
// cyclic self-reference (spec.md invariant 8: "a pointer type referring
// back to its own composite base is represented by a symbol lookup, not
// ownership") works because the cache key is the base element's stable
// arena pointer, not a deep structural hash — looking the cache up again
// with the same base returns the same pointer element even while base's
// own fields are still being filled in by the caller.
func (b *Builder) MakePointerType(span source.Span, base Elem) Elem {
	if e, ok := b.pointerCache[base.ptr]; ok {
		return e
	}
	e := b.new(KindTypePointer, span)
	e.SetLHS(base)
	b.pointerCache[base.ptr] = e
	return e
}

// MakeArrayType returns the interned array type over elem with the given
// size (-1 for an unsized/slice-shaped array).
func (b *Builder) MakeArrayType(span source.Span, elem Elem, size int) Elem {
	key := arrayKey{elem: elem.ptr, size: size}
	if e, ok := b.arrayCache[key]; ok {
		return e
	}
	e := b.new(KindTypeArray, span)
	e.SetLHS(elem)
	e.raw().intVal = int64(size)
	b.arrayCache[key] = e
	return e
}

// ArraySize returns the element's declared array size, or -1 if unsized.
func (e Elem) ArraySize() int {
	if e.Nil() {
		return -1
	}
	return int(e.raw().intVal)
}

// MakeMapType creates a map type from keyType to valueType. Map types are
// not interned in the baseline implementation: composite key/value
// identity would need structural hashing beyond the stable-pointer keys
// numeric/array/pointer caching relies on, and spec.md does not list map
// types among the invariant-7 interning examples.
func (b *Builder) MakeMapType(span source.Span, keyType, valueType Elem) Elem {
	e := b.new(KindTypeMap, span)
	e.SetLHS(keyType)
	e.SetRHS(valueType)
	return e
}

// MakeTupleType creates a tuple type over the given element types.
func (b *Builder) MakeTupleType(span source.Span, elemTypes []Elem) Elem {
	e := b.new(KindTypeTuple, span)
	for _, t := range elemTypes {
		e.AppendChild(t)
	}
	return e
}

// MakeCompositeType creates a struct/union/enum type with the given
// fields. name is the type's declared name, registered into scope by the
// caller (ir has no scope access of its own).
func (b *Builder) MakeCompositeType(span source.Span, name string, kind CompositeKind, fields []Elem) Elem {
	e := b.new(KindTypeComposite, span)
	e.SetName(name)
	e.raw().compositeKind = kind
	for _, f := range fields {
		e.AppendChild(f)
	}
	return e
}

// CompositeKind returns the struct/union/enum discriminator for a
// KindTypeComposite element.
func (e Elem) CompositeKind() CompositeKind {
	if e.Nil() {
		return CompositeNone
	}
	return e.raw().compositeKind
}

// MakeNamespaceType creates a namespace type element.
func (b *Builder) MakeNamespaceType(span source.Span, name string) Elem {
	e := b.new(KindTypeNamespace, span)
	e.SetName(name)
	return e
}

// MakeModuleType creates a module type element.
func (b *Builder) MakeModuleType(span source.Span, name string) Elem {
	e := b.new(KindTypeModule, span)
	e.SetName(name)
	return e
}

// MakeFamilyType creates a type family (spec.md §4.6's acceptance-table
// families: Numeric, BoolRunePointer, Array, Composite, Procedure, Any)
// used by the type-check pass as a pattern to match a concrete type
// against rather than a concrete type itself.
func (b *Builder) MakeFamilyType(span source.Span, name string) Elem {
	e := b.new(KindTypeFamily, span)
	e.SetName(name)
	return e
}

// MakeSpreadType creates a variadic parameter's spread type wrapper.
func (b *Builder) MakeSpreadType(span source.Span, elemType Elem) Elem {
	e := b.new(KindTypeSpread, span)
	e.SetLHS(elemType)
	return e
}

// MakeProcType creates a procedure type from a parameter field list and
// return type. foreign/intrinsic name/shouldEmit are set separately by
// the directive pass via SetForeign/SetIntrinsicName/SetShouldEmit.
func (b *Builder) MakeProcType(span source.Span, params []Elem, returnType Elem) Elem {
	e := b.new(KindTypeProcedure, span)
	for _, p := range params {
		e.AppendChild(p)
	}
	e.SetRHS(returnType)
	return e
}

// NumWidth, NumSigned, NumFloat expose a numeric type's payload.
func (e Elem) NumWidth() int {
	if e.Nil() {
		return 0
	}
	return e.raw().numWidth
}
func (e Elem) NumSigned() bool {
	if e.Nil() {
		return false
	}
	return e.raw().numSigned
}
func (e Elem) NumFloat() bool {
	if e.Nil() {
		return false
	}
	return e.raw().numFloat
}

// Foreign reports whether a procedure type was bound via #foreign.
func (e Elem) Foreign() bool {
	if e.Nil() {
		return false
	}
	return e.raw().foreign
}

// SetForeign marks a procedure type as #foreign-bound.
func (e Elem) SetForeign(v bool) { e.raw().foreign = v }

// IntrinsicName returns the #intrinsic-bound name, if any.
func (e Elem) IntrinsicName() string {
	if e.Nil() {
		return ""
	}
	return e.raw().intrinsic
}

// SetIntrinsicName marks a procedure type as #intrinsic-bound under name.
func (e Elem) SetIntrinsicName(name string) { e.raw().intrinsic = name }

// ShouldEmit reports whether a procedure should be emitted (false for
// #assembly-only bodies the finalization pass handles separately).
func (e Elem) ShouldEmit() bool {
	if e.Nil() {
		return false
	}
	return e.raw().shouldEmit
}

// SetShouldEmit sets the emit flag.
func (e Elem) SetShouldEmit(v bool) { e.raw().shouldEmit = v }
