package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/collab"
	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/scope"
	"github.com/basecode-lang/basecode-sub003/sema"
	"github.com/basecode-lang/basecode-sub003/source"
)

func newEngine(t *testing.T) (*sema.Engine, *ir.Builder, ir.Elem) {
	t.Helper()
	b := ir.NewBuilder()
	root := b.MakeProgram(source.Span{})
	mgr := scope.NewManager(b, root)
	errs := &report.Report{}
	return sema.NewEngine(b, mgr, errs), b, root
}

// TestEightPassPipelineFoldsConstantDeclaration runs the full Run
// pipeline over `x :: 3` / `y := x + 2` and checks that y's initializer
// folds all the way down to the literal 5, with no errors recorded.
func TestEightPassPipelineFoldsConstantDeclaration(t *testing.T) {
	e, b, root := newEngine(t)

	xIdent := b.MakeIdent(source.Span{}, "x")
	xDecl := b.MakeDecl(source.Span{}, xIdent, ir.Elem{}, b.MakeLitInt(source.Span{}, 3))
	xDecl.SetConstBinding(true)
	require.True(t, root.AddIdentifier("x", xDecl))

	yIdent := b.MakeIdent(source.Span{}, "y")
	sum := b.MakeBinary(source.Span{}, "+", b.MakeIdentRef(source.Span{}, "x"), b.MakeLitInt(source.Span{}, 2))
	yDecl := b.MakeDecl(source.Span{}, yIdent, ir.Elem{}, sum)
	require.True(t, root.AddIdentifier("y", yDecl))

	root.AppendChild(b.MakeStatement(source.Span{}, xDecl))
	root.AppendChild(b.MakeStatement(source.Span{}, yDecl))

	e.Run(root)

	require.True(t, e.Succeeded(), "diagnostics: %v", e.Errs.Diagnostics())

	folded := yDecl.RHS().LHS() // Initializer.LHS after folding.
	require.Equal(t, ir.KindLitInt, folded.Kind())
	v, ok := folded.OnAsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
}

// TestSymbolResolutionReportsUndefinedIdentifier checks pass 2 records a
// C201 diagnostic and leaves the reference unresolved.
func TestSymbolResolutionReportsUndefinedIdentifier(t *testing.T) {
	e, b, root := newEngine(t)

	ref := b.MakeIdentRef(source.Span{}, "nope")
	root.AppendChild(b.MakeStatement(source.Span{}, ref))

	e.Run(root)

	require.True(t, e.Errs.HasErrors())
	found := false
	for _, d := range e.Errs.Diagnostics() {
		if d.Code == "C201" {
			found = true
		}
	}
	assert.True(t, found, "expected a C201 undefined-identifier diagnostic")
	assert.True(t, ref.RHS().Nil())
}

// TestTypeDeclarationPassResolvesSelfReferentialComposite exercises pass
// 1's fixpoint loop: a struct with a pointer field to itself must resolve
// without the bounded loop giving up early.
func TestTypeDeclarationPassResolvesSelfReferentialComposite(t *testing.T) {
	e, b, root := newEngine(t)

	node := b.MakeCompositeType(source.Span{}, "Node", ir.CompositeStruct, nil)
	selfPtr := b.MakePointerType(source.Span{}, node)
	node.AppendChild(b.MakeField(source.Span{}, "next", selfPtr))

	nameIdent := b.MakeIdent(source.Span{}, "Node")
	decl := b.MakeDecl(source.Span{}, nameIdent, ir.Elem{}, node)
	decl.SetConstBinding(true)
	require.True(t, root.AddIdentifier("Node", decl))
	root.AppendChild(b.MakeStatement(source.Span{}, decl))

	e.Run(root)

	require.True(t, e.Succeeded(), "diagnostics: %v", e.Errs.Diagnostics())
	registered, ok := root.Type("Node")
	require.True(t, ok)
	assert.Equal(t, node, registered)
}

// TestTypeDeclarationPassRejectsRecursiveValueComposite checks that a
// struct embedding itself by value (infinite size) is rejected with
// C103, unlike the pointer-mediated self-reference above which must
// succeed.
func TestTypeDeclarationPassRejectsRecursiveValueComposite(t *testing.T) {
	e, b, root := newEngine(t)

	node := b.MakeCompositeType(source.Span{}, "Bad", ir.CompositeStruct, nil)
	node.AppendChild(b.MakeField(source.Span{}, "self", node))

	nameIdent := b.MakeIdent(source.Span{}, "Bad")
	decl := b.MakeDecl(source.Span{}, nameIdent, ir.Elem{}, node)
	decl.SetConstBinding(true)
	require.True(t, root.AddIdentifier("Bad", decl))
	root.AppendChild(b.MakeStatement(source.Span{}, decl))

	e.Run(root)

	require.True(t, e.Errs.HasErrors())
	found := false
	for _, d := range e.Errs.Diagnostics() {
		if d.Code == "C103" {
			found = true
		}
	}
	assert.True(t, found, "expected a C103 recursive-type diagnostic, got: %v", e.Errs.Diagnostics())
}

// TestDirectiveEvaluationSelectsIfBranch checks that #if with a constant
// true condition replaces itself with its then-branch and drops the
// else-branch entirely.
func TestDirectiveEvaluationSelectsIfBranch(t *testing.T) {
	e, b, root := newEngine(t)

	thenStmt := b.MakeStatement(source.Span{}, b.MakeLitInt(source.Span{}, 1))
	elseStmt := b.MakeStatement(source.Span{}, b.MakeLitInt(source.Span{}, 2))
	dirIf := b.MakeDirIf(source.Span{}, b.MakeLitBool(source.Span{}, true), thenStmt, nil, elseStmt)
	root.AppendChild(dirIf)

	e.Run(root)

	require.True(t, e.Succeeded(), "diagnostics: %v", e.Errs.Diagnostics())
	children := root.Children()
	require.Len(t, children, 1)
	assert.Equal(t, thenStmt, children[0])
}

// TestFinalizationDispatchesRunAndForeignThroughCollaborators uses small
// collaborator doubles to confirm #run/#foreign are dispatched during
// finalization with the arguments directive.go documents.
func TestFinalizationDispatchesRunAndForeignThroughCollaborators(t *testing.T) {
	e, b, root := newEngine(t)

	runExpr := b.MakeLitInt(source.Span{}, 9)
	dirRun := b.MakeDirRun(source.Span{}, runExpr)
	root.AppendChild(b.MakeStatement(source.Span{}, dirRun))

	procType := b.MakeProcType(source.Span{}, nil, b.MakeBoolType(source.Span{}))
	dirForeign := b.MakeDirForeign(source.Span{}, procType, "libc", "puts")
	root.AppendChild(b.MakeStatement(source.Span{}, dirForeign))

	vm := &fakeVM{}
	ffi := &fakeFFI{}
	e.WithCollaborators(vm, ffi)

	e.Run(root)

	require.True(t, e.Succeeded(), "diagnostics: %v", e.Errs.Diagnostics())
	require.Len(t, vm.ran, 1)
	assert.Equal(t, runExpr, vm.ran[0])
	require.Len(t, ffi.resolved, 1)
	assert.Equal(t, [2]string{"libc", "puts"}, ffi.resolved[0])
}

type fakeVM struct {
	ran []ir.Elem
}

func (f *fakeVM) Run(expr ir.Elem) error {
	f.ran = append(f.ran, expr)
	return nil
}

func (f *fakeVM) Assemble(string) error { return nil }

type fakeFFI struct {
	resolved [][2]string
}

func (f *fakeFFI) ResolveSymbol(library, symbol string) (uintptr, error) {
	f.resolved = append(f.resolved, [2]string{library, symbol})
	return 1, nil
}

var _ collab.VM = (*fakeVM)(nil)
var _ collab.FFI = (*fakeFFI)(nil)

// TestFinalizationWarnsUnusedIdentifier checks the session-local
// unused-identifier approximation fires for a declaration nothing else
// references.
func TestFinalizationWarnsUnusedIdentifier(t *testing.T) {
	e, b, root := newEngine(t)

	unused := b.MakeDecl(source.Span{}, b.MakeIdent(source.Span{}, "dead"), ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	require.True(t, root.AddIdentifier("dead", unused))
	root.AppendChild(b.MakeStatement(source.Span{}, unused))

	e.Run(root)

	var warned bool
	for _, d := range e.Errs.Diagnostics() {
		if d.Code == "C601" {
			warned = true
		}
	}
	assert.True(t, warned, "expected an unused-identifier warning for 'dead'")
}

// --- Overload resolution (directly, bypassing the single-candidate pass) ---

func TestPrepareCallSiteBindsPositionalAndNamedArgs(t *testing.T) {
	e, b, _ := newEngine(t)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	paramA := b.MakeField(source.Span{}, "a", i32)
	paramB := b.MakeField(source.Span{}, "b", i32)
	candidate := b.MakeProcType(source.Span{}, []ir.Elem{paramA, paramB}, i32)

	// Positional.
	argA := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	argB := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 2))
	res := e.PrepareCallSite(candidate, []ir.Elem{argA, argB})
	require.Empty(t, res.Errors)
	require.Len(t, res.Args, 2)

	// Named, reordered.
	namedB := b.MakeArgPair(source.Span{}, b.MakeIdent(source.Span{}, "b"), b.MakeLitInt(source.Span{}, 20))
	namedA := b.MakeArgPair(source.Span{}, b.MakeIdent(source.Span{}, "a"), b.MakeLitInt(source.Span{}, 10))
	res2 := e.PrepareCallSite(candidate, []ir.Elem{namedB, namedA})
	require.Empty(t, res2.Errors)
	v0, _ := res2.Args[0].OnAsInteger()
	v1, _ := res2.Args[1].OnAsInteger()
	assert.Equal(t, int64(10), v0)
	assert.Equal(t, int64(20), v1)
}

func TestPrepareCallSiteFillsDefaultAndReportsMissingArgument(t *testing.T) {
	e, b, _ := newEngine(t)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	required := b.MakeField(source.Span{}, "a", i32)
	withDefault := b.MakeField(source.Span{}, "b", i32)
	withDefault.SetLHS(b.MakeLitInt(source.Span{}, 99))
	candidate := b.MakeProcType(source.Span{}, []ir.Elem{required, withDefault}, i32)

	argA := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	res := e.PrepareCallSite(candidate, []ir.Elem{argA})
	require.Empty(t, res.Errors)
	require.Len(t, res.Args, 2)
	v, ok := res.Args[1].OnAsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(99), v)

	res2 := e.PrepareCallSite(candidate, nil)
	require.NotEmpty(t, res2.Errors)
}

func TestPrepareCallSiteRejectsUnknownNamedAndExcessPositional(t *testing.T) {
	e, b, _ := newEngine(t)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	paramA := b.MakeField(source.Span{}, "a", i32)
	candidate := b.MakeProcType(source.Span{}, []ir.Elem{paramA}, i32)

	badName := b.MakeArgPair(source.Span{}, b.MakeIdent(source.Span{}, "z"), b.MakeLitInt(source.Span{}, 1))
	res := e.PrepareCallSite(candidate, []ir.Elem{badName})
	require.NotEmpty(t, res.Errors)

	tooMany := []ir.Elem{
		b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1)),
		b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 2)),
	}
	res2 := e.PrepareCallSite(candidate, tooMany)
	require.NotEmpty(t, res2.Errors)
}

func TestResolveOverloadPicksExactlyOneMatchingCandidate(t *testing.T) {
	e, b, _ := newEngine(t)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	str := b.MakeStringType(source.Span{})

	intParam := b.MakeField(source.Span{}, "v", i32)
	intCandidate := b.MakeProcType(source.Span{}, []ir.Elem{intParam}, i32)

	strParam := b.MakeField(source.Span{}, "v", str)
	strCandidate := b.MakeProcType(source.Span{}, []ir.Elem{strParam}, str)

	arg := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	result, err := e.ResolveOverload(source.Span{}, []ir.Elem{intCandidate, strCandidate}, []ir.Elem{arg}, ir.Elem{})
	require.NoError(t, err)
	assert.Equal(t, intCandidate, result.Candidate)
}

func TestResolveOverloadReportsAmbiguousAndNoMatch(t *testing.T) {
	e, b, _ := newEngine(t)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	i64 := b.MakeNumericType(source.Span{}, 64, true, false)

	paramA := b.MakeField(source.Span{}, "v", i32)
	candA := b.MakeProcType(source.Span{}, []ir.Elem{paramA}, i32)
	paramB := b.MakeField(source.Span{}, "v", i64)
	candB := b.MakeProcType(source.Span{}, []ir.Elem{paramB}, i64)

	arg := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	_, err := e.ResolveOverload(source.Span{}, []ir.Elem{candA, candB}, []ir.Elem{arg}, ir.Elem{})
	assert.Error(t, err, "a widening literal argument matches both widths and should be ambiguous")

	str := b.MakeStringType(source.Span{})
	paramC := b.MakeField(source.Span{}, "v", str)
	candC := b.MakeProcType(source.Span{}, []ir.Elem{paramC}, str)
	_, err2 := e.ResolveOverload(source.Span{}, []ir.Elem{candC}, []ir.Elem{arg}, ir.Elem{})
	assert.Error(t, err2, "an int literal does not type-check against a string parameter")
}

// --- typeCheck acceptance table ---

func TestNumericTypeCheckAcceptsWideningNotNarrowing(t *testing.T) {
	e, b, _ := newEngine(t)
	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	i64 := b.MakeNumericType(source.Span{}, 64, true, false)

	// i64 parameter accepts an i32 argument (same-or-wider); i32 parameter
	// does not accept an i64 argument.
	paramI64 := b.MakeField(source.Span{}, "v", i64)
	candWide := b.MakeProcType(source.Span{}, []ir.Elem{paramI64}, i64)
	argI32 := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	res := e.PrepareCallSite(candWide, []ir.Elem{argI32})
	assert.Empty(t, res.Errors)

	paramI32 := b.MakeField(source.Span{}, "v", i32)
	candNarrow := b.MakeProcType(source.Span{}, []ir.Elem{paramI32}, i32)
	bigLit := b.MakeLitInt(source.Span{}, 1)
	bigLit.SetResolvedType(i64)
	argI64 := b.MakeArgPair(source.Span{}, ir.Elem{}, bigLit)
	res2 := e.PrepareCallSite(candNarrow, []ir.Elem{argI64})
	assert.NotEmpty(t, res2.Errors)
}

func TestFamilyTypeCheckAcceptsAnyMemberOfTheNamedFamily(t *testing.T) {
	e, b, _ := newEngine(t)
	numericFamily := b.MakeFamilyType(source.Span{}, "Numeric")
	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	str := b.MakeStringType(source.Span{})

	paramNumeric := b.MakeField(source.Span{}, "v", numericFamily)
	candidate := b.MakeProcType(source.Span{}, []ir.Elem{paramNumeric}, i32)

	okArg := b.MakeArgPair(source.Span{}, ir.Elem{}, b.MakeLitInt(source.Span{}, 1))
	res := e.PrepareCallSite(candidate, []ir.Elem{okArg})
	assert.Empty(t, res.Errors)

	badLit := b.MakeLitString(source.Span{}, "x")
	badLit.SetResolvedType(str)
	badArg := b.MakeArgPair(source.Span{}, ir.Elem{}, badLit)
	res2 := e.PrepareCallSite(candidate, []ir.Elem{badArg})
	assert.NotEmpty(t, res2.Errors)
}

func TestCompositeTypeCheckRequiresSameDeclaredName(t *testing.T) {
	e, b, _ := newEngine(t)

	point := b.MakeCompositeType(source.Span{}, "Point", ir.CompositeStruct, nil)
	vector := b.MakeCompositeType(source.Span{}, "Vector", ir.CompositeStruct, nil)

	param := b.MakeField(source.Span{}, "p", point)
	candidate := b.MakeProcType(source.Span{}, []ir.Elem{param}, point)

	sameType := b.MakeIdentRef(source.Span{}, "a")
	sameType.SetResolvedType(point)
	res := e.PrepareCallSite(candidate, []ir.Elem{b.MakeArgPair(source.Span{}, ir.Elem{}, sameType)})
	assert.Empty(t, res.Errors)

	differentType := b.MakeIdentRef(source.Span{}, "b")
	differentType.SetResolvedType(vector)
	res2 := e.PrepareCallSite(candidate, []ir.Elem{b.MakeArgPair(source.Span{}, ir.Elem{}, differentType)})
	assert.NotEmpty(t, res2.Errors, "a Vector argument must not satisfy a Point parameter")
}

// --- NarrowToValue boundary cases ---

func TestNarrowToValueSignedBoundaries(t *testing.T) {
	b := ir.NewBuilder()
	i8 := b.MakeNumericType(source.Span{}, 8, true, false)

	assert.True(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, 127), i8))
	assert.False(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, 128), i8))
	assert.True(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, -128), i8))
	assert.False(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, -129), i8))
}

func TestNarrowToValueUnsigned64BitAcceptsAnyNonNegative(t *testing.T) {
	b := ir.NewBuilder()
	u64 := b.MakeNumericType(source.Span{}, 64, false, false)

	assert.True(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, 0), u64))
	assert.True(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, 1<<62), u64))
	assert.False(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, -1), u64))
}

func TestNarrowToValueRejectsNonNumericCandidate(t *testing.T) {
	b := ir.NewBuilder()
	boolType := b.MakeBoolType(source.Span{})
	assert.False(t, sema.NarrowToValue(b.MakeLitInt(source.Span{}, 1), boolType))
}
