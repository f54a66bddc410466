package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/source"
)

func TestParentScopeChainReachesRootWithoutCycle(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeProgram(source.Span{})
	outer := b.MakeBlock(source.Span{}, root, ir.Elem{}) // root has no enclosing scope.
	inner := b.MakeBlock(source.Span{}, outer, outer)

	seen := map[ir.Elem]bool{}
	cur := inner
	steps := 0
	for !cur.Nil() {
		require.False(t, seen[cur], "cycle detected in parent_scope chain")
		seen[cur] = true
		cur = cur.ParentScope()
		steps++
		require.Less(t, steps, 100, "parent_scope chain did not terminate")
	}
}

func TestIdentifierUniquePerScope(t *testing.T) {
	b := ir.NewBuilder()
	block := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})

	x1 := b.MakeIdent(source.Span{}, "x")
	assert.True(t, block.AddIdentifier("x", x1))

	x2 := b.MakeIdent(source.Span{}, "x")
	assert.False(t, block.AddIdentifier("x", x2), "second binding of the same name in one scope must be rejected")

	found, ok := block.Identifier("x")
	require.True(t, ok)
	assert.Equal(t, x1, found)
}

func TestLiteralSingletonsShareIdentity(t *testing.T) {
	b := ir.NewBuilder()
	t1 := b.MakeLitBool(source.Span{}, true)
	t2 := b.MakeLitBool(source.Span{}, true)
	assert.Equal(t, t1, t2, "true literal must be a shared singleton")

	f1 := b.MakeLitBool(source.Span{}, false)
	assert.NotEqual(t, t1, f1)

	n1 := b.MakeLitNil(source.Span{})
	n2 := b.MakeLitNil(source.Span{})
	assert.Equal(t, n1, n2)

	u1 := b.MakeLitUninitialized(source.Span{})
	u2 := b.MakeLitUninitialized(source.Span{})
	assert.Equal(t, u1, u2)
}

func TestTypeInterningIsIdempotent(t *testing.T) {
	b := ir.NewBuilder()
	i32a := b.MakeNumericType(source.Span{}, 32, true, false)
	i32b := b.MakeNumericType(source.Span{}, 32, true, false)
	assert.Equal(t, i32a, i32b)

	u32 := b.MakeNumericType(source.Span{}, 32, false, false)
	assert.NotEqual(t, i32a, u32)

	arr1 := b.MakeArrayType(source.Span{}, i32a, 4)
	arr2 := b.MakeArrayType(source.Span{}, i32a, 4)
	assert.Equal(t, arr1, arr2)

	slice := b.MakeArrayType(source.Span{}, i32a, -1)
	assert.NotEqual(t, arr1, slice)
}

func TestPointerTypeSelfReferenceViaSymbolLookup(t *testing.T) {
	b := ir.NewBuilder()
	block := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})

	node := b.MakeCompositeType(source.Span{}, "Node", ir.CompositeStruct, nil)
	require.True(t, block.AddType("Node", node))

	selfPtr := b.MakePointerType(source.Span{}, node)
	field := b.MakeField(source.Span{}, "next", selfPtr)
	node.AppendChild(field)

	resolved, ok := block.Type("Node")
	require.True(t, ok)
	nextField := resolved.Children()[0]
	assert.Equal(t, ir.KindTypePointer, nextField.RHS().Kind())
	assert.Equal(t, selfPtr, nextField.RHS())
	assert.Equal(t, node, nextField.RHS().LHS(), "pointer base resolves back to the same composite by identity")
}

func TestConstantFoldingAddition(t *testing.T) {
	b := ir.NewBuilder()
	x := b.MakeLitInt(source.Span{}, 2)
	y := b.MakeLitInt(source.Span{}, 3)

	sum, ok := x.OnAdd(b, y)
	require.True(t, ok)
	v, ok := sum.OnAsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(5), v)

	f := b.MakeLitFloat(source.Span{}, 1.5)
	mixed, ok := x.OnAdd(b, f)
	require.True(t, ok)
	fv, ok := mixed.OnAsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.5, fv)

	s1 := b.MakeLitString(source.Span{}, "foo")
	s2 := b.MakeLitString(source.Span{}, "bar")
	cat, ok := s1.OnAdd(b, s2)
	require.True(t, ok)
	sv, _ := cat.OnAsString()
	assert.Equal(t, "foobar", sv)
}

func TestConstBindingMarksIdentifierRefAsConstant(t *testing.T) {
	b := ir.NewBuilder()
	decl := b.MakeDecl(source.Span{}, b.MakeIdent(source.Span{}, "k"), ir.Elem{}, b.MakeLitInt(source.Span{}, 42))
	decl.SetConstBinding(true)

	ref := b.MakeIdentRef(source.Span{}, "k")
	ref.SetRHS(decl)

	assert.True(t, ref.OnIsConstant())

	nonConstDecl := b.MakeDecl(source.Span{}, b.MakeIdent(source.Span{}, "m"), ir.Elem{}, b.MakeLitInt(source.Span{}, 7))
	ref2 := b.MakeIdentRef(source.Span{}, "m")
	ref2.SetRHS(nonConstDecl)
	assert.False(t, ref2.OnIsConstant())
}

func TestEqualsAndLessThanAcrossNumericKinds(t *testing.T) {
	b := ir.NewBuilder()
	i := b.MakeLitInt(source.Span{}, 3)
	f := b.MakeLitFloat(source.Span{}, 3.0)

	eq, ok := i.OnEquals(f)
	require.True(t, ok)
	assert.True(t, eq)

	lt, ok := b.MakeLitInt(source.Span{}, 2).OnLessThan(f)
	require.True(t, ok)
	assert.True(t, lt)
}
