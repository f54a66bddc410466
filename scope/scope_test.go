package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/scope"
	"github.com/basecode-lang/basecode-sub003/source"
)

func TestFindIdentifierAscendsToOuterScope(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	outerVar := b.MakeIdent(source.Span{}, "x")
	require.True(t, root.AddIdentifier("x", outerVar))

	inner := b.MakeBlock(source.Span{}, root, root)
	mgr.PushScope(inner)

	found, ok := mgr.FindIdentifier(mgr.CurrentScope(), "x")
	require.True(t, ok)
	assert.Equal(t, outerVar, found)

	mgr.PopScope()
	assert.Equal(t, root, mgr.CurrentScope())
}

func TestFindIdentifierMissingReturnsFalse(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	_, ok := mgr.FindIdentifier(root, "nope")
	assert.False(t, ok)
}

func TestFindIdentifierNamespaceChase(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	nsBlock := b.MakeBlock(source.Span{}, root, root)
	inner := b.MakeIdent(source.Span{}, "thing")
	require.True(t, nsBlock.AddIdentifier("thing", inner))

	// The namespace itself is found by name in the enclosing scope, then
	// its own identifier map is consulted for the remaining path segment.
	require.True(t, root.AddIdentifier("ns", nsBlock))

	found, ok := mgr.FindIdentifier(root, "ns::thing")
	require.True(t, ok)
	assert.Equal(t, inner, found)
}

func TestAddTypeToScopeRejectsConflictingDuplicate(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	require.NoError(t, mgr.AddTypeToScope(ir.Elem{}, "i32", i32))

	// Re-adding the same element under the same name is a no-op success.
	require.NoError(t, mgr.AddTypeToScope(ir.Elem{}, "i32", i32))

	other := b.MakeNumericType(source.Span{}, 64, true, false)
	err := mgr.AddTypeToScope(ir.Elem{}, "i32", other)
	assert.ErrorIs(t, err, scope.ErrDuplicateType)
}

func TestFindPointerTypeInternsViaBuilder(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	i32 := b.MakeNumericType(source.Span{}, 32, true, false)
	p1 := mgr.FindPointerType(source.Span{}, i32)
	p2 := mgr.FindPointerType(source.Span{}, i32)
	assert.Equal(t, p1, p2)
}

func TestVisitBlocksTopDownPreorderAbortsEarly(t *testing.T) {
	b := ir.NewBuilder()
	root := b.MakeBlock(source.Span{}, ir.Elem{}, ir.Elem{})
	mgr := scope.NewManager(b, root)

	child1 := b.MakeBlock(source.Span{}, root, root)
	child2 := b.MakeBlock(source.Span{}, root, root)
	root.AddChildBlock(child1)
	root.AddChildBlock(child2)

	grandchild := b.MakeBlock(source.Span{}, child1, child1)
	child1.AddChildBlock(grandchild)

	var visited []ir.Elem
	mgr.VisitBlocks(ir.Elem{}, func(e ir.Elem) bool {
		visited = append(visited, e)
		return e != child1 // abort the whole traversal once child1 is seen.
	})

	require.Len(t, visited, 2, "traversal must stop entirely once the predicate returns false")
	assert.Equal(t, root, visited[0])
	assert.Equal(t, child1, visited[1])
}
