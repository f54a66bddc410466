package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/ast"
	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/lexer"
	"github.com/basecode-lang/basecode-sub003/lower"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/scope"
	"github.com/basecode-lang/basecode-sub003/sema"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

// lowerSource runs the full lex -> parse -> lower pipeline over text and
// returns the resulting program element alongside the builder and scope
// manager used to build it, so a test can keep constructing on top of
// the same graph (e.g. to drive sema.Engine.Run afterward).
func lowerSource(t *testing.T, text string) (ir.Elem, *ir.Builder, *scope.Manager, *report.Report) {
	t.Helper()
	fs := &source.FileSet{}
	buf := source.Load("test.bc", text)
	file := fs.Add(buf)
	pool := token.NewPool()
	lexErrs := &report.Report{}

	ids := lexer.New(fs, file, buf, pool, lexErrs).Lex()
	require.False(t, lexErrs.HasErrors(), "lex errors: %v", lexErrs.Diagnostics())

	p := ast.NewParser(fs, file, pool, ids, lexErrs)
	prog := p.ParseProgram()
	require.False(t, lexErrs.HasErrors(), "parse errors: %v", lexErrs.Diagnostics())

	b := ir.NewBuilder()
	root := b.MakeProgram(source.Span{})
	mgr := scope.NewManager(b, root)
	errs := &report.Report{}

	l := lower.New(b, mgr, errs)
	out := l.Program(prog)
	return out, b, mgr, errs
}

func TestLowerConstantDeclarationFoldsThroughSema(t *testing.T) {
	root, b, mgr, errs := lowerSource(t, "x :: 3;\ny := x + 2;")
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	xDecl, ok := root.Identifier("x")
	require.True(t, ok)
	assert.True(t, xDecl.IsConstBinding())

	engine := sema.NewEngine(b, mgr, errs)
	engine.Run(root)
	require.True(t, engine.Succeeded(), "diagnostics: %v", errs.Diagnostics())

	yDecl, ok := root.Identifier("y")
	require.True(t, ok)
	folded := yDecl.RHS().LHS()
	require.Equal(t, ir.KindLitInt, folded.Kind())
	v, ok := folded.OnAsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
}

func TestLowerArrayTypeWithNonConstantSizeIsHardError(t *testing.T) {
	_, _, _, errs := lowerSource(t, "Buf :: struct { data: [n, i32]; };")
	require.True(t, errs.HasErrors())
	found := false
	for _, d := range errs.Diagnostics() {
		if d.Code == "L211" {
			found = true
		}
	}
	assert.True(t, found, "expected an L211 non-constant-array-size diagnostic, got: %v", errs.Diagnostics())
}

func TestLowerArrayTypeWithConstantSizeSucceeds(t *testing.T) {
	root, _, _, errs := lowerSource(t, "Buf :: struct { data: [3, i32]; };")
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	bufType, ok := root.Type("Buf")
	require.True(t, ok)
	fields := bufType.Children()
	require.Len(t, fields, 1)
	assert.Equal(t, ir.KindTypeArray, fields[0].RHS().Kind())
}

func TestLowerSelfReferentialStructResolvesPointerField(t *testing.T) {
	root, _, _, errs := lowerSource(t, "Node :: struct { next: *Node; value: i32; };")
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	nodeType, ok := root.Type("Node")
	require.True(t, ok)
	require.Equal(t, ir.KindTypeComposite, nodeType.Kind())

	fields := nodeType.Children()
	require.Len(t, fields, 2)
	nextField := fields[0]
	assert.Equal(t, "next", nextField.Name())
	require.Equal(t, ir.KindTypePointer, nextField.RHS().Kind())

	// The pointer's base must be the very same composite element
	// registered under "Node", not a second unresolved placeholder.
	assert.Equal(t, nodeType.Kind(), nextField.RHS().LHS().Kind())
	assert.Equal(t, nodeType.Name(), nextField.RHS().LHS().Name())
}

func TestLowerRecursiveProcedureResolvesSelfCall(t *testing.T) {
	root, _, mgr, errs := lowerSource(t, `fact :: proc(n: i32) -> i32 {
  return fact(n);
};`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	factDecl, ok := root.Identifier("fact")
	require.True(t, ok)
	assert.True(t, factDecl.IsConstBinding())

	procInstance := factDecl.RHS().LHS()
	require.Equal(t, ir.KindProcInstance, procInstance.Kind())
	body := procInstance.RHS()
	require.Equal(t, ir.KindBlock, body.Kind())

	// The call to "fact" inside its own body must resolve back to the
	// same declaration via the scope manager, not report undefined.
	found, ok := mgr.FindIdentifier(body, "fact")
	require.True(t, ok)
	assert.Equal(t, factDecl.Kind(), found.Kind())
	assert.Equal(t, factDecl.Name(), found.Name())
}

func TestLowerIfDirectiveBuildsElifElseChain(t *testing.T) {
	root, _, _, errs := lowerSource(t, `#if true {
  x := 1;
} #elif false {
  x := 2;
} #else {
  x := 3;
};`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	require.Len(t, root.Children(), 1)
	dirIf := root.Children()[0]
	require.Equal(t, ir.KindDirIf, dirIf.Kind())
	require.Equal(t, ir.KindLitBool, dirIf.LHS().Kind())
	require.Equal(t, ir.KindBlock, dirIf.RHS().Kind())

	children := dirIf.Children()
	require.Len(t, children, 2)
	assert.Equal(t, ir.KindDirIf, children[0].Kind()) // #elif
	assert.Equal(t, ir.KindBlock, children[1].Kind()) // #else body
}

func TestLowerForeignDirectiveSharesProcTypeWithDeclaration(t *testing.T) {
	root, _, _, errs := lowerSource(t, `#foreign("libc", "malloc") raw_alloc :: proc(n: i32) -> *any;`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	require.Len(t, root.Children(), 2)
	decl := root.Children()[0]
	require.Equal(t, ir.KindDecl, decl.Kind())
	assert.Equal(t, "raw_alloc", decl.LHS().Name())

	dirForeign := root.Children()[1]
	require.Equal(t, ir.KindDirForeign, dirForeign.Kind())
	assert.Equal(t, "libc", dirForeign.Name())
	assert.Equal(t, "malloc", dirForeign.RawString())

	declProcType := decl.RHS().LHS()
	require.Equal(t, ir.KindTypeProcedure, declProcType.Kind())
	assert.Equal(t, declProcType.Kind(), dirForeign.LHS().Kind())
	assert.Equal(t, declProcType.Span(), dirForeign.LHS().Span())
}

func TestLowerForeignDirectiveBlockAppliesLibraryToEachDeclaration(t *testing.T) {
	root, _, _, errs := lowerSource(t, `#foreign("libc") {
  malloc :: proc(n: i32) -> *any;
  release :: proc(p: *any);
};`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	var foreigns []ir.Elem
	for _, c := range root.Children() {
		if c.Kind() == ir.KindDirForeign {
			foreigns = append(foreigns, c)
		}
	}
	require.Len(t, foreigns, 2)
	assert.Equal(t, "libc", foreigns[0].Name())
	assert.Equal(t, "libc", foreigns[1].Name())
}

func TestLowerForeignDirectiveBlockPerDeclarationLibraryOverridesDefault(t *testing.T) {
	root, _, _, errs := lowerSource(t, `#foreign("libc") {
  malloc :: proc(n: i32) -> *any;
  @library("libm") sin :: proc(x: f32) -> f32;
};`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	var foreigns []ir.Elem
	for _, c := range root.Children() {
		if c.Kind() == ir.KindDirForeign {
			foreigns = append(foreigns, c)
		}
	}
	require.Len(t, foreigns, 2)
	assert.Equal(t, "libc", foreigns[0].Name())
	assert.Equal(t, "libm", foreigns[1].Name())
}

func TestLowerWhileLoopAndBreak(t *testing.T) {
	root, _, _, errs := lowerSource(t, `while true {
  break;
};`)
	require.False(t, errs.HasErrors(), "lowering errors: %v", errs.Diagnostics())

	require.Len(t, root.Children(), 1)
	whileElem := root.Children()[0]
	require.Equal(t, ir.KindWhile, whileElem.Kind())
	require.Equal(t, ir.KindLitBool, whileElem.LHS().Kind())

	body := whileElem.RHS()
	require.Equal(t, ir.KindBlock, body.Kind())
	require.Len(t, body.Children(), 1)
	assert.Equal(t, ir.KindBreak, body.Children()[0].Kind())
}
