package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basecode-lang/basecode-sub003/ast"
	"github.com/basecode-lang/basecode-sub003/lexer"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

func parseProgram(t *testing.T, text string) (ast.Node, *report.Report) {
	t.Helper()
	fs := &source.FileSet{}
	buf := source.Load("test.bc", text)
	file := fs.Add(buf)
	pool := token.NewPool()
	errs := &report.Report{}

	ids := lexer.New(fs, file, buf, pool, errs).Lex()
	require.False(t, errs.HasErrors(), "lex errors: %v", errs.Diagnostics())

	p := ast.NewParser(fs, file, pool, ids, errs)
	prog := p.ParseProgram()
	return prog, errs
}

func TestParsePrecedence(t *testing.T) {
	// `1 + 2 * 3` must bind as `1 + (2 * 3)`.
	prog, errs := parseProgram(t, "1 + 2 * 3;")
	require.False(t, errs.HasErrors())

	stmt := prog.Children()[0]
	require.Equal(t, ast.KindStatement, stmt.Kind())
	expr := stmt.LHS()
	require.Equal(t, ast.KindBinary, expr.Kind())
	assert.Equal(t, "+", expr.Token().Lexeme())
	assert.Equal(t, ast.KindLiteralInt, expr.LHS().Kind())

	rhs := expr.RHS()
	require.Equal(t, ast.KindBinary, rhs.Kind())
	assert.Equal(t, "*", rhs.Token().Lexeme())
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	// `a = b = c` must bind as `a = (b = c)`.
	prog, errs := parseProgram(t, "a = b = c;")
	require.False(t, errs.HasErrors())

	stmt := prog.Children()[0]
	require.Equal(t, ast.KindStatement, stmt.Kind())
	inner := stmt.LHS()
	require.Equal(t, ast.KindAssign, inner.Kind())
	assert.Equal(t, ast.KindIdent, inner.LHS().Kind())
	assert.Equal(t, ast.KindAssign, inner.RHS().Kind())
}

func TestParseUFCSDesugaring(t *testing.T) {
	// `a.f(b)` must desugar into a call to `f` with `a` prepended.
	prog, errs := parseProgram(t, "a.f(b);")
	require.False(t, errs.HasErrors())

	stmt := prog.Children()[0]
	call := stmt.LHS()
	require.Equal(t, ast.KindCall, call.Kind())
	assert.True(t, call.UniformCall())
	assert.Equal(t, "f", call.LHS().Token().Lexeme())

	argList := call.Children()[0]
	require.Equal(t, ast.KindArgList, argList.Kind())
	args := argList.Children()
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].LHS().Token().Lexeme())
	assert.Equal(t, "b", args[1].LHS().Token().Lexeme())
}

func TestParseDeclWithTypeAndInit(t *testing.T) {
	prog, errs := parseProgram(t, "x : i32 = 1;")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	require.Equal(t, ast.KindDecl, decl.Kind())
	assert.Equal(t, "x", decl.LHS().Token().Lexeme())
	children := decl.Children()
	require.Len(t, children, 1)
	assert.Equal(t, ast.KindIdent, children[0].Kind())
	assert.Equal(t, ast.KindLiteralInt, decl.RHS().Kind())
}

func TestParseIfElifElse(t *testing.T) {
	prog, errs := parseProgram(t, `
if a { x := 1; } elif b { x := 2; } else { x := 3; }
`)
	require.False(t, errs.HasErrors())

	ifNode := prog.Children()[0]
	require.Equal(t, ast.KindIf, ifNode.Kind())
	assert.Equal(t, ast.KindIdent, ifNode.LHS().Kind())
	require.Len(t, ifNode.Children(), 1)

	elifNode := ifNode.Children()[0]
	require.Equal(t, ast.KindIf, elifNode.Kind())
	require.Len(t, elifNode.Children(), 1)
	assert.Equal(t, ast.KindBlock, elifNode.Children()[0].Kind())
}

func TestParseSwitchCaseFallthrough(t *testing.T) {
	prog, errs := parseProgram(t, `
switch x {
case 1: y := 1; fallthrough;
case 2: y := 2;
}
`)
	require.False(t, errs.HasErrors())

	sw := prog.Children()[0]
	require.Equal(t, ast.KindSwitch, sw.Kind())
	cases := sw.Children()
	require.Len(t, cases, 2)
	assert.Equal(t, ast.KindCase, cases[0].Kind())
	assert.Equal(t, ast.KindFallthrough, cases[0].Children()[1].Kind())
}

func TestParseQualifiedSymbol(t *testing.T) {
	prog, errs := parseProgram(t, "x := ns::inner::sym;")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	require.Equal(t, ast.KindDecl, decl.Kind())
	expr := decl.RHS()
	require.Equal(t, ast.KindQualifiedIdent, expr.Kind())
	assert.Equal(t, "sym", expr.RHS().Token().Lexeme())
	assert.Equal(t, ast.KindQualifiedIdent, expr.LHS().Kind())
}

func TestParseCastAndTransmute(t *testing.T) {
	prog, errs := parseProgram(t, "x := cast(i64) y; z := transmute(f32) w;")
	require.False(t, errs.HasErrors())

	castDecl := prog.Children()[0]
	castExpr := castDecl.RHS()
	require.Equal(t, ast.KindCast, castExpr.Kind())

	transDecl := prog.Children()[1]
	transExpr := transDecl.RHS()
	require.Equal(t, ast.KindTransmute, transExpr.Kind())
}

func TestParseArrayConstructorAndSubscript(t *testing.T) {
	prog, errs := parseProgram(t, "x := [1, 2, 3][0];")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	sub := decl.RHS()
	require.Equal(t, ast.KindSubscript, sub.Kind())
	arr := sub.LHS()
	require.Equal(t, ast.KindArrayConstructor, arr.Kind())
	assert.Len(t, arr.Children(), 3)
}

func TestParseDirectiveIf(t *testing.T) {
	prog, errs := parseProgram(t, `#if cond { x := 1; } #else { x := 2; }`)
	require.False(t, errs.HasErrors())

	dir := prog.Children()[0]
	require.Equal(t, ast.KindDirective, dir.Kind())
	assert.Equal(t, "#if", dir.Token().Lexeme())
	assert.Equal(t, ast.KindIdent, dir.LHS().Kind())
	assert.Equal(t, ast.KindBlock, dir.RHS().Kind())
}

func TestParseCommentsAttachToStatement(t *testing.T) {
	prog, errs := parseProgram(t, "// a note\nx := 1;")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	comments := decl.Comments()
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0], "a note")
}

func TestParseStructDecl(t *testing.T) {
	prog, errs := parseProgram(t, "Point :: struct { x : i32; y : i32; }")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	require.Equal(t, ast.KindDecl, decl.Kind())
	assert.Equal(t, "::", decl.Token().Lexeme())
	body := decl.RHS()
	require.Equal(t, ast.KindTypeConstructor, body.Kind())
	assert.Len(t, body.Children(), 2)
}

func TestParseProcDecl(t *testing.T) {
	prog, errs := parseProgram(t, "add :: proc(a: i32, b: i32) -> i32 { return a + b; }")
	require.False(t, errs.HasErrors())

	decl := prog.Children()[0]
	require.Equal(t, ast.KindDecl, decl.Kind())
	procNode := decl.RHS()
	require.Equal(t, ast.KindProcType, procNode.Kind())

	children := procNode.Children()
	require.Len(t, children, 2) // return type, block body.
	assert.Equal(t, ast.KindBlock, children[1].Kind())
}

func TestParserRecoversFromMalformedStatement(t *testing.T) {
	// An invalid statement shouldn't cascade into the next one.
	prog, errs := parseProgram(t, ") ; x := 1;")
	assert.True(t, errs.HasErrors())
	found := false
	for _, stmt := range prog.Children() {
		if stmt.Kind() == ast.KindDecl && stmt.LHS().Token().Lexeme() == "x" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and still see the x declaration")
}
