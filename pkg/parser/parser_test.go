package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loxlang/golox/pkg/ast"
	"github.com/loxlang/golox/pkg/parser"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, source string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(source)
	require.NoError(t, err)

	return prog
}

func requireAST(t *testing.T, want, got *ast.Program) {
	t.Helper()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_VarAssignPrint(t *testing.T) {
	got := parseProgram(t, `var x = 5; x = x + 1; print x;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.VarDef{Name: "x", Init: &ast.Literal{Value: 5.0}},
		&ast.ExprStmt{Expr: &ast.Assign{
			Name: "x",
			Value: &ast.BinOp{
				Left:  &ast.Var{Name: "x"},
				Right: &ast.Literal{Value: 1.0},
				Op:    ast.OpAdd,
			},
		}},
		&ast.Print{Expr: &ast.Var{Name: "x"}},
	}}

	requireAST(t, want, got)
}

func TestParse_VarWithoutInitializerDefaultsToNil(t *testing.T) {
	got := parseProgram(t, `var x;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.VarDef{Name: "x", Init: &ast.Literal{Value: nil}},
	}}

	requireAST(t, want, got)
}

func TestParse_Precedence(t *testing.T) {
	got := parseProgram(t, `print 1 + 2 * 3;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.Print{Expr: &ast.BinOp{
			Left: &ast.Literal{Value: 1.0},
			Right: &ast.BinOp{
				Left:  &ast.Literal{Value: 2.0},
				Right: &ast.Literal{Value: 3.0},
				Op:    ast.OpMul,
			},
			Op: ast.OpAdd,
		}},
	}}

	requireAST(t, want, got)
}

func TestParse_IfSuppliesEmptyElseBlock(t *testing.T) {
	got := parseProgram(t, `if (true) print 1;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.If{
			Cond: &ast.Literal{Value: true},
			Then: &ast.Print{Expr: &ast.Literal{Value: 1.0}},
			Else: &ast.Block{},
		},
	}}

	requireAST(t, want, got)
}

func TestParse_ForDesugarsToWhile(t *testing.T) {
	got := parseProgram(t, `for (var i = 0; i < 3; i = i + 1) print i;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.Block{Stmts: []ast.Stmt{
			&ast.VarDef{Name: "i", Init: &ast.Literal{Value: 0.0}},
			&ast.While{
				Cond: &ast.BinOp{
					Left:  &ast.Var{Name: "i"},
					Right: &ast.Literal{Value: 3.0},
					Op:    ast.OpLt,
				},
				Body: &ast.Block{Stmts: []ast.Stmt{
					&ast.Print{Expr: &ast.Var{Name: "i"}},
					&ast.ExprStmt{Expr: &ast.Assign{
						Name: "i",
						Value: &ast.BinOp{
							Left:  &ast.Var{Name: "i"},
							Right: &ast.Literal{Value: 1.0},
							Op:    ast.OpAdd,
						},
					}},
				}},
			},
		}},
	}}

	requireAST(t, want, got)
}

func TestParse_ForWithoutClausesIsBareWhileTrue(t *testing.T) {
	got := parseProgram(t, `for (;;) print 1;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.While{
			Cond: &ast.Literal{Value: true},
			Body: &ast.Print{Expr: &ast.Literal{Value: 1.0}},
		},
	}}

	requireAST(t, want, got)
}

func TestParse_ClassWithSuperclassAndMethods(t *testing.T) {
	got := parseProgram(t, `
class B < A {
  f(x) {
    return super.f() + x;
  }
}
`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.Class{
			Name:       "B",
			Superclass: &ast.Var{Name: "A"},
			Methods: []*ast.Function{{
				Name:   "f",
				Params: []string{"x"},
				Body: []ast.Stmt{
					&ast.Return{Value: &ast.BinOp{
						Left: &ast.Call{
							Callee: &ast.Super{Method: "f"},
						},
						Right: &ast.Var{Name: "x"},
						Op:    ast.OpAdd,
					}},
				},
			}},
		},
	}}

	requireAST(t, want, got)
}

func TestParse_AttributeAccessAndAssignment(t *testing.T) {
	got := parseProgram(t, `a.b.c = a.b.c + 1;`)

	abc := &ast.Getattr{
		Object: &ast.Getattr{Object: &ast.Var{Name: "a"}, Name: "b"},
		Name:   "c",
	}

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Setattr{
			Object: &ast.Getattr{Object: &ast.Var{Name: "a"}, Name: "b"},
			Name:   "c",
			Value: &ast.BinOp{
				Left:  abc,
				Right: &ast.Literal{Value: 1.0},
				Op:    ast.OpAdd,
			},
		}},
	}}

	requireAST(t, want, got)
}

func TestParse_LogicalOperators(t *testing.T) {
	got := parseProgram(t, `print a or b and c;`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.Print{Expr: &ast.Or{
			Left: &ast.Var{Name: "a"},
			Right: &ast.And{
				Left:  &ast.Var{Name: "b"},
				Right: &ast.Var{Name: "c"},
			},
		}},
	}}

	requireAST(t, want, got)
}

func TestParse_ReturnWithoutValueDefaultsToNil(t *testing.T) {
	got := parseProgram(t, `fun f() { return; }`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.Function{
			Name: "f",
			Body: []ast.Stmt{
				&ast.Return{Value: &ast.Literal{Value: nil}},
			},
		},
	}}

	requireAST(t, want, got)
}

func TestParse_CallChains(t *testing.T) {
	got := parseProgram(t, `f(1)(2).g(3);`)

	want := &ast.Program{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Call{
			Callee: &ast.Getattr{
				Object: &ast.Call{
					Callee: &ast.Call{
						Callee: &ast.Var{Name: "f"},
						Args:   []ast.Expr{&ast.Literal{Value: 1.0}},
					},
					Args: []ast.Expr{&ast.Literal{Value: 2.0}},
				},
				Name: "g",
			},
			Args: []ast.Expr{&ast.Literal{Value: 3.0}},
		}},
	}}

	requireAST(t, want, got)
}

func TestParse_Errors(t *testing.T) {
	r := require.New(t)

	_, err := parser.Parse(`print 1`)
	r.Error(err)

	_, err = parser.Parse(`1 + 2 = 3;`)
	r.Error(err)

	_, err = parser.Parse(`var;`)
	r.Error(err)

	_, err = parser.Parse(`class C < {}`)
	r.Error(err)

	_, err = parser.Parse(`super;`)
	r.Error(err)
}
