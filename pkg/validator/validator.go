// Package validator implements the semantic validation pass that runs over
// a whole program before any execution. It is a tree walk independent of
// the evaluator's: each node is checked with the chain of its ancestors
// available, which is how this/super/return placement rules are decided.
// The first violation is fatal; no partial execution follows a failed
// validation.
package validator

import (
	"fmt"

	"github.com/loxlang/golox/pkg/ast"
)

// SemanticError is a static rule violation. Token names the offending
// identifier or keyword.
type SemanticError struct {
	Message string
	Token   string
}

func (e SemanticError) Error() string {
	if e.Token == "" {
		return e.Message
	}

	return fmt.Sprintf("error at %q: %s", e.Token, e.Message)
}

// Validate walks the program and returns the first semantic error found,
// or nil when the program is well formed.
func Validate(prog *ast.Program) error {
	v := &validator{}
	v.push(prog)

	for _, stmt := range prog.Stmts {
		err := v.walkStmt(stmt)
		if err != nil {
			return err
		}
	}

	return nil
}

type validator struct {
	// ancestors holds the chain from the program root down to the node
	// currently being validated, nearest last.
	ancestors []ast.Node
}

func (v *validator) push(n ast.Node) {
	v.ancestors = append(v.ancestors, n)
}

func (v *validator) pop() {
	v.ancestors = v.ancestors[:len(v.ancestors)-1]
}

// parents iterates the ancestor chain from nearest to root, excluding the
// node itself.
func (v *validator) parents(yield func(ast.Node) bool) {
	for i := len(v.ancestors) - 1; i >= 0; i-- {
		if !yield(v.ancestors[i]) {
			return
		}
	}
}

func (v *validator) walkStmt(stmt ast.Stmt) error {
	err := v.checkStmt(stmt)
	if err != nil {
		return err
	}

	v.push(stmt)
	defer v.pop()

	switch stmt := stmt.(type) {
	case *ast.Print:
		return v.walkExpr(stmt.Expr)
	case *ast.VarDef:
		return v.walkExpr(stmt.Init)
	case *ast.ExprStmt:
		return v.walkExpr(stmt.Expr)
	case *ast.Block:
		for _, s := range stmt.Stmts {
			err := v.walkStmt(s)
			if err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		err := v.walkExpr(stmt.Cond)
		if err != nil {
			return err
		}

		err = v.walkStmt(stmt.Then)
		if err != nil {
			return err
		}

		if stmt.Else != nil {
			return v.walkStmt(stmt.Else)
		}
		return nil
	case *ast.While:
		err := v.walkExpr(stmt.Cond)
		if err != nil {
			return err
		}

		return v.walkStmt(stmt.Body)
	case *ast.Function:
		for _, s := range stmt.Body {
			err := v.walkStmt(s)
			if err != nil {
				return err
			}
		}
		return nil
	case *ast.Class:
		if stmt.Superclass != nil {
			err := v.walkExpr(stmt.Superclass)
			if err != nil {
				return err
			}
		}

		for _, m := range stmt.Methods {
			err := v.walkStmt(m)
			if err != nil {
				return err
			}
		}
		return nil
	case *ast.Return:
		if stmt.Value != nil {
			return v.walkExpr(stmt.Value)
		}
		return nil
	default:
		return nil
	}
}

func (v *validator) walkExpr(expr ast.Expr) error {
	if expr == nil {
		return nil
	}

	err := v.checkExpr(expr)
	if err != nil {
		return err
	}

	v.push(expr)
	defer v.pop()

	switch expr := expr.(type) {
	case *ast.BinOp:
		err := v.walkExpr(expr.Left)
		if err != nil {
			return err
		}
		return v.walkExpr(expr.Right)
	case *ast.UnaryOp:
		return v.walkExpr(expr.Expr)
	case *ast.And:
		err := v.walkExpr(expr.Left)
		if err != nil {
			return err
		}
		return v.walkExpr(expr.Right)
	case *ast.Or:
		err := v.walkExpr(expr.Left)
		if err != nil {
			return err
		}
		return v.walkExpr(expr.Right)
	case *ast.Call:
		err := v.walkExpr(expr.Callee)
		if err != nil {
			return err
		}

		for _, arg := range expr.Args {
			err := v.walkExpr(arg)
			if err != nil {
				return err
			}
		}
		return nil
	case *ast.Assign:
		return v.walkExpr(expr.Value)
	case *ast.Getattr:
		return v.walkExpr(expr.Object)
	case *ast.Setattr:
		err := v.walkExpr(expr.Object)
		if err != nil {
			return err
		}
		return v.walkExpr(expr.Value)
	default:
		return nil
	}
}

func (v *validator) checkStmt(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.VarDef:
		return v.checkVarDef(stmt)
	case *ast.Block:
		return checkDuplicateDeclarations(stmt.Stmts)
	case *ast.Function:
		return v.checkFunction(stmt)
	case *ast.Class:
		return v.checkClass(stmt)
	case *ast.Return:
		return v.checkReturn(stmt)
	default:
		return nil
	}
}

func (v *validator) checkExpr(expr ast.Expr) error {
	switch expr := expr.(type) {
	case *ast.Var:
		if ast.ReservedWords[expr.Name] {
			return SemanticError{Message: "Expect variable name.", Token: expr.Name}
		}
		return nil
	case *ast.This:
		for parent := range v.parents {
			if _, ok := parent.(*ast.Class); ok {
				return nil
			}
		}

		return SemanticError{Message: "Can't use 'this' outside of a class.", Token: "this"}
	case *ast.Super:
		for parent := range v.parents {
			class, ok := parent.(*ast.Class)
			if !ok {
				continue
			}

			if class.Superclass == nil {
				return SemanticError{Message: "Can't use 'super' in a class with no superclass.", Token: "super"}
			}

			return nil
		}

		return SemanticError{Message: "Can't use 'super' outside of a class.", Token: "super"}
	default:
		return nil
	}
}

func (v *validator) checkVarDef(stmt *ast.VarDef) error {
	if ast.ReservedWords[stmt.Name] {
		return SemanticError{Message: "Expect variable name.", Token: stmt.Name}
	}

	if !usesName(stmt.Init, stmt.Name) {
		return nil
	}

	// Self-reference is an error only for block-scoped declarations;
	// top-level self-reference reads the previous global binding.
	for parent := range v.parents {
		switch parent.(type) {
		case *ast.Block:
			return SemanticError{Message: "Can't read local variable in its own initializer.", Token: stmt.Name}
		case *ast.Program:
			return nil
		}
	}

	return nil
}

func (v *validator) checkFunction(stmt *ast.Function) error {
	seen := make(map[string]bool, len(stmt.Params))
	for _, param := range stmt.Params {
		if ast.ReservedWords[param] {
			return SemanticError{Message: "Expect variable name.", Token: param}
		}

		if seen[param] {
			return SemanticError{Message: "Already a variable with this name in this scope.", Token: param}
		}
		seen[param] = true
	}

	// Locals anywhere in the body, nested blocks included, cannot reuse a
	// parameter name.
	return checkParamShadowing(stmt.Body, seen)
}

func checkParamShadowing(stmts []ast.Stmt, params map[string]bool) error {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *ast.VarDef:
			if params[stmt.Name] {
				return SemanticError{Message: "Already a variable with this name in this scope.", Token: stmt.Name}
			}
		case *ast.Block:
			err := checkParamShadowing(stmt.Stmts, params)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func checkDuplicateDeclarations(stmts []ast.Stmt) error {
	seen := make(map[string]bool)
	for _, stmt := range stmts {
		decl, ok := stmt.(*ast.VarDef)
		if !ok {
			continue
		}

		if seen[decl.Name] {
			return SemanticError{Message: "Already a variable with this name in this scope.", Token: decl.Name}
		}
		seen[decl.Name] = true
	}

	return nil
}

func (v *validator) checkClass(stmt *ast.Class) error {
	if ast.ReservedWords[stmt.Name] {
		return SemanticError{Message: "Expect class name.", Token: stmt.Name}
	}

	if super, ok := stmt.Superclass.(*ast.Var); ok && super.Name == stmt.Name {
		return SemanticError{Message: "A class can't inherit from itself.", Token: stmt.Name}
	}

	return nil
}

func (v *validator) checkReturn(stmt *ast.Return) error {
	var enclosing *ast.Function
	var enclosingIndex int

	found := false
	for i := len(v.ancestors) - 1; i >= 0; i-- {
		if fn, ok := v.ancestors[i].(*ast.Function); ok {
			enclosing = fn
			enclosingIndex = i
			found = true
			break
		}
	}

	if !found {
		return SemanticError{Message: "Can't return from top-level code.", Token: "return"}
	}

	// A value-carrying return inside an init method that is a direct class
	// member is rejected; nested functions named init are unaffected.
	if enclosing.Name == "init" && enclosingIndex > 0 {
		if _, ok := v.ancestors[enclosingIndex-1].(*ast.Class); ok {
			if !isNilLiteral(stmt.Value) {
				return SemanticError{Message: "Can't return a value from an initializer.", Token: "return"}
			}
		}
	}

	return nil
}

func isNilLiteral(expr ast.Expr) bool {
	if expr == nil {
		return true
	}

	lit, ok := expr.(*ast.Literal)
	return ok && lit.Value == nil
}

// usesName reports whether the expression reads the given variable name
// anywhere inside it.
func usesName(expr ast.Expr, name string) bool {
	switch expr := expr.(type) {
	case *ast.Var:
		return expr.Name == name
	case *ast.BinOp:
		return usesName(expr.Left, name) || usesName(expr.Right, name)
	case *ast.UnaryOp:
		return usesName(expr.Expr, name)
	case *ast.And:
		return usesName(expr.Left, name) || usesName(expr.Right, name)
	case *ast.Or:
		return usesName(expr.Left, name) || usesName(expr.Right, name)
	case *ast.Call:
		if usesName(expr.Callee, name) {
			return true
		}

		for _, arg := range expr.Args {
			if usesName(arg, name) {
				return true
			}
		}
		return false
	case *ast.Assign:
		return usesName(expr.Value, name)
	case *ast.Getattr:
		return usesName(expr.Object, name)
	case *ast.Setattr:
		return usesName(expr.Object, name) || usesName(expr.Value, name)
	default:
		return false
	}
}
