// Package parser implements a recursive-descent parser from Lox tokens to
// the AST consumed by the validator and interpreter.
package parser

import (
	"fmt"

	"github.com/loxlang/golox/pkg/ast"
	"github.com/loxlang/golox/pkg/lexer"
)

// Error is a syntax failure.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse tokenizes and parses a whole source file.
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Scan(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	var stmts []ast.Stmt
	for !p.check(lexer.TokEOF) {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	return &ast.Program{Stmts: stmts}, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	if !p.check(t) {
		tok := p.peek()
		return tok, Error{Line: tok.Line, Message: fmt.Sprintf("expected %s, got %q", what, tok.Text)}
	}

	return p.advance(), nil
}

func (p *parser) declaration() (ast.Stmt, error) {
	switch {
	case p.match(lexer.TokVar):
		return p.varDeclaration()
	case p.match(lexer.TokFun):
		return p.function("function")
	case p.match(lexer.TokClass):
		return p.classDeclaration()
	default:
		return p.statement()
	}
}

func (p *parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.expect(lexer.TokIdent, "variable name")
	if err != nil {
		return nil, err
	}

	// An omitted initializer defaults to nil.
	var init ast.Expr = &ast.Literal{Value: nil}
	if p.match(lexer.TokEq) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	_, err = p.expect(lexer.TokSemicolon, `";" after variable declaration`)
	if err != nil {
		return nil, err
	}

	return &ast.VarDef{Name: name.Text, Init: init}, nil
}

func (p *parser) function(kind string) (*ast.Function, error) {
	name, err := p.expect(lexer.TokIdent, kind+" name")
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokLParen, `"(" after `+kind+` name`)
	if err != nil {
		return nil, err
	}

	var params []string
	if !p.check(lexer.TokRParen) {
		for {
			param, err := p.expect(lexer.TokIdent, "parameter name")
			if err != nil {
				return nil, err
			}

			params = append(params, param.Text)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}

	_, err = p.expect(lexer.TokRParen, `")" after parameters`)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokLBrace, `"{" before `+kind+` body`)
	if err != nil {
		return nil, err
	}

	body, err := p.blockStatements()
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: name.Text, Params: params, Body: body}, nil
}

func (p *parser) classDeclaration() (ast.Stmt, error) {
	name, err := p.expect(lexer.TokIdent, "class name")
	if err != nil {
		return nil, err
	}

	var superclass ast.Expr
	if p.match(lexer.TokLt) {
		super, err := p.expect(lexer.TokIdent, "superclass name")
		if err != nil {
			return nil, err
		}

		superclass = &ast.Var{Name: super.Text}
	}

	_, err = p.expect(lexer.TokLBrace, `"{" before class body`)
	if err != nil {
		return nil, err
	}

	var methods []*ast.Function
	for !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}

		methods = append(methods, method)
	}

	_, err = p.expect(lexer.TokRBrace, `"}" after class body`)
	if err != nil {
		return nil, err
	}

	return &ast.Class{Name: name.Text, Superclass: superclass, Methods: methods}, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(lexer.TokPrint):
		return p.printStatement()
	case p.match(lexer.TokLBrace):
		stmts, err := p.blockStatements()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	case p.match(lexer.TokIf):
		return p.ifStatement()
	case p.match(lexer.TokWhile):
		return p.whileStatement()
	case p.match(lexer.TokFor):
		return p.forStatement()
	case p.match(lexer.TokReturn):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *parser) printStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokSemicolon, `";" after value`)
	if err != nil {
		return nil, err
	}

	return &ast.Print{Expr: expr}, nil
}

func (p *parser) blockStatements() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	_, err := p.expect(lexer.TokRBrace, `"}" after block`)
	if err != nil {
		return nil, err
	}

	return stmts, nil
}

func (p *parser) ifStatement() (ast.Stmt, error) {
	_, err := p.expect(lexer.TokLParen, `"(" after "if"`)
	if err != nil {
		return nil, err
	}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokRParen, `")" after if condition`)
	if err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	// The else branch is always present; an omitted one is an empty block.
	var orelse ast.Stmt = &ast.Block{}
	if p.match(lexer.TokElse) {
		orelse, err = p.statement()
		if err != nil {
			return nil, err
		}
	}

	return &ast.If{Cond: cond, Then: then, Else: orelse}, nil
}

func (p *parser) whileStatement() (ast.Stmt, error) {
	_, err := p.expect(lexer.TokLParen, `"(" after "while"`)
	if err != nil {
		return nil, err
	}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokRParen, `")" after while condition`)
	if err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	return &ast.While{Cond: cond, Body: body}, nil
}

// forStatement desugars to a while loop: the initializer and loop share a
// block, and the increment runs after the body each iteration.
func (p *parser) forStatement() (ast.Stmt, error) {
	_, err := p.expect(lexer.TokLParen, `"(" after "for"`)
	if err != nil {
		return nil, err
	}

	var init ast.Stmt
	switch {
	case p.match(lexer.TokSemicolon):
	case p.match(lexer.TokVar):
		init, err = p.varDeclaration()
		if err != nil {
			return nil, err
		}
	default:
		init, err = p.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var cond ast.Expr = &ast.Literal{Value: true}
	if !p.check(lexer.TokSemicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	_, err = p.expect(lexer.TokSemicolon, `";" after loop condition`)
	if err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(lexer.TokRParen) {
		incr, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	_, err = p.expect(lexer.TokRParen, `")" after for clauses`)
	if err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: incr}}}
	}

	var loop ast.Stmt = &ast.While{Cond: cond, Body: body}
	if init != nil {
		loop = &ast.Block{Stmts: []ast.Stmt{init, loop}}
	}

	return loop, nil
}

func (p *parser) returnStatement() (ast.Stmt, error) {
	// An omitted return value defaults to nil.
	var value ast.Expr = &ast.Literal{Value: nil}
	if !p.check(lexer.TokSemicolon) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		value = expr
	}

	_, err := p.expect(lexer.TokSemicolon, `";" after return value`)
	if err != nil {
		return nil, err
	}

	return &ast.Return{Value: value}, nil
}

func (p *parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lexer.TokSemicolon, `";" after expression`)
	if err != nil {
		return nil, err
	}

	return &ast.ExprStmt{Expr: expr}, nil
}

func (p *parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (ast.Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}

	if !p.check(lexer.TokEq) {
		return expr, nil
	}

	eq := p.advance()

	value, err := p.assignment()
	if err != nil {
		return nil, err
	}

	switch target := expr.(type) {
	case *ast.Var:
		return &ast.Assign{Name: target.Name, Value: value}, nil
	case *ast.Getattr:
		return &ast.Setattr{Object: target.Object, Name: target.Name, Value: value}, nil
	default:
		return nil, Error{Line: eq.Line, Message: "invalid assignment target"}
	}
}

func (p *parser) logicOr() (ast.Expr, error) {
	expr, err := p.logicAnd()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokOr) {
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}

		expr = &ast.Or{Left: expr, Right: right}
	}

	return expr, nil
}

func (p *parser) logicAnd() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokAnd) {
		right, err := p.equality()
		if err != nil {
			return nil, err
		}

		expr = &ast.And{Left: expr, Right: right}
	}

	return expr, nil
}

func (p *parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Operator
		switch {
		case p.match(lexer.TokEqEq):
			op = ast.OpEq
		case p.match(lexer.TokBangEq):
			op = ast.OpNe
		default:
			return expr, nil
		}

		right, err := p.comparison()
		if err != nil {
			return nil, err
		}

		expr = &ast.BinOp{Left: expr, Right: right, Op: op}
	}
}

func (p *parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Operator
		switch {
		case p.match(lexer.TokGt):
			op = ast.OpGt
		case p.match(lexer.TokGtEq):
			op = ast.OpGe
		case p.match(lexer.TokLt):
			op = ast.OpLt
		case p.match(lexer.TokLtEq):
			op = ast.OpLe
		default:
			return expr, nil
		}

		right, err := p.term()
		if err != nil {
			return nil, err
		}

		expr = &ast.BinOp{Left: expr, Right: right, Op: op}
	}
}

func (p *parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Operator
		switch {
		case p.match(lexer.TokPlus):
			op = ast.OpAdd
		case p.match(lexer.TokMinus):
			op = ast.OpSub
		default:
			return expr, nil
		}

		right, err := p.factor()
		if err != nil {
			return nil, err
		}

		expr = &ast.BinOp{Left: expr, Right: right, Op: op}
	}
}

func (p *parser) factor() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Operator
		switch {
		case p.match(lexer.TokStar):
			op = ast.OpMul
		case p.match(lexer.TokSlash):
			op = ast.OpDiv
		default:
			return expr, nil
		}

		right, err := p.unary()
		if err != nil {
			return nil, err
		}

		expr = &ast.BinOp{Left: expr, Right: right, Op: op}
	}
}

func (p *parser) unary() (ast.Expr, error) {
	var op ast.Operator
	switch {
	case p.match(lexer.TokBang):
		op = ast.OpNot
	case p.match(lexer.TokMinus):
		op = ast.OpNeg
	default:
		return p.call()
	}

	expr, err := p.unary()
	if err != nil {
		return nil, err
	}

	return &ast.UnaryOp{Op: op, Expr: expr}, nil
}

func (p *parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(lexer.TokLParen):
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}

			expr = &ast.Call{Callee: expr, Args: args}
		case p.match(lexer.TokDot):
			name, err := p.expect(lexer.TokIdent, "attribute name after \".\"")
			if err != nil {
				return nil, err
			}

			expr = &ast.Getattr{Object: expr, Name: name.Text}
		default:
			return expr, nil
		}
	}
}

func (p *parser) arguments() ([]ast.Expr, error) {
	var args []ast.Expr
	if !p.check(lexer.TokRParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}

	_, err := p.expect(lexer.TokRParen, `")" after arguments`)
	if err != nil {
		return nil, err
	}

	return args, nil
}

func (p *parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch {
	case p.match(lexer.TokNumber):
		return &ast.Literal{Value: tok.Number}, nil
	case p.match(lexer.TokString):
		return &ast.Literal{Value: tok.Text}, nil
	case p.match(lexer.TokTrue):
		return &ast.Literal{Value: true}, nil
	case p.match(lexer.TokFalse):
		return &ast.Literal{Value: false}, nil
	case p.match(lexer.TokNil):
		return &ast.Literal{Value: nil}, nil
	case p.match(lexer.TokThis):
		return &ast.This{}, nil
	case p.match(lexer.TokSuper):
		_, err := p.expect(lexer.TokDot, `"." after "super"`)
		if err != nil {
			return nil, err
		}

		method, err := p.expect(lexer.TokIdent, "superclass method name")
		if err != nil {
			return nil, err
		}

		return &ast.Super{Method: method.Text}, nil
	case p.match(lexer.TokIdent):
		return &ast.Var{Name: tok.Text}, nil
	case p.match(lexer.TokLParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		_, err = p.expect(lexer.TokRParen, `")" after expression`)
		if err != nil {
			return nil, err
		}

		return expr, nil
	}

	return nil, Error{Line: tok.Line, Message: fmt.Sprintf("expected expression, got %q", tok.Text)}
}
