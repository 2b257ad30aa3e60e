// Package ast defines the node types for Lox programs.
//
// The parser produces this tree and the interpreter and validator walk it;
// nodes are never mutated after construction.
package ast

// ReservedWords are the keywords of the language. None of them may be used
// as a variable, parameter, or declaration name.
var ReservedWords = map[string]bool{
	"and":    true,
	"class":  true,
	"else":   true,
	"false":  true,
	"for":    true,
	"fun":    true,
	"if":     true,
	"nil":    true,
	"or":     true,
	"print":  true,
	"return": true,
	"super":  true,
	"this":   true,
	"true":   true,
	"var":    true,
	"while":  true,
}

// Operator identifies a binary or unary operator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpGt  Operator = ">"
	OpGe  Operator = ">="
	OpLt  Operator = "<"
	OpLe  Operator = "<="
	OpEq  Operator = "=="
	OpNe  Operator = "!="

	OpNeg Operator = "-"
	OpNot Operator = "!"
)

// Node is implemented by every AST node.
type Node interface {
	node()
}

// Expr nodes evaluate to a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt nodes execute for side effect.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of a parsed source file: an ordered statement list
// with no implicit enclosing block.
type Program struct {
	Stmts []Stmt
}

func (*Program) node() {}

// Literal is a nil, boolean, number, or string constant. Value is nil,
// bool, float64, or string respectively.
type Literal struct {
	Value any
}

// Var is a variable reference.
type Var struct {
	Name string
}

// BinOp is an infix operation over two eagerly evaluated operands.
type BinOp struct {
	Left  Expr
	Right Expr
	Op    Operator
}

// UnaryOp is a prefix operation.
type UnaryOp struct {
	Op   Operator
	Expr Expr
}

// And short-circuits: the right operand is evaluated only when the left is
// truthy. The result is the last operand evaluated, not a coerced boolean.
type And struct {
	Left  Expr
	Right Expr
}

// Or short-circuits: the right operand is evaluated only when the left is
// falsy.
type Or struct {
	Left  Expr
	Right Expr
}

// Call invokes a function or constructs a class instance.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Assign mutates an existing binding and yields the assigned value.
type Assign struct {
	Name  string
	Value Expr
}

// Getattr reads an attribute of an object.
type Getattr struct {
	Object Expr
	Name   string
}

// Setattr writes a field of an instance.
type Setattr struct {
	Object Expr
	Name   string
	Value  Expr
}

// This refers to the instance a method was bound to.
type This struct{}

// Super resolves a method on the enclosing class's superclass.
type Super struct {
	Method string
}

func (*Literal) node() {}
func (*Var) node()     {}
func (*BinOp) node()   {}
func (*UnaryOp) node() {}
func (*And) node()     {}
func (*Or) node()      {}
func (*Call) node()    {}
func (*Assign) node()  {}
func (*Getattr) node() {}
func (*Setattr) node() {}
func (*This) node()    {}
func (*Super) node()   {}

func (*Literal) exprNode() {}
func (*Var) exprNode()     {}
func (*BinOp) exprNode()   {}
func (*UnaryOp) exprNode() {}
func (*And) exprNode()     {}
func (*Or) exprNode()      {}
func (*Call) exprNode()    {}
func (*Assign) exprNode()  {}
func (*Getattr) exprNode() {}
func (*Setattr) exprNode() {}
func (*This) exprNode()    {}
func (*Super) exprNode()   {}

// Print evaluates its expression and writes its rendering to the
// interpreter's print sink.
type Print struct {
	Expr Expr
}

// VarDef declares a variable in the current scope. The parser supplies a
// nil Literal when the initializer is omitted.
type VarDef struct {
	Name string
	Init Expr
}

// If runs exactly one branch. Else is always present; the parser supplies
// an empty Block when the source omits it.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// While repeats its body as long as the condition is truthy.
type While struct {
	Cond Expr
	Body Stmt
}

// Block executes its statements in a fresh child scope.
type Block struct {
	Stmts []Stmt
}

// Function declares a named function or a class method.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Class declares a class. Superclass is nil when the class has no base.
type Class struct {
	Name       string
	Superclass Expr
	Methods    []*Function
}

// Return transfers control to the nearest enclosing function call. The
// parser supplies a nil Literal when the value is omitted.
type Return struct {
	Value Expr
}

// ExprStmt evaluates an expression and discards the result.
type ExprStmt struct {
	Expr Expr
}

func (*Print) node()    {}
func (*VarDef) node()   {}
func (*If) node()       {}
func (*While) node()    {}
func (*Block) node()    {}
func (*Function) node() {}
func (*Class) node()    {}
func (*Return) node()   {}
func (*ExprStmt) node() {}

func (*Print) stmtNode()    {}
func (*VarDef) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Block) stmtNode()    {}
func (*Function) stmtNode() {}
func (*Class) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
