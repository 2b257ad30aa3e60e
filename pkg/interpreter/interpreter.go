package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/loxlang/golox/pkg/ast"
)

// ErrReturn is the control signal raised by a return statement. It unwinds
// through nested block, if, and while execution until the nearest enclosing
// function-call frame consumes it; the validator guarantees it never
// reaches top level.
var ErrReturn = errors.New("return")

// Config configures an Interpreter.
type Config struct {
	// Stdout is the print sink. Defaults to os.Stdout.
	Stdout io.Writer
}

func (c *Config) Validate(logger *slog.Logger) error {
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}

	return nil
}

// Interpreter executes programs against a persistent root environment.
// Execution is strictly synchronous and single-threaded.
type Interpreter struct {
	logger *slog.Logger
	config Config

	globals *Env
}

// New returns an interpreter with a fresh root environment.
func New(logger *slog.Logger, config Config) (*Interpreter, error) {
	err := config.Validate(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to validate interpreter config: %w", err)
	}

	return &Interpreter{
		logger:  logger,
		config:  config,
		globals: NewEnv(nil),
	}, nil
}

// Globals returns the interpreter's root environment.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Execute runs the program's top-level statements in order against the
// interpreter's root environment. The caller must have validated the
// program first; errors raised here are runtime errors and are not
// recovered internally.
func (in *Interpreter) Execute(prog *ast.Program) error {
	return in.ExecuteIn(prog, in.globals)
}

// ExecuteIn runs the program against the given environment.
func (in *Interpreter) ExecuteIn(prog *ast.Program, env *Env) error {
	for _, stmt := range prog.Stmts {
		var ret Value
		err := in.executeStatement(env, stmt, &ret)
		if err != nil {
			if errors.Is(err, ErrReturn) {
				return fmt.Errorf("return escaped top-level code")
			}
			return err
		}
	}

	return nil
}

func (in *Interpreter) executeStatement(env *Env, stmt ast.Stmt, ret *Value) error {
	switch stmt := stmt.(type) {
	case *ast.Print:
		val, err := in.evalExpression(env, stmt.Expr)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(in.config.Stdout, Show(val))
		return err
	case *ast.VarDef:
		// The initializer evaluates before the name becomes visible, so a
		// local cannot read itself in its own initializer.
		val, err := in.evalExpression(env, stmt.Init)
		if err != nil {
			return err
		}

		env.Define(stmt.Name, val)
		return nil
	case *ast.ExprStmt:
		_, err := in.evalExpression(env, stmt.Expr)
		return err
	case *ast.Block:
		scope := env.Child()

		for _, stmt := range stmt.Stmts {
			err := in.executeStatement(scope, stmt, ret)
			if err != nil {
				return err
			}
		}

		return nil
	case *ast.If:
		cond, err := in.evalExpression(env, stmt.Cond)
		if err != nil {
			return err
		}

		if Truthy(cond) {
			return in.executeStatement(env, stmt.Then, ret)
		} else if stmt.Else != nil {
			return in.executeStatement(env, stmt.Else, ret)
		}

		return nil
	case *ast.While:
		// Iterative on purpose: native stack depth stays constant no matter
		// how many iterations run.
		for {
			cond, err := in.evalExpression(env, stmt.Cond)
			if err != nil {
				return err
			}

			if !Truthy(cond) {
				return nil
			}

			err = in.executeStatement(env, stmt.Body, ret)
			if err != nil {
				return err
			}
		}
	case *ast.Return:
		val, err := in.evalExpression(env, stmt.Value)
		if err != nil {
			return err
		}

		*ret = val
		return ErrReturn
	case *ast.Function:
		fn := &Function{
			Name:   stmt.Name,
			Params: stmt.Params,
			Body:   stmt.Body,
			Env:    env,
		}

		env.Define(stmt.Name, fn)
		return nil
	case *ast.Class:
		return in.executeClassDeclaration(env, stmt)
	default:
		return fmt.Errorf("unhandled statement type: %T", stmt)
	}
}

func (in *Interpreter) executeClassDeclaration(env *Env, stmt *ast.Class) error {
	var base *Class
	if stmt.Superclass != nil {
		val, err := in.evalExpression(env, stmt.Superclass)
		if err != nil {
			return err
		}

		cls, ok := val.(*Class)
		if !ok {
			return RuntimeError{Message: "Superclass must be a class."}
		}

		base = cls
	}

	// Methods capture either the declaring environment or, when a
	// superclass exists, a child pre-seeded with "super". This makes super
	// resolvable inside every method body without per-call wiring.
	methodEnv := env
	if base != nil {
		methodEnv = env.Child()
		methodEnv.Define("super", base)
	}

	methods := make(map[string]*Function, len(stmt.Methods))
	for _, method := range stmt.Methods {
		methods[method.Name] = &Function{
			Name:   method.Name,
			Params: method.Params,
			Body:   method.Body,
			Env:    methodEnv,
		}
	}

	env.Define(stmt.Name, &Class{
		Name:    stmt.Name,
		Methods: methods,
		Base:    base,
	})

	return nil
}

func (in *Interpreter) evalExpression(env *Env, expr ast.Expr) (Value, error) {
	switch expr := expr.(type) {
	case *ast.Literal:
		return literalValue(expr)
	case *ast.Var:
		return env.Get(expr.Name)
	case *ast.Assign:
		val, err := in.evalExpression(env, expr.Value)
		if err != nil {
			return nil, err
		}

		err = env.Assign(expr.Name, val)
		if err != nil {
			return nil, err
		}

		return val, nil
	case *ast.BinOp:
		lhs, err := in.evalExpression(env, expr.Left)
		if err != nil {
			return nil, err
		}

		rhs, err := in.evalExpression(env, expr.Right)
		if err != nil {
			return nil, err
		}

		return binaryOperate(lhs, rhs, expr.Op)
	case *ast.UnaryOp:
		val, err := in.evalExpression(env, expr.Expr)
		if err != nil {
			return nil, err
		}

		return unaryOperate(val, expr.Op)
	case *ast.And:
		lhs, err := in.evalExpression(env, expr.Left)
		if err != nil {
			return nil, err
		}

		if !Truthy(lhs) {
			return lhs, nil
		}

		return in.evalExpression(env, expr.Right)
	case *ast.Or:
		lhs, err := in.evalExpression(env, expr.Left)
		if err != nil {
			return nil, err
		}

		if Truthy(lhs) {
			return lhs, nil
		}

		return in.evalExpression(env, expr.Right)
	case *ast.Call:
		callee, err := in.evalExpression(env, expr.Callee)
		if err != nil {
			return nil, err
		}

		args := make([]Value, 0, len(expr.Args))
		for _, arg := range expr.Args {
			val, err := in.evalExpression(env, arg)
			if err != nil {
				return nil, err
			}

			args = append(args, val)
		}

		switch callee := callee.(type) {
		case *Function:
			return in.callFunction(callee, args)
		case *Class:
			return in.construct(callee, args)
		default:
			return nil, TypeError{Message: "can only call functions and classes"}
		}
	case *ast.Getattr:
		obj, err := in.evalExpression(env, expr.Object)
		if err != nil {
			return nil, err
		}

		return in.getAttribute(env, obj, expr.Name)
	case *ast.Setattr:
		obj, err := in.evalExpression(env, expr.Object)
		if err != nil {
			return nil, err
		}

		val, err := in.evalExpression(env, expr.Value)
		if err != nil {
			return nil, err
		}

		switch obj := obj.(type) {
		case *Instance:
			obj.Set(expr.Name, val)
			return val, nil
		default:
			return nil, RuntimeError{Message: "Only instances have fields."}
		}
	case *ast.This:
		return env.Get("this")
	case *ast.Super:
		return in.evalSuper(env, expr)
	default:
		return nil, fmt.Errorf("unhandled expression type: %T", expr)
	}
}

func literalValue(lit *ast.Literal) (Value, error) {
	switch v := lit.Value.(type) {
	case nil:
		return Nil{}, nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case string:
		return String(v), nil
	default:
		return nil, fmt.Errorf("unhandled literal type: %T", lit.Value)
	}
}

// evalSuper resolves the reserved "super" binding, which holds either the
// base class seeded at class-declaration time or a proxy injected at method
// bind time, and dispatches the method access through the proxy.
func (in *Interpreter) evalSuper(env *Env, expr *ast.Super) (Value, error) {
	val, err := env.Get("super")
	if err != nil {
		return nil, err
	}

	var base *Class
	switch val := val.(type) {
	case *Class:
		base = val
	case *Super:
		base = val.Base
	default:
		return nil, NameError{Name: "super"}
	}

	return in.getAttribute(env, &Super{Base: base}, expr.Method)
}

// getAttribute dispatches attribute reads over the closed set of value
// variants; kinds outside it have no attributes.
func (in *Interpreter) getAttribute(env *Env, obj Value, name string) (Value, error) {
	switch obj := obj.(type) {
	case *Instance:
		return obj.Get(name)
	case *Super:
		// Always through the wrapped base class's table, never the dynamic
		// instance's most-derived class.
		m, owner, ok := obj.Base.Method(name)
		if !ok {
			return nil, AttributeError{Object: obj.Base.Name, Name: name}
		}

		this, err := env.Get("this")
		if err != nil {
			return nil, err
		}

		inst, ok := this.(*Instance)
		if !ok {
			return nil, NameError{Name: "this"}
		}

		return m.Bind(inst, owner), nil
	default:
		return nil, AttributeError{Object: Show(obj), Name: name}
	}
}

// callFunction invokes the function against a child of its captured
// environment. A return statement anywhere in the body surfaces here as
// ErrReturn carrying the result; a body that falls off the end yields nil.
func (in *Interpreter) callFunction(f *Function, args []Value) (Value, error) {
	if len(f.Params) != len(args) {
		return nil, TypeError{Message: fmt.Sprintf("expected %d arguments, got %d", len(f.Params), len(args))}
	}

	scope := f.Env.Child()
	for i, param := range f.Params {
		scope.Define(param, args[i])
	}

	for _, stmt := range f.Body {
		var ret Value
		err := in.executeStatement(scope, stmt, &ret)
		if err != nil {
			if errors.Is(err, ErrReturn) {
				if ret == nil {
					return Nil{}, nil
				}
				return ret, nil
			}
			return nil, err
		}
	}

	return Nil{}, nil
}

// construct makes an instance of the class and runs a bound init when the
// class or an ancestor defines one. The instance is always the result, no
// matter what init returns; arguments with no init anywhere in the chain
// are an arity error.
func (in *Interpreter) construct(c *Class, args []Value) (Value, error) {
	inst := &Instance{
		Class:  c,
		Fields: make(map[string]Value),
	}

	init, owner, ok := c.Method("init")
	if !ok {
		if len(args) != 0 {
			return nil, TypeError{Message: fmt.Sprintf("expected 0 arguments, got %d", len(args))}
		}
		return inst, nil
	}

	_, err := in.callFunction(init.Bind(inst, owner), args)
	if err != nil {
		return nil, err
	}

	return inst, nil
}

func binaryOperate(lhs, rhs Value, op ast.Operator) (Value, error) {
	switch op {
	case ast.OpAdd:
		switch lhs := lhs.(type) {
		case Number:
			r, ok := rhs.(Number)
			if !ok {
				return nil, TypeError{Message: "Operands must be two numbers or two strings."}
			}
			return lhs + r, nil
		case String:
			r, ok := rhs.(String)
			if !ok {
				return nil, TypeError{Message: "Operands must be two numbers or two strings."}
			}
			return lhs + r, nil
		default:
			return nil, TypeError{Message: "Operands must be two numbers or two strings."}
		}
	case ast.OpSub:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Number(l - r), nil
	case ast.OpMul:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Number(l * r), nil
	case ast.OpDiv:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}

		// Division by zero yields NaN rather than failing.
		if r == 0 {
			return Number(math.NaN()), nil
		}

		return Number(l / r), nil
	case ast.OpGt:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Bool(l > r), nil
	case ast.OpGe:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Bool(l >= r), nil
	case ast.OpLt:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Bool(l < r), nil
	case ast.OpLe:
		l, r, err := numberOperands(lhs, rhs)
		if err != nil {
			return nil, err
		}
		return Bool(l <= r), nil
	case ast.OpEq:
		return Bool(Equals(lhs, rhs)), nil
	case ast.OpNe:
		return Bool(!Equals(lhs, rhs)), nil
	default:
		return nil, fmt.Errorf("unsupported binary operation: %s", op)
	}
}

func unaryOperate(val Value, op ast.Operator) (Value, error) {
	switch op {
	case ast.OpNot:
		return Bool(!Truthy(val)), nil
	case ast.OpNeg:
		n, ok := val.(Number)
		if !ok {
			return nil, TypeError{Message: "Operand must be a number."}
		}

		// IEEE negation keeps the sign of zero: -(0) is -0.
		return Number(-float64(n)), nil
	default:
		return nil, fmt.Errorf("unsupported unary operation: %s", op)
	}
}

func numberOperands(lhs, rhs Value) (float64, float64, error) {
	l, ok := lhs.(Number)
	if !ok {
		return 0, 0, TypeError{Message: "Operands must be numbers."}
	}

	r, ok := rhs.(Number)
	if !ok {
		return 0, 0, TypeError{Message: "Operands must be numbers."}
	}

	return float64(l), float64(r), nil
}
