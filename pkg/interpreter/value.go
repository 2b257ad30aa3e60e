// Package interpreter implements the Lox runtime: the value model, the
// lexical environment chain, the tree-walking evaluator, and the class and
// instance machinery.
package interpreter

import (
	"math"
	"strconv"

	"github.com/loxlang/golox/pkg/ast"
)

// Value is the interface for all Lox runtime values. The sealed marker
// restricts implementations to this package; attribute access and equality
// dispatch over this closed set only.
type Value interface {
	loxValue()
}

// Nil is the nil value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// Number is a numeric value. All Lox numbers are float64.
type Number float64

// String is a string value.
type String string

// Function is a callable value: a named parameter list, a body, and the
// environment captured at the declaration site. Closures and bound methods
// alias the captured environment, which keeps it alive after the lexical
// block that created it has exited.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Stmt
	Env    *Env
}

// Class is a class value: a method table and an optional base class.
// Both are immutable after the declaration statement evaluates.
type Class struct {
	Name    string
	Methods map[string]*Function
	Base    *Class
}

// Instance is an object value: a reference to its class plus a mutable
// field map.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// Super is the transient proxy produced by evaluating `super`. Attribute
// access on it resolves through the wrapped base class's method table,
// never the dynamic instance's most-derived class.
type Super struct {
	Base *Class
}

func (Nil) loxValue()       {}
func (Bool) loxValue()      {}
func (Number) loxValue()    {}
func (String) loxValue()    {}
func (*Function) loxValue() {}
func (*Class) loxValue()    {}
func (*Instance) loxValue() {}
func (*Super) loxValue()    {}

// Truthy reports the boolean interpretation of a value: false only for nil
// and false itself.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equals implements strict equality: values of differing variants are never
// equal, numbers and strings compare by value, and functions, classes, and
// instances compare by identity.
func Equals(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && a == bv
	case Number:
		bv, ok := b.(Number)
		return ok && a == bv
	case String:
		bv, ok := b.(String)
		return ok && a == bv
	case *Function:
		bv, ok := b.(*Function)
		return ok && a == bv
	case *Class:
		bv, ok := b.(*Class)
		return ok && a == bv
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && a == bv
	case *Super:
		bv, ok := b.(*Super)
		return ok && a == bv
	default:
		return false
	}
}

// Show renders a value for the print statement. Strings render raw; use
// ShowDebug for the quoted form.
func Show(v Value) string {
	switch v := v.(type) {
	case Nil:
		return "nil"
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Number:
		return showNumber(float64(v))
	case String:
		return string(v)
	case *Function:
		return "<fn " + v.Name + ">"
	case *Class:
		return v.Name
	case *Instance:
		return v.Class.Name + " instance"
	case *Super:
		return "super"
	default:
		return ""
	}
}

// ShowDebug renders a value like Show but quotes strings.
func ShowDebug(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return Show(v)
}

func showNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	// Integral values render without a fractional part. Negative zero keeps
	// its sign.
	if f == math.Trunc(f) {
		if f == 0 && math.Signbit(f) {
			return "-0"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}
