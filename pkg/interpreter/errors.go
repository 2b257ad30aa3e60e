package interpreter

import "fmt"

// NameError reports a reference to a name with no binding anywhere on the
// environment chain.
type NameError struct {
	Name string
}

func (e NameError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// TypeError reports an operator applied to operands of the wrong kind, a
// call of a non-invocable value, or an arity mismatch.
type TypeError struct {
	Message string
}

func (e TypeError) Error() string {
	return e.Message
}

// AttributeError reports an unknown field or method.
type AttributeError struct {
	Object string
	Name   string
}

func (e AttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Object, e.Name)
}

// RuntimeError reports the remaining execution failures: a non-class
// superclass, or a field write on a class or function.
type RuntimeError struct {
	Message string
}

func (e RuntimeError) Error() string {
	return e.Message
}
