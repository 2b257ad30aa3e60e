package interpreter

// Env is one frame of the lexical environment chain. Definitions land in
// the receiver frame only; lookup and assignment search outward through the
// parents. Frames are shared by reference: closures and bound methods keep
// their captured frame alive after the block that created it has exited.
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv returns a fresh frame with the given parent. A nil parent makes a
// root frame.
func NewEnv(parent *Env) *Env {
	return &Env{
		vars:   make(map[string]Value),
		parent: parent,
	}
}

// Child returns a new frame whose parent is the receiver.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Define inserts or overwrites a binding in this frame only. It never
// searches outward, so a definition in a child frame shadows the parent's.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Get looks the name up in this frame, then outward. It fails with a
// NameError when the chain is exhausted.
func (e *Env) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, nil
		}
	}

	return nil, NameError{Name: name}
}

// Assign mutates an existing binding, searching outward like Get. It fails
// with a NameError when the name is unbound; assignment never creates a
// binding.
func (e *Env) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return nil
		}
	}

	return NameError{Name: name}
}
