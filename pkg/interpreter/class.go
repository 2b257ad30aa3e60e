package interpreter

// Method resolves a method name on the class, delegating to the base class
// when the class's own table has no entry. The second result is the class
// that owns the resolved method, which may be an ancestor of the receiver.
func (c *Class) Method(name string) (*Function, *Class, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, c, true
	}

	if c.Base != nil {
		return c.Base.Method(name)
	}

	return nil, nil, false
}

// Bind returns a copy of the function whose environment is a child of the
// captured one with "this" bound to the instance. When the owning class has
// a base, a fresh super proxy wrapping that base is seeded as well, so
// super resolves inside inherited-but-overridden dispatch.
func (f *Function) Bind(inst *Instance, owner *Class) *Function {
	env := f.Env.Child()
	env.Define("this", inst)

	if owner != nil && owner.Base != nil {
		env.Define("super", &Super{Base: owner.Base})
	}

	return &Function{
		Name:   f.Name,
		Params: f.Params,
		Body:   f.Body,
		Env:    env,
	}
}

// Get reads an attribute of the instance. Fields take precedence over
// methods, so a field may shadow a method of the same name. A resolved
// method is returned bound to the instance.
func (i *Instance) Get(name string) (Value, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}

	m, owner, ok := i.Class.Method(name)
	if !ok {
		return nil, AttributeError{Object: i.Class.Name + " instance", Name: name}
	}

	return m.Bind(i, owner), nil
}

// Set writes a field, creating or overwriting it. Fields may shadow
// methods; no validation against the method table happens here.
func (i *Instance) Set(name string, v Value) {
	i.Fields[name] = v
}
