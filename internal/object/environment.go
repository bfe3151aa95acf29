package object

import (
	"log/slog"

	"github.com/yen-lang/Yen-sub000/internal/ast"
)

// Environment is one frame of the scope stack. The global frame has no
// outer frame; each call pushes a frame whose outer frame is the caller's
// (or, for closures, the captured frame).
type Environment struct {
	Bindings map[string]*Binding
	Outer    *Environment

	Self   Object    // receiver inside a method call
	Class  *ClassDef // class whose method is executing
	Defers []ast.Statement
	Depth  int // number of call frames between this frame and the global one
}

type Binding struct {
	Value     Object
	IsMutable bool
	Hint      *ast.TypeRef // declared type, checked on every assignment
}

func NewEnvironment() *Environment {
	return &Environment{Bindings: make(map[string]*Binding)}
}

// NewEnclosedEnvironment opens a call frame on top of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	if outer != nil {
		env.Self = outer.Self
		env.Class = outer.Class
		env.Depth = outer.Depth + 1
	}
	return env
}

func (e *Environment) GetBinding(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.Outer {
		if binding, ok := env.Bindings[name]; ok {
			return binding, true
		}
	}
	return nil, false
}

// GetLocalBinding looks only at this frame.
func (e *Environment) GetLocalBinding(name string) (*Binding, bool) {
	binding, ok := e.Bindings[name]
	return binding, ok
}

func (e *Environment) Get(name string) (Object, bool) {
	binding, ok := e.GetBinding(name)
	if !ok {
		return nil, false
	}
	return binding.Value, true
}

// Define binds name in this frame, replacing any binding it already owns.
func (e *Environment) Define(name string, val Object, hint *ast.TypeRef) Object {
	e.Bindings[name] = &Binding{Value: val, IsMutable: true, Hint: hint}
	return val
}

func (e *Environment) DefineConstant(name string, val Object, hint *ast.TypeRef) Object {
	e.Bindings[name] = &Binding{Value: val, IsMutable: false, Hint: hint}
	return val
}

// Assign updates an existing binding. A frame never writes through to a
// binding owned by an outer frame: the name is shadowed in this frame
// instead, so the outer value is back in view once the frame is popped.
func (e *Environment) Assign(name string, val Object) (*Binding, error) {
	if binding, ok := e.Bindings[name]; ok {
		if !binding.IsMutable {
			return nil, NewError(TypeError, "cannot assign to constant %s", name)
		}
		binding.Value = val
		return binding, nil
	}

	outer, ok := e.Outer.lookup(name)
	if !ok {
		return nil, NewError(NameError, "undefined variable %s", name)
	}
	if !outer.IsMutable {
		return nil, NewError(TypeError, "cannot assign to constant %s", name)
	}

	slog.Debug("shadowing outer binding",
		slog.String("name", name),
		slog.Int("depth", e.Depth))
	binding := &Binding{Value: val, IsMutable: true, Hint: outer.Hint}
	e.Bindings[name] = binding
	return binding, nil
}

func (e *Environment) lookup(name string) (*Binding, bool) {
	if e == nil {
		return nil, false
	}
	return e.GetBinding(name)
}

func (e *Environment) RegisterDefer(stmt ast.Statement) {
	e.Defers = append(e.Defers, stmt)
}

// TakeDefers returns the registered deferred statements, last registered
// first, and clears them.
func (e *Environment) TakeDefers() []ast.Statement {
	if len(e.Defers) == 0 {
		return nil
	}
	out := make([]ast.Statement, 0, len(e.Defers))
	for i := len(e.Defers) - 1; i >= 0; i-- {
		out = append(out, e.Defers[i])
	}
	e.Defers = nil
	return out
}
