package evaluator

import (
	"log/slog"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

// evalCall evaluates a call. Leading arguments, when given, are passed before
// the written ones (the pipe operator uses this).
func (e *Evaluator) evalCall(node *ast.CallExpression, leading []object.Object) (object.Object, error) {
	args, err := e.evalArguments(node.Arguments)
	if err != nil {
		return nil, err
	}
	if len(leading) > 0 {
		args = append(append([]object.Object(nil), leading...), args...)
	}

	switch callee := node.Function.(type) {
	case *ast.Identifier:
		return e.callByName(node.Token, callee, args)
	case *ast.GetExpression:
		return e.callMethod(node.Token, callee, args)
	}

	fn, err := e.evalExpression(node.Function)
	if err != nil {
		return nil, err
	}
	return e.apply(node.Token, fn, args)
}

// callByName resolves a called identifier: builtins first, then callable
// variables, declared functions, helpers, struct and class constructors.
func (e *Evaluator) callByName(tok token.Token, ident *ast.Identifier, args []object.Object) (object.Object, error) {
	name := ident.Value
	b, isBuiltin := builtins[name]
	if isBuiltin && !helpers[name] {
		return b(e, tok, args)
	}
	if val, ok := e.env.Get(name); ok && (!isBuiltin || object.IsCallable(val)) {
		return e.apply(tok, val, args)
	}
	if fn, ok := e.decls.Functions[name]; ok {
		return e.apply(tok, fn, args)
	}
	if isBuiltin {
		return b(e, tok, args)
	}
	if def, ok := e.decls.Structs[name]; ok {
		return e.newStruct(tok, def, args)
	}
	if cls, ok := e.decls.Classes[name]; ok {
		return e.instantiate(tok, cls, args)
	}
	return nil, fail(tok, object.NameError, "undefined function %s", name)
}

// apply calls any callable value.
func (e *Evaluator) apply(tok token.Token, fn object.Object, args []object.Object) (object.Object, error) {
	switch f := fn.(type) {
	case *object.Function:
		return e.callFunction(tok, f.Name, f.Decl.Parameters, f.Decl.Body, nil, f.Decl.ReturnType, args, e.env, nil, nil)

	case *object.BoundMethod:
		return e.callFunction(tok, f.Method.Name, f.Method.Decl.Parameters, f.Method.Decl.Body, nil,
			f.Method.Decl.ReturnType, args, e.env, f.Receiver, f.Class)

	case *object.Closure:
		return e.callFunction(tok, "<closure>", f.Parameters, f.Block, f.Body, nil, args, f.Env, f.Env.Self, f.Env.Class)

	case *object.Native:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, fail(tok, object.ArityError, "%s expects %d arguments, got %d", f.Name, f.Arity, len(args))
		}
		result, err := f.Fn(e, args...)
		if err != nil {
			return nil, object.AsError(err).At(tok)
		}
		if result == nil {
			return object.NULL, nil
		}
		return result, nil

	case *object.Composed:
		first, err := e.apply(tok, f.First, args)
		if err != nil {
			return nil, err
		}
		return e.apply(tok, f.Second, []object.Object{first})
	}
	return nil, fail(tok, object.TypeError, "%s is not callable", object.TypeName(fn))
}

// callFunction runs a user function, method or closure in a new frame on top
// of outer. For ordinary functions outer is the caller's frame, so callee
// code sees the caller's names; assignments to them shadow rather than write
// through.
func (e *Evaluator) callFunction(
	tok token.Token,
	name string,
	params []*ast.Parameter,
	block *ast.BlockStatement,
	body ast.Expression,
	returnType *ast.TypeRef,
	args []object.Object,
	outer *object.Environment,
	self object.Object,
	class *object.ClassDef,
) (object.Object, error) {
	if e.env.Depth >= e.config.MaxCallDepth {
		return nil, fail(tok, object.RecursionError, "maximum call depth %d exceeded in %s", e.config.MaxCallDepth, name)
	}

	frame := object.NewEnclosedEnvironment(outer)
	frame.Self, frame.Class = self, class
	frame.Depth = e.env.Depth + 1

	saved := e.env
	e.env = frame
	defer func() { e.env = saved }()

	slog.Debug("call",
		slog.String("function", name),
		slog.Int("depth", frame.Depth))

	if err := e.bindParameters(tok, name, params, args, frame); err != nil {
		return nil, err
	}

	var (
		result object.Object = object.NULL
		err    error
	)
	if block != nil {
		var res Result
		res, err = e.execBlock(block)
		if err == nil && res.Signal == Return && res.Value != nil {
			result = res.Value
		}
	} else if body != nil {
		result, err = e.evalExpression(body)
	}

	err = e.finishFrame(frame, err)
	if err != nil {
		return nil, err
	}
	if returnType != nil {
		return e.conform(tok, "return value of "+name, result, returnType)
	}
	return result, nil
}

func (e *Evaluator) bindParameters(tok token.Token, name string, params []*ast.Parameter, args []object.Object, frame *object.Environment) error {
	required, variadic := 0, false
	for _, p := range params {
		switch {
		case p.Variadic:
			variadic = true
		case p.Default == nil:
			required++
		}
	}
	positional := len(params)
	if variadic {
		positional--
	}
	if len(args) < required || (!variadic && len(args) > positional) {
		return fail(tok, object.ArityError, "%s expects %s arguments, got %d", name, arityText(required, positional, variadic), len(args))
	}

	for i, p := range params {
		var val object.Object
		switch {
		case p.Variadic:
			rest := []object.Object{}
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			val = &object.List{Elements: rest}
		case i < len(args):
			val = args[i]
		default:
			var err error
			if val, err = e.evalExpression(p.Default); err != nil {
				return err
			}
		}
		val, err := e.conform(tok, p.Name.Value, val, p.Type)
		if err != nil {
			return err
		}
		frame.Define(p.Name.Value, val, p.Type)
	}
	return nil
}

func arityText(required, positional int, variadic bool) string {
	switch {
	case variadic:
		return itoa(required) + " or more"
	case required == positional:
		return itoa(required)
	}
	return itoa(required) + " to " + itoa(positional)
}

func itoa(n int) string { return (&object.Integer{Value: int64(n)}).Inspect() }

// conform checks val against a declared type, widening int to float.
func (e *Evaluator) conform(tok token.Token, name string, val object.Object, hint *ast.TypeRef) (object.Object, error) {
	if hint == nil {
		return val, nil
	}
	if !object.ConformsTo(val, hint, e.isUserType) {
		return nil, fail(tok, object.TypeError, "%s: expected %s, got %s", name, hint.String(), object.TypeName(val))
	}
	if i, ok := val.(*object.Integer); ok && object.CanonicalType(hint.Name) == "float" {
		return &object.Float{Value: float64(i.Value)}, nil
	}
	return val, nil
}

func (e *Evaluator) isUserType(name string) bool {
	if _, ok := e.decls.Classes[name]; ok {
		return true
	}
	if _, ok := e.decls.Structs[name]; ok {
		return true
	}
	_, ok := e.decls.Traits[name]
	return ok
}

// callMethod handles `receiver.name(args)`.
func (e *Evaluator) callMethod(tok token.Token, get *ast.GetExpression, args []object.Object) (object.Object, error) {
	if ident, ok := get.Object.(*ast.Identifier); ok {
		if _, bound := e.env.Get(ident.Value); !bound {
			if fn, ok, err := e.staticCallee(tok, ident.Value, get.Name); ok || err != nil {
				if err != nil {
					return nil, err
				}
				return e.apply(tok, fn, args)
			}
		}
	}

	receiver, err := e.evalExpression(get.Object)
	if err != nil {
		return nil, err
	}
	if _, isNull := receiver.(*object.Null); isNull && get.Optional {
		return object.NULL, nil
	}

	switch r := receiver.(type) {
	case *object.Instance:
		if fn, owner := r.Class.FindMethod(get.Name); fn != nil {
			if err := e.checkVisible(tok, r, get.Name); err != nil {
				return nil, err
			}
			return e.apply(tok, &object.BoundMethod{Receiver: r, Method: fn, Class: owner}, args)
		}
		if val, ok := r.Fields.Get(get.Name); ok && object.IsCallable(val) {
			return e.apply(tok, val, args)
		}
		if fn, ok := r.Class.FindStaticMethod(get.Name); ok {
			return e.apply(tok, fn, args)
		}
	case *object.Map:
		if val, ok := r.Get(get.Name); ok && object.IsCallable(val) {
			return e.apply(tok, val, args)
		}
	case *object.StructInstance:
		if val, ok := r.Fields.Get(get.Name); ok && object.IsCallable(val) {
			return e.apply(tok, val, args)
		}
	}

	if fn, ok := e.decls.Extension(receiver, get.Name); ok {
		return e.apply(tok, &object.BoundMethod{Receiver: receiver, Method: fn}, args)
	}
	if b, ok := builtins[get.Name]; ok && methodBuiltins[get.Name] {
		return b(e, tok, append([]object.Object{receiver}, args...))
	}
	return nil, fail(tok, object.NameError, "%s has no method %s", object.TypeName(receiver), get.Name)
}

// staticCallee resolves `Name.member` when Name is not a variable: static
// methods, native functions and module namespaces.
func (e *Evaluator) staticCallee(tok token.Token, owner, member string) (object.Object, bool, error) {
	if cls, ok := e.decls.Classes[owner]; ok {
		if fn, ok := cls.FindStaticMethod(member); ok {
			return fn, true, nil
		}
		if holder, ok := cls.FindStatic(member); ok {
			val, _ := holder.Statics.Get(member)
			return val, true, nil
		}
		return nil, false, fail(tok, object.NameError, "class %s has no static member %s", owner, member)
	}
	if fn, ok := e.natives[owner+"."+member]; ok {
		return fn, true, nil
	}
	return nil, false, nil
}

func (e *Evaluator) evalPipe(node *ast.PipeExpression) (object.Object, error) {
	left, err := e.evalExpression(node.Left)
	if err != nil {
		return nil, err
	}
	args := []object.Object{left}
	switch right := node.Right.(type) {
	case *ast.CallExpression:
		return e.evalCall(right, args)
	case *ast.Identifier:
		return e.callByName(node.Token, right, args)
	}
	fn, err := e.evalExpression(node.Right)
	if err != nil {
		return nil, err
	}
	return e.apply(node.Token, fn, args)
}

// builtinValue wraps a builtin so it can be passed around as a value.
func (e *Evaluator) builtinValue(name string, b builtin) *object.Native {
	return &object.Native{
		Name:  name,
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return b(e, token.Token{}, args)
		},
	}
}
