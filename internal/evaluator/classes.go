package evaluator

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func (e *Evaluator) registerStruct(node *ast.StructStatement) {
	e.decls.Structs[node.Name.Value] = &object.StructDef{Name: node.Name.Value, Fields: node.Fields}
}

func (e *Evaluator) zeroStruct(def *object.StructDef) *object.StructInstance {
	s := &object.StructInstance{Shape: def, Fields: object.NewMap()}
	for _, f := range def.Fields {
		s.Fields.Set(f.Name.Value, object.ZeroValue(f.Type))
	}
	return s
}

// newStruct builds a struct from positional arguments; missing trailing
// fields keep their zero value.
func (e *Evaluator) newStruct(tok token.Token, def *object.StructDef, args []object.Object) (object.Object, error) {
	if len(args) > len(def.Fields) {
		return nil, fail(tok, object.ArityError, "struct %s has %d fields, got %d arguments", def.Name, len(def.Fields), len(args))
	}
	s := e.zeroStruct(def)
	for i, arg := range args {
		f := def.Fields[i]
		val, err := e.conform(tok, def.Name+"."+f.Name.Value, arg, f.Type)
		if err != nil {
			return nil, err
		}
		s.Fields.Set(f.Name.Value, val)
	}
	return s, nil
}

// constructor returns a callable building instances of a struct or class.
func (e *Evaluator) constructor(name string) (*object.Native, bool) {
	if def, ok := e.decls.Structs[name]; ok {
		return &object.Native{Name: name, Arity: -1, Fn: func(_ object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return e.newStruct(token.Token{}, def, args)
		}}, true
	}
	if cls, ok := e.decls.Classes[name]; ok {
		return &object.Native{Name: name, Arity: -1, Fn: func(_ object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return e.instantiate(token.Token{}, cls, args)
		}}, true
	}
	return nil, false
}

func (e *Evaluator) registerTrait(node *ast.TraitStatement) {
	trait := &object.TraitDef{Name: node.Name.Value, Defaults: map[string]*object.Function{}}
	for _, m := range node.Methods {
		if m.Body == nil {
			trait.Required = append(trait.Required, m.Name.Value)
			continue
		}
		trait.Defaults[m.Name.Value] = &object.Function{Name: m.Name.Value, Decl: m, Env: e.env}
	}
	e.decls.Traits[node.Name.Value] = trait
}

func (e *Evaluator) registerClass(node *ast.ClassStatement) error {
	cls := object.NewClassDef(node.Name.Value)
	cls.IsData, cls.Sealed = node.IsData, node.Sealed

	if node.Parent != nil {
		parent, ok := e.decls.Classes[node.Parent.Value]
		if !ok {
			return fail(node.Parent.Token, object.NameError, "undefined parent class %s", node.Parent.Value)
		}
		if parent.Sealed {
			return fail(node.Parent.Token, object.TypeError, "cannot extend sealed class %s", parent.Name)
		}
		cls.Parent = parent
	}

	for _, name := range node.Traits {
		trait, ok := e.decls.Traits[name.Value]
		if !ok {
			return fail(name.Token, object.NameError, "undefined trait %s", name.Value)
		}
		cls.Traits = append(cls.Traits, trait)
	}

	for _, m := range node.Methods {
		fn := &object.Function{Name: m.Function.Name.Value, Decl: m.Function, Owner: cls, Env: e.env}
		switch {
		case m.Static:
			cls.StaticMethods[fn.Name] = fn
		case m.Kind == ast.GetterMember:
			cls.Getters[fn.Name] = fn
		case m.Kind == ast.SetterMember:
			cls.Setters[fn.Name] = fn
		default:
			cls.Methods[fn.Name] = fn
		}
		if m.Visibility == ast.Private {
			cls.Private[fn.Name] = true
		}
	}

	for _, f := range node.Fields {
		name := f.Name.Value
		if f.Visibility == ast.Private {
			cls.Private[name] = true
		}
		if f.Const {
			cls.Constants[name] = true
		}
		if !f.Static {
			cls.Fields = append(cls.Fields, f)
			continue
		}
		var val object.Object = object.ZeroValue(f.Type)
		if f.Value != nil {
			var err error
			val, err = e.withReceiver(nil, cls, func() (object.Object, error) {
				return e.evalExpression(f.Value)
			})
			if err != nil {
				return err
			}
		}
		val, err := e.conform(node.Token, node.Name.Value+"."+name, val, f.Type)
		if err != nil {
			return err
		}
		cls.Statics.Set(name, val)
	}

	for _, trait := range cls.Traits {
		if err := checkTrait(node.Token, cls, trait); err != nil {
			return err
		}
	}

	e.decls.Classes[cls.Name] = cls
	return nil
}

func checkTrait(tok token.Token, cls *object.ClassDef, trait *object.TraitDef) error {
	for _, name := range trait.Required {
		if fn, _ := cls.FindMethod(name); fn == nil {
			return fail(tok, object.TypeError, "class %s does not implement %s.%s", cls.Name, trait.Name, name)
		}
	}
	return nil
}

// registerImpl handles `impl Trait for Type { ... }` and `impl Type { ... }`.
func (e *Evaluator) registerImpl(node *ast.ImplStatement) error {
	var trait *object.TraitDef
	if node.Trait != nil {
		t, ok := e.decls.Traits[node.Trait.Value]
		if !ok {
			return fail(node.Trait.Token, object.NameError, "undefined trait %s", node.Trait.Value)
		}
		trait = t
	}
	return e.registerExtension(node.Target, trait, node.Methods)
}

// registerExtension adds methods to a class, or to a struct or builtin type
// through the extension table.
func (e *Evaluator) registerExtension(target *ast.Identifier, trait *object.TraitDef, methods []*ast.FunctionStatement) error {
	if cls, ok := e.decls.Classes[target.Value]; ok {
		for _, m := range methods {
			cls.Methods[m.Name.Value] = &object.Function{Name: m.Name.Value, Decl: m, Owner: cls, Env: e.env}
		}
		if trait == nil {
			return nil
		}
		cls.Traits = append(cls.Traits, trait)
		return checkTrait(target.Token, cls, trait)
	}

	typeName := object.CanonicalType(target.Value)
	if _, isStruct := e.decls.Structs[typeName]; !isStruct && !builtinTypes[typeName] {
		return fail(target.Token, object.NameError, "undefined type %s", target.Value)
	}
	table, ok := e.decls.Extensions[typeName]
	if !ok {
		table = map[string]*object.Function{}
		e.decls.Extensions[typeName] = table
	}
	for _, m := range methods {
		table[m.Name.Value] = &object.Function{Name: m.Name.Value, Decl: m, Env: e.env}
	}
	if trait == nil {
		return nil
	}
	for name, fn := range trait.Defaults {
		if _, ok := table[name]; !ok {
			table[name] = fn
		}
	}
	for _, name := range trait.Required {
		if _, ok := table[name]; !ok {
			return fail(target.Token, object.TypeError, "type %s does not implement %s.%s", typeName, trait.Name, name)
		}
	}
	return nil
}

var builtinTypes = map[string]bool{
	"int": true, "float": true, "bool": true, "string": true,
	"list": true, "map": true, "null": true,
}

// withReceiver runs fn in a frame where `this` is self and class is the
// executing class.
func (e *Evaluator) withReceiver(self object.Object, class *object.ClassDef, fn func() (object.Object, error)) (object.Object, error) {
	frame := object.NewEnclosedEnvironment(e.env)
	frame.Self, frame.Class = self, class
	frame.Depth = e.env.Depth
	saved := e.env
	e.env = frame
	defer func() { e.env = saved }()
	return fn()
}

// instantiate creates an instance: field initialisers run from the root
// class down, then init receives the arguments.
func (e *Evaluator) instantiate(tok token.Token, cls *object.ClassDef, args []object.Object) (object.Object, error) {
	inst := &object.Instance{Class: cls, Fields: object.NewMap()}

	var chain []*object.ClassDef
	for c := cls; c != nil; c = c.Parent {
		chain = append([]*object.ClassDef{c}, chain...)
	}
	for _, c := range chain {
		for _, f := range c.Fields {
			if f.Lazy {
				continue
			}
			var val object.Object = object.ZeroValue(f.Type)
			if f.Value != nil {
				var err error
				val, err = e.withReceiver(inst, c, func() (object.Object, error) {
					return e.evalExpression(f.Value)
				})
				if err != nil {
					return nil, err
				}
			}
			val, err := e.conform(tok, cls.Name+"."+f.Name.Value, val, f.Type)
			if err != nil {
				return nil, err
			}
			inst.Fields.Set(f.Name.Value, val)
		}
	}

	init, owner := cls.FindMethod("init")
	if init == nil {
		if len(args) > 0 {
			return nil, fail(tok, object.ArityError, "%s has no init and takes no arguments, got %d", cls.Name, len(args))
		}
		return inst, nil
	}
	if _, err := e.apply(tok, &object.BoundMethod{Receiver: inst, Method: init, Class: owner}, args); err != nil {
		return nil, err
	}
	return inst, nil
}

// checkVisible enforces that private members are reached only through the
// receiver of the executing method.
func (e *Evaluator) checkVisible(tok token.Token, inst *object.Instance, name string) error {
	if inst.Class.IsPrivate(name) && e.env.Self != object.Object(inst) {
		return fail(tok, object.TypeError, "%s.%s is private", inst.Class.Name, name)
	}
	return nil
}

func (e *Evaluator) lazyField(cls *object.ClassDef, name string) (*ast.ClassField, bool) {
	for c := cls; c != nil; c = c.Parent {
		for _, f := range c.Fields {
			if f.Name.Value == name && f.Lazy {
				return f, true
			}
		}
	}
	return nil, false
}

func (e *Evaluator) declaredField(cls *object.ClassDef, name string) (*ast.ClassField, bool) {
	for c := cls; c != nil; c = c.Parent {
		for _, f := range c.Fields {
			if f.Name.Value == name {
				return f, true
			}
		}
	}
	return nil, false
}

// instanceField reads a stored field, computing a lazy field on first use.
func (e *Evaluator) instanceField(tok token.Token, inst *object.Instance, name string) (object.Object, error) {
	if val, ok := inst.Fields.Get(name); ok {
		return val, nil
	}
	f, ok := e.lazyField(inst.Class, name)
	if !ok {
		return nil, fail(tok, object.NameError, "%s has no member %s", inst.Class.Name, name)
	}
	val, err := e.withReceiver(inst, inst.Class, func() (object.Object, error) {
		return e.evalExpression(f.Value)
	})
	if err != nil {
		return nil, err
	}
	inst.Fields.Set(name, val)
	return val, nil
}

func (e *Evaluator) evalGet(node *ast.GetExpression) (object.Object, error) {
	if ident, ok := node.Object.(*ast.Identifier); ok {
		if _, bound := e.env.Get(ident.Value); !bound {
			if val, ok, err := e.qualifiedName(node.Token, ident.Value, node.Name); ok || err != nil {
				return val, err
			}
		}
	}

	obj, err := e.evalExpression(node.Object)
	if err != nil {
		return nil, err
	}
	if _, isNull := obj.(*object.Null); isNull && node.Optional {
		return object.NULL, nil
	}
	return e.getMember(node, obj)
}

// qualifiedName resolves `Owner.name` where Owner is an enum, a class or a
// native namespace rather than a variable.
func (e *Evaluator) qualifiedName(tok token.Token, owner, name string) (object.Object, bool, error) {
	if enum, ok := e.decls.Enums[owner]; ok {
		idx, ok := enum.Index[name]
		if !ok {
			return nil, false, fail(tok, object.NameError, "enum %s has no value %s", owner, name)
		}
		return &object.Integer{Value: idx}, true, nil
	}
	if _, ok := e.decls.Classes[owner]; ok {
		return e.staticCallee(tok, owner, name)
	}
	if fn, ok := e.natives[owner+"."+name]; ok {
		return fn, true, nil
	}
	return nil, false, nil
}

func (e *Evaluator) getMember(node *ast.GetExpression, obj object.Object) (object.Object, error) {
	tok, name := node.Token, node.Name
	switch o := obj.(type) {
	case *object.Instance:
		if err := e.checkVisible(tok, o, name); err != nil {
			return nil, err
		}
		if getter, owner := o.Class.FindGetter(name); getter != nil {
			return e.apply(tok, &object.BoundMethod{Receiver: o, Method: getter, Class: owner}, nil)
		}
		if _, ok := o.Fields.Get(name); ok {
			return e.instanceField(tok, o, name)
		}
		if _, ok := e.lazyField(o.Class, name); ok {
			return e.instanceField(tok, o, name)
		}
		if fn, owner := o.Class.FindMethod(name); fn != nil {
			return &object.BoundMethod{Receiver: o, Method: fn, Class: owner}, nil
		}
		if holder, ok := o.Class.FindStatic(name); ok {
			val, _ := holder.Statics.Get(name)
			return val, nil
		}
		return nil, fail(tok, object.NameError, "%s has no member %s", o.Class.Name, name)

	case *object.StructInstance:
		if val, ok := o.Fields.Get(name); ok {
			return val, nil
		}
		return nil, fail(tok, object.NameError, "struct %s has no field %s", o.Shape.Name, name)

	case *object.Map:
		if val, ok := o.Get(name); ok {
			return val, nil
		}
		if name == "length" {
			return &object.Integer{Value: int64(o.Len())}, nil
		}
		return nil, fail(tok, object.IndexError, "key %q not found", name)

	case *object.Error:
		switch name {
		case "message":
			return &object.String{Value: o.Message}, nil
		case "kind":
			return &object.String{Value: string(o.Kind)}, nil
		case "line":
			return &object.Integer{Value: int64(o.Line)}, nil
		case "column":
			return &object.Integer{Value: int64(o.Column)}, nil
		case "payload":
			if o.Payload == nil {
				return object.NULL, nil
			}
			return o.Payload, nil
		}

	case *object.List:
		if name == "length" {
			return &object.Integer{Value: int64(len(o.Elements))}, nil
		}

	case *object.String:
		if name == "length" {
			return &object.Integer{Value: int64(len([]rune(o.Value)))}, nil
		}
	}

	if fn, ok := e.decls.Extension(obj, name); ok {
		return &object.BoundMethod{Receiver: obj, Method: fn}, nil
	}
	return nil, fail(tok, object.NameError, "%s has no member %s", object.TypeName(obj), name)
}

func (e *Evaluator) setMember(tok token.Token, obj object.Object, name string, val object.Object) error {
	switch o := obj.(type) {
	case *object.Instance:
		if err := e.checkVisible(tok, o, name); err != nil {
			return err
		}
		if setter, owner := o.Class.FindSetter(name); setter != nil {
			_, err := e.apply(tok, &object.BoundMethod{Receiver: o, Method: setter, Class: owner}, []object.Object{val})
			return err
		}
		if o.Class.IsConstant(name) {
			return fail(tok, object.TypeError, "cannot assign to constant field %s.%s", o.Class.Name, name)
		}
		if holder, ok := o.Class.FindStatic(name); ok {
			return e.setStatic(tok, holder, name, val)
		}
		if f, ok := e.declaredField(o.Class, name); ok {
			var err error
			if val, err = e.conform(tok, o.Class.Name+"."+name, val, f.Type); err != nil {
				return err
			}
		}
		o.Fields.Set(name, val)
		return nil

	case *object.StructInstance:
		if !o.Shape.HasField(name) {
			return fail(tok, object.NameError, "struct %s has no field %s", o.Shape.Name, name)
		}
		o.Fields.Set(name, val)
		return nil

	case *object.Map:
		o.Set(name, val)
		return nil
	}
	return fail(tok, object.TypeError, "cannot set field %s on %s", name, object.TypeName(obj))
}

func (e *Evaluator) setStatic(tok token.Token, cls *object.ClassDef, name string, val object.Object) error {
	holder, ok := cls.FindStatic(name)
	if !ok {
		return fail(tok, object.NameError, "class %s has no static field %s", cls.Name, name)
	}
	if holder.IsConstant(name) {
		return fail(tok, object.TypeError, "cannot assign to constant field %s.%s", holder.Name, name)
	}
	holder.Statics.Set(name, val)
	return nil
}

// evalSuper binds a parent class method to the current receiver.
func (e *Evaluator) evalSuper(node *ast.SuperExpression) (object.Object, error) {
	if e.env.Self == nil || e.env.Class == nil {
		return nil, fail(node.Token, object.NameError, "super used outside of a method")
	}
	parent := e.env.Class.Parent
	if parent == nil {
		return nil, fail(node.Token, object.NameError, "class %s has no parent", e.env.Class.Name)
	}
	fn, owner := parent.FindMethod(node.Method)
	if fn == nil {
		return nil, fail(node.Token, object.NameError, "%s has no method %s", parent.Name, node.Method)
	}
	return &object.BoundMethod{Receiver: e.env.Self, Method: fn, Class: owner}, nil
}
