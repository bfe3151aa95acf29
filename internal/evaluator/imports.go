package evaluator

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/modules"
	"github.com/yen-lang/Yen-sub000/internal/object"
)

// execImport loads a module and either merges its exported names into the
// current scope or binds them as a namespace map under the alias.
func (e *Evaluator) execImport(node *ast.ImportStatement) error {
	mod, err := e.loader.Load(node.Path, e.runModule)
	if err != nil {
		return object.AsError(err).At(node.Token)
	}

	if node.Alias != nil {
		e.env.Define(node.Alias.Value, e.namespace(mod), nil)
		slog.Debug("module imported",
			slog.String("path", node.Path),
			slog.String("alias", node.Alias.Value))
		return nil
	}

	e.merge(mod)
	slog.Debug("module imported",
		slog.String("path", node.Path),
		slog.Int("exports", len(mod.Exports)))
	return nil
}

// runModule evaluates a module in a fresh evaluator sharing this one's I/O,
// natives and loader.
func (e *Evaluator) runModule(m *modules.Module) error {
	child := e.child()
	if err := child.Run(m.Program); err != nil {
		return err
	}
	m.Env, m.Decls, m.Exports, m.Context = child.globals, child.decls, child.exports, child
	return nil
}

func exported(m *modules.Module, name string) bool {
	return m.Exports == nil || slices.Contains(m.Exports, name)
}

// moduleFunction wraps a module's function so it runs against the module's
// own globals and declarations.
func moduleFunction(m *modules.Module, fn *object.Function) *object.Native {
	return &object.Native{
		Name:  fn.Name,
		Arity: -1,
		Fn: func(_ object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return m.Context.Call(fn, args...)
		},
	}
}

func (e *Evaluator) merge(m *modules.Module) {
	for name, b := range m.Env.Bindings {
		if !exported(m, name) {
			continue
		}
		if b.IsMutable {
			e.env.Define(name, b.Value, b.Hint)
		} else {
			e.env.DefineConstant(name, b.Value, b.Hint)
		}
	}
	for name, fn := range m.Decls.Functions {
		if exported(m, name) {
			e.env.Define(name, moduleFunction(m, fn), nil)
		}
	}
	for name, def := range m.Decls.Structs {
		if exported(m, name) {
			e.decls.Structs[name] = def
		}
	}
	for name, cls := range m.Decls.Classes {
		if exported(m, name) {
			e.decls.Classes[name] = cls
		}
	}
	for name, enum := range m.Decls.Enums {
		if exported(m, name) {
			e.decls.Enums[name] = enum
		}
	}
	for name, trait := range m.Decls.Traits {
		if exported(m, name) {
			e.decls.Traits[name] = trait
		}
	}
	for typeName, methods := range m.Decls.Extensions {
		table, ok := e.decls.Extensions[typeName]
		if !ok {
			table = map[string]*object.Function{}
			e.decls.Extensions[typeName] = table
		}
		for name, fn := range methods {
			table[name] = fn
		}
	}
}

// namespace collects a module's exported names into a map: values,
// functions, constructors and enums as maps of their constants. Keys are
// added in sorted order within each group.
func (e *Evaluator) namespace(m *modules.Module) *object.Map {
	ns := object.NewMap()
	owner, _ := m.Context.(*Evaluator)

	for _, name := range slices.Sorted(maps.Keys(m.Env.Bindings)) {
		if exported(m, name) {
			b, _ := m.Env.GetLocalBinding(name)
			ns.Set(name, b.Value)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(m.Decls.Functions)) {
		if exported(m, name) {
			ns.Set(name, moduleFunction(m, m.Decls.Functions[name]))
		}
	}
	if owner != nil {
		types := append(slices.Sorted(maps.Keys(m.Decls.Structs)), slices.Sorted(maps.Keys(m.Decls.Classes))...)
		for _, name := range types {
			if ctor, ok := owner.constructor(name); ok && exported(m, name) {
				ns.Set(name, ctor)
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(m.Decls.Enums)) {
		if !exported(m, name) {
			continue
		}
		enum := m.Decls.Enums[name]
		values := object.NewMap()
		for _, v := range enum.Values {
			values.Set(v, &object.Integer{Value: enum.Index[v]})
		}
		ns.Set(name, values)
	}
	return ns
}
