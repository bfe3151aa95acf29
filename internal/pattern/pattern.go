package pattern

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
)

// Bindings collects the names a pattern binds.
type Bindings map[string]object.Object

// Context evaluates the expressions embedded in patterns: literal values,
// range bounds and guards. EvaluateWith makes bindings visible while the
// expression runs.
type Context interface {
	Evaluate(expr ast.Expression) (object.Object, error)
	EvaluateWith(expr ast.Expression, bindings Bindings) (object.Object, error)
}

// Match reports whether value matches p. Bindings are added to bindings only
// when the whole pattern matches; a failed match leaves it untouched.
func Match(ctx Context, p ast.Pattern, value object.Object, bindings Bindings) (bool, error) {
	scoped := Bindings{}
	matched, err := match(ctx, p, value, scoped)
	if err != nil || !matched {
		return false, err
	}
	for name, v := range scoped {
		bindings[name] = v
	}
	return true, nil
}

func match(ctx Context, p ast.Pattern, value object.Object, bindings Bindings) (bool, error) {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return true, nil

	case *ast.BindingPattern:
		bindings[p.Name.Value] = value
		return true, nil

	case *ast.LiteralPattern:
		expected, err := ctx.Evaluate(p.Value)
		if err != nil {
			return false, err
		}
		return object.Equals(expected, value), nil

	case *ast.RangePattern:
		return matchRange(ctx, p, value)

	case *ast.TuplePattern:
		list, ok := value.(*object.List)
		if !ok || len(list.Elements) != len(p.Elements) {
			return false, nil
		}
		for i, elem := range p.Elements {
			// nested Match keeps a failing element from leaking bindings
			matched, err := Match(ctx, elem, list.Elements[i], bindings)
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil

	case *ast.StructPattern:
		return matchStruct(ctx, p, value, bindings)

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			matched, err := Match(ctx, alt, value, bindings)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case *ast.GuardedPattern:
		scoped := Bindings{}
		matched, err := match(ctx, p.Pattern, value, scoped)
		if err != nil || !matched {
			return false, err
		}
		result, err := ctx.EvaluateWith(p.Guard, scoped)
		if err != nil {
			return false, err
		}
		ok, err := object.Truthy(result)
		if err != nil || !ok {
			return false, err
		}
		for name, v := range scoped {
			bindings[name] = v
		}
		return true, nil
	}
	return false, object.NewError(object.TypeError, "unsupported pattern %s", p.String())
}

func matchRange(ctx Context, p *ast.RangePattern, value object.Object) (bool, error) {
	if !object.IsNumeric(value) {
		return false, nil
	}
	start, err := ctx.Evaluate(p.Start)
	if err != nil {
		return false, err
	}
	end, err := ctx.Evaluate(p.End)
	if err != nil {
		return false, err
	}
	if !object.IsNumeric(start) || !object.IsNumeric(end) {
		return false, object.NewError(object.TypeError, "range pattern bounds must be numbers").At(p.Token)
	}
	if object.Compare(value, start) < 0 {
		return false, nil
	}
	c := object.Compare(value, end)
	if p.Inclusive {
		return c <= 0, nil
	}
	return c < 0, nil
}

func matchStruct(ctx Context, p *ast.StructPattern, value object.Object, bindings Bindings) (bool, error) {
	var fields *object.Map
	switch v := value.(type) {
	case *object.StructInstance:
		if v.Shape.Name != p.Name.Value {
			return false, nil
		}
		fields = v.Fields
	case *object.Instance:
		if !v.Class.IsA(p.Name.Value) {
			return false, nil
		}
		fields = v.Fields
	default:
		return false, nil
	}

	for _, f := range p.Fields {
		fieldValue, ok := fields.Get(f.Name.Value)
		if !ok {
			return false, nil
		}
		matched, err := Match(ctx, f.Pattern, fieldValue, bindings)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}
