package evaluator

import (
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func (e *Evaluator) evalExpression(expr ast.Expression) (object.Object, error) {
	val, err := e.evalNode(expr)
	if err != nil {
		return nil, locate(err, expr)
	}
	return val, nil
}

func (e *Evaluator) evalNode(expr ast.Expression) (object.Object, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}, nil

	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.BooleanLiteral:
		return object.NativeBool(node.Value), nil

	case *ast.NullLiteral:
		return object.NULL, nil

	case *ast.InterpolatedString:
		var out strings.Builder
		for _, part := range node.Parts {
			if lit, ok := part.(*ast.StringLiteral); ok {
				out.WriteString(lit.Value)
				continue
			}
			val, err := e.evalExpression(part)
			if err != nil {
				return nil, err
			}
			out.WriteString(val.Inspect())
		}
		return &object.String{Value: out.String()}, nil

	case *ast.Identifier:
		return e.evalIdentifier(node)

	case *ast.PrefixExpression:
		right, err := e.evalExpression(node.Right)
		if err != nil {
			return nil, err
		}
		return e.prefixOp(node.Token, node.Operator, right)

	case *ast.InfixExpression:
		if node.Operator == "&&" || node.Operator == "||" {
			return e.evalLogical(node)
		}
		left, err := e.evalExpression(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.evalExpression(node.Right)
		if err != nil {
			return nil, err
		}
		return e.binaryOp(node.Token, node.Operator, left, right)

	case *ast.RangeExpression:
		return e.evalRange(node)

	case *ast.CastExpression:
		val, err := e.evalExpression(node.Value)
		if err != nil {
			return nil, err
		}
		if _, isNull := val.(*object.Null); isNull && node.Target.Nullable {
			return val, nil
		}
		return object.Cast(val, node.Target.Name)

	case *ast.IsExpression:
		val, err := e.evalExpression(node.Value)
		if err != nil {
			return nil, err
		}
		if _, isNull := val.(*object.Null); isNull && node.Target.Nullable {
			return object.TRUE, nil
		}
		return object.NativeBool(object.IsOfType(val, node.Target.Name)), nil

	case *ast.TernaryExpression:
		ok, err := e.condition(node.Condition)
		if err != nil {
			return nil, err
		}
		if ok {
			return e.evalExpression(node.Consequence)
		}
		return e.evalExpression(node.Alternative)

	case *ast.PipeExpression:
		return e.evalPipe(node)

	case *ast.ComposeExpression:
		first, err := e.evalExpression(node.Left)
		if err != nil {
			return nil, err
		}
		second, err := e.evalExpression(node.Right)
		if err != nil {
			return nil, err
		}
		if !object.IsCallable(first) || !object.IsCallable(second) {
			return nil, fail(node.Token, object.TypeError, "cannot compose %s and %s", object.TypeName(first), object.TypeName(second))
		}
		return &object.Composed{First: first, Second: second}, nil

	case *ast.CoalesceExpression:
		left, err := e.evalExpression(node.Left)
		if err != nil {
			return nil, err
		}
		if _, isNull := left.(*object.Null); !isNull {
			return left, nil
		}
		return e.evalExpression(node.Right)

	case *ast.CallExpression:
		return e.evalCall(node, nil)

	case *ast.ListLiteral:
		elements, err := e.evalArguments(node.Elements)
		if err != nil {
			return nil, err
		}
		return &object.List{Elements: elements}, nil

	case *ast.MapLiteral:
		return e.evalMapLiteral(node)

	case *ast.IndexExpression:
		left, err := e.evalExpression(node.Left)
		if err != nil {
			return nil, err
		}
		index, err := e.evalExpression(node.Index)
		if err != nil {
			return nil, err
		}
		return e.index(node.Token, left, index)

	case *ast.SliceExpression:
		return e.evalSlice(node)

	case *ast.GetExpression:
		return e.evalGet(node)

	case *ast.ThisExpression:
		if e.env.Self == nil {
			return nil, fail(node.Token, object.NameError, "this used outside of a method")
		}
		return e.env.Self, nil

	case *ast.SuperExpression:
		return e.evalSuper(node)

	case *ast.LambdaExpression:
		return &object.Closure{Parameters: node.Parameters, Body: node.Body, Block: node.Block, Env: e.env}, nil

	case *ast.SpreadExpression:
		return nil, fail(node.Token, object.TypeError, "spread is only allowed in list literals and call arguments")

	case *ast.InputExpression:
		return e.evalInput(node)
	}

	return nil, object.NewError(object.TypeError, "unsupported expression %T", expr)
}

// evalIdentifier resolves a name: variables first, then declared functions,
// builtins, struct and class constructors and native namespaces.
func (e *Evaluator) evalIdentifier(node *ast.Identifier) (object.Object, error) {
	if val, ok := e.env.Get(node.Value); ok {
		return val, nil
	}
	if fn, ok := e.decls.Functions[node.Value]; ok {
		return fn, nil
	}
	if b, ok := builtins[node.Value]; ok {
		return e.builtinValue(node.Value, b), nil
	}
	if ctor, ok := e.constructor(node.Value); ok {
		return ctor, nil
	}
	if ns, ok := e.nativeNamespace(node.Value); ok {
		return ns, nil
	}
	return nil, fail(node.Token, object.NameError, "undefined variable %s", node.Value)
}

// nativeNamespace collects the natives registered under prefix into a map,
// so `let m = math; m.sqrt(4)` works.
func (e *Evaluator) nativeNamespace(prefix string) (*object.Map, bool) {
	ns := object.NewMap()
	for name, fn := range e.natives {
		if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
			ns.Set(rest, fn)
		}
	}
	return ns, ns.Len() > 0
}

func (e *Evaluator) evalLogical(node *ast.InfixExpression) (object.Object, error) {
	left, err := e.evalExpression(node.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(*object.Boolean)
	if !ok {
		return nil, fail(node.Token, object.TypeError, "operator %s requires bool operands, got %s", node.Operator, object.TypeName(left))
	}
	if (node.Operator == "&&" && !lb.Value) || (node.Operator == "||" && lb.Value) {
		return lb, nil
	}
	right, err := e.evalExpression(node.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(*object.Boolean)
	if !ok {
		return nil, fail(node.Token, object.TypeError, "operator %s requires bool operands, got %s", node.Operator, object.TypeName(right))
	}
	return rb, nil
}

func (e *Evaluator) evalRange(node *ast.RangeExpression) (object.Object, error) {
	start, err := e.evalExpression(node.Start)
	if err != nil {
		return nil, err
	}
	end, err := e.evalExpression(node.End)
	if err != nil {
		return nil, err
	}
	s, ok1 := start.(*object.Integer)
	t, ok2 := end.(*object.Integer)
	if !ok1 || !ok2 {
		return nil, fail(node.Token, object.TypeError, "range bounds must be int, got %s and %s", object.TypeName(start), object.TypeName(end))
	}
	if node.Inclusive {
		return intRangeThrough(s.Value, t.Value), nil
	}
	return intRange(s.Value, t.Value, 1), nil
}

// intRange lists start, start+step, ... stopping before end.
func intRange(start, end, step int64) *object.List {
	list := &object.List{}
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		list.Elements = append(list.Elements, &object.Integer{Value: i})
		if (step > 0 && i > math.MaxInt64-step) || (step < 0 && i < math.MinInt64-step) {
			break
		}
	}
	return list
}

// intRangeThrough lists start..=last; last may be math.MaxInt64.
func intRangeThrough(start, last int64) *object.List {
	list := &object.List{}
	for i := start; i <= last; i++ {
		list.Elements = append(list.Elements, &object.Integer{Value: i})
		if i == last {
			break
		}
	}
	return list
}

// evalArguments evaluates expressions, expanding `...list` spreads in place.
func (e *Evaluator) evalArguments(exprs []ast.Expression) ([]object.Object, error) {
	out := make([]object.Object, 0, len(exprs))
	for _, expr := range exprs {
		if spread, ok := expr.(*ast.SpreadExpression); ok {
			val, err := e.evalExpression(spread.Value)
			if err != nil {
				return nil, err
			}
			list, ok := val.(*object.List)
			if !ok {
				return nil, fail(spread.Token, object.TypeError, "cannot spread %s", object.TypeName(val))
			}
			out = append(out, list.Elements...)
			continue
		}
		val, err := e.evalExpression(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (e *Evaluator) evalMapLiteral(node *ast.MapLiteral) (object.Object, error) {
	m := object.NewMap()
	for i, keyExpr := range node.Keys {
		key, err := e.evalExpression(keyExpr)
		if err != nil {
			return nil, err
		}
		k, ok := key.(*object.String)
		if !ok {
			return nil, fail(node.Token, object.TypeError, "map keys must be string, got %s", object.TypeName(key))
		}
		val, err := e.evalExpression(node.Values[i])
		if err != nil {
			return nil, err
		}
		m.Set(k.Value, val)
	}
	return m, nil
}

func (e *Evaluator) index(tok token.Token, left, index object.Object) (object.Object, error) {
	switch container := left.(type) {
	case *object.List:
		i, err := listIndex(tok, index, len(container.Elements))
		if err != nil {
			return nil, err
		}
		return container.Elements[i], nil

	case *object.String:
		runes := []rune(container.Value)
		i, err := listIndex(tok, index, len(runes))
		if err != nil {
			return nil, err
		}
		return &object.String{Value: string(runes[i])}, nil

	case *object.Map:
		key, err := stringKey(tok, index)
		if err != nil {
			return nil, err
		}
		val, ok := container.Get(key)
		if !ok {
			return nil, fail(tok, object.IndexError, "key %q not found", key)
		}
		return val, nil

	case *object.StructInstance:
		key, err := stringKey(tok, index)
		if err != nil {
			return nil, err
		}
		val, ok := container.Fields.Get(key)
		if !ok {
			return nil, fail(tok, object.IndexError, "struct %s has no field %s", container.Shape.Name, key)
		}
		return val, nil

	case *object.Instance:
		key, err := stringKey(tok, index)
		if err != nil {
			return nil, err
		}
		if err := e.checkVisible(tok, container, key); err != nil {
			return nil, err
		}
		if _, ok := container.Fields.Get(key); !ok {
			if _, lazy := e.lazyField(container.Class, key); !lazy {
				return nil, fail(tok, object.IndexError, "%s has no field %s", container.Class.Name, key)
			}
		}
		return e.instanceField(tok, container, key)
	}
	return nil, fail(tok, object.TypeError, "cannot index %s", object.TypeName(left))
}

func (e *Evaluator) setIndex(tok token.Token, left, index, val object.Object) error {
	switch container := left.(type) {
	case *object.List:
		i, err := listIndex(tok, index, len(container.Elements))
		if err != nil {
			return err
		}
		container.Elements[i] = val
		return nil

	case *object.Map:
		key, err := stringKey(tok, index)
		if err != nil {
			return err
		}
		container.Set(key, val)
		return nil

	case *object.StructInstance:
		key, err := stringKey(tok, index)
		if err != nil {
			return err
		}
		if !container.Shape.HasField(key) {
			return fail(tok, object.IndexError, "struct %s has no field %s", container.Shape.Name, key)
		}
		container.Fields.Set(key, val)
		return nil

	case *object.Instance:
		key, err := stringKey(tok, index)
		if err != nil {
			return err
		}
		return e.setMember(tok, container, key, val)

	case *object.String:
		return fail(tok, object.TypeError, "strings are immutable")
	}
	return fail(tok, object.TypeError, "cannot index %s", object.TypeName(left))
}

func listIndex(tok token.Token, index object.Object, length int) (int, error) {
	i, ok := index.(*object.Integer)
	if !ok {
		return 0, fail(tok, object.TypeError, "index must be int, got %s", object.TypeName(index))
	}
	if i.Value < 0 || i.Value >= int64(length) {
		return 0, fail(tok, object.IndexError, "index %d out of range [0, %d)", i.Value, length)
	}
	return int(i.Value), nil
}

func stringKey(tok token.Token, index object.Object) (string, error) {
	s, ok := index.(*object.String)
	if !ok {
		return "", fail(tok, object.TypeError, "key must be string, got %s", object.TypeName(index))
	}
	return s.Value, nil
}

func (e *Evaluator) evalSlice(node *ast.SliceExpression) (object.Object, error) {
	left, err := e.evalExpression(node.Left)
	if err != nil {
		return nil, err
	}

	var length int
	switch container := left.(type) {
	case *object.List:
		length = len(container.Elements)
	case *object.String:
		length = utf8.RuneCountInString(container.Value)
	default:
		return nil, fail(node.Token, object.TypeError, "cannot slice %s", object.TypeName(left))
	}

	start, err := e.sliceBound(node.Start, 0, length)
	if err != nil {
		return nil, err
	}
	end, err := e.sliceBound(node.End, length, length)
	if err != nil {
		return nil, err
	}
	if start > end {
		start = end
	}

	if list, ok := left.(*object.List); ok {
		return &object.List{Elements: append([]object.Object(nil), list.Elements[start:end]...)}, nil
	}
	runes := []rune(left.(*object.String).Value)
	return &object.String{Value: string(runes[start:end])}, nil
}

// sliceBound evaluates a slice bound; negative values count from the end and
// the result is clamped to [0, length].
func (e *Evaluator) sliceBound(expr ast.Expression, def, length int) (int, error) {
	if expr == nil {
		return def, nil
	}
	val, err := e.evalExpression(expr)
	if err != nil {
		return 0, err
	}
	n, ok := val.(*object.Integer)
	if !ok {
		return 0, object.NewError(object.TypeError, "slice bound must be int, got %s", object.TypeName(val))
	}
	i := int(n.Value)
	if i < 0 {
		i += length
	}
	return max(0, min(i, length)), nil
}

func (e *Evaluator) evalInput(node *ast.InputExpression) (object.Object, error) {
	if node.Prompt != nil {
		prompt, err := e.evalExpression(node.Prompt)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(e.out, prompt.Inspect()); err != nil {
			return nil, err
		}
	}
	line, err := e.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return object.NULL, nil
		}
		return nil, err
	}
	var val object.Object = &object.String{Value: strings.TrimRight(line, "\r\n")}
	if node.Target != nil {
		return object.Cast(val, node.Target.Name)
	}
	return val, nil
}
