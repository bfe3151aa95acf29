package pattern

import (
	"fmt"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/parser"
)

// literalContext evaluates the few expression kinds the tests use.
type literalContext struct {
	bindings Bindings
}

func (c *literalContext) Evaluate(expr ast.Expression) (object.Object, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: e.Value}, nil
	case *ast.FloatLiteral:
		return &object.Float{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &object.String{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return object.NativeBool(e.Value), nil
	case *ast.PrefixExpression:
		v, err := c.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return &object.Integer{Value: -v.(*object.Integer).Value}, nil
	case *ast.Identifier:
		if v, ok := c.bindings[e.Value]; ok {
			return v, nil
		}
		return nil, object.NewError(object.NameError, "undefined variable %s", e.Value)
	case *ast.InfixExpression:
		l, err := c.Evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return object.NativeBool(object.Compare(l, r) > 0), nil
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func (c *literalContext) EvaluateWith(expr ast.Expression, bindings Bindings) (object.Object, error) {
	saved := c.bindings
	c.bindings = bindings
	defer func() { c.bindings = saved }()
	return c.Evaluate(expr)
}

func parsePattern(t *testing.T, src string) ast.Pattern {
	t.Helper()
	program, errs := parser.Parse("match (0) { " + src + " => null; }")
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	return program.Statements[0].(*ast.MatchStatement).Arms[0].Pattern
}

func ints(values ...int64) *object.List {
	list := &object.List{}
	for _, v := range values {
		list.Elements = append(list.Elements, &object.Integer{Value: v})
	}
	return list
}

func TestMatch(t *testing.T) {
	point := &object.StructDef{Name: "Point"}
	p := &object.StructInstance{Shape: point, Fields: object.NewMap()}
	p.Fields.Set("x", &object.Integer{Value: 1})
	p.Fields.Set("y", &object.Integer{Value: 2})

	tests := []struct {
		pattern  string
		value    object.Object
		matched  bool
		bindings map[string]string
	}{
		{"_", object.NULL, true, nil},
		{"1", &object.Integer{Value: 1}, true, nil},
		{"1", &object.Float{Value: 1}, false, nil},
		{"\"a\"", &object.String{Value: "a"}, true, nil},
		{"-3", &object.Integer{Value: -3}, true, nil},
		{"n", &object.Integer{Value: 7}, true, map[string]string{"n": "7"}},
		{"1..5", &object.Integer{Value: 5}, false, nil},
		{"1..=5", &object.Integer{Value: 5}, true, nil},
		{"1..=5", &object.Float{Value: 2.5}, true, nil},
		{"1..=5", &object.String{Value: "3"}, false, nil},
		{"(a, b)", ints(1, 2), true, map[string]string{"a": "1", "b": "2"}},
		{"(a, b)", ints(1, 2, 3), false, nil},
		{"[a, 9]", ints(1, 2), false, nil},
		{"(x)", &object.Integer{Value: 4}, true, map[string]string{"x": "4"}},
		{"1 | 2 | 3", &object.Integer{Value: 2}, true, nil},
		{"Point { x, y: 2 }", p, true, map[string]string{"x": "1"}},
		{"Point { x: 5 }", p, false, nil},
		{"Other { x }", p, false, nil},
		{"n when n > 3", &object.Integer{Value: 4}, true, map[string]string{"n": "4"}},
		{"n if n > 3", &object.Integer{Value: 2}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			pat := parsePattern(t, tt.pattern)
			bindings := Bindings{}
			matched, err := Match(&literalContext{}, pat, tt.value, bindings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if matched != tt.matched {
				t.Fatalf("matched=%v, want %v", matched, tt.matched)
			}
			if !matched && len(bindings) != 0 {
				t.Errorf("failed match leaked bindings %v", bindings)
			}
			for name, want := range tt.bindings {
				got, ok := bindings[name]
				if !ok || got.Inspect() != want {
					t.Errorf("binding %s=%v, want %s", name, got, want)
				}
			}
		})
	}
}

func TestOrPatternKeepsFirstMatchingBindings(t *testing.T) {
	pat := parsePattern(t, "(a, 0) | (0, a)")
	bindings := Bindings{}
	matched, err := Match(&literalContext{}, pat, ints(0, 0), bindings)
	if err != nil || !matched {
		t.Fatalf("matched=%v err=%v", matched, err)
	}
	if bindings["a"].Inspect() != "0" {
		t.Errorf("a=%s", bindings["a"].Inspect())
	}

	bindings = Bindings{}
	matched, _ = Match(&literalContext{}, pat, ints(0, 8), bindings)
	if !matched || bindings["a"].Inspect() != "8" {
		t.Errorf("second alternative should bind a=8, got %v", bindings)
	}
}

func TestGuardErrorsPropagate(t *testing.T) {
	pat := parsePattern(t, "n when missing > 1")
	_, err := Match(&literalContext{}, pat, &object.Integer{Value: 1}, Bindings{})
	if !object.IsKind(err, object.NameError) {
		t.Fatalf("expected NameError, got %v", err)
	}
}
