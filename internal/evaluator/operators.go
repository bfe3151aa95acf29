package evaluator

import (
	"math"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func (e *Evaluator) prefixOp(tok token.Token, operator string, right object.Object) (object.Object, error) {
	switch operator {
	case "!":
		b, ok := right.(*object.Boolean)
		if !ok {
			return nil, fail(tok, object.TypeError, "operator ! requires bool, got %s", object.TypeName(right))
		}
		return object.NativeBool(!b.Value), nil
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -r.Value}, nil
		case *object.Float:
			return &object.Float{Value: -r.Value}, nil
		}
	case "~":
		if r, ok := right.(*object.Integer); ok {
			return &object.Integer{Value: ^r.Value}, nil
		}
	}
	return nil, fail(tok, object.TypeError, "unsupported operand for %s: %s", operator, object.TypeName(right))
}

// binaryOp applies a non short-circuit binary operator. Two ints give an int,
// any float operand gives a float and `+` with a string operand concatenates.
func (e *Evaluator) binaryOp(tok token.Token, operator string, left, right object.Object) (object.Object, error) {
	switch operator {
	case "==":
		return object.NativeBool(object.Equals(left, right)), nil
	case "!=":
		return object.NativeBool(!object.Equals(left, right)), nil
	case "in":
		return membership(tok, left, right)
	}

	switch l := left.(type) {
	case *object.Integer:
		switch r := right.(type) {
		case *object.Integer:
			return intOp(tok, operator, l.Value, r.Value)
		case *object.Float:
			return floatOp(tok, operator, float64(l.Value), r.Value)
		}
	case *object.Float:
		switch r := right.(type) {
		case *object.Integer:
			return floatOp(tok, operator, l.Value, float64(r.Value))
		case *object.Float:
			return floatOp(tok, operator, l.Value, r.Value)
		}
	}

	_, leftIsString := left.(*object.String)
	_, rightIsString := right.(*object.String)
	switch {
	case operator == "+" && (leftIsString || rightIsString):
		return &object.String{Value: left.Inspect() + right.Inspect()}, nil
	case leftIsString && rightIsString:
		return stringCompare(tok, operator, left.(*object.String).Value, right.(*object.String).Value)
	case operator == "*" && (leftIsString || rightIsString):
		return repeatString(tok, left, right)
	}

	if l, ok := left.(*object.List); ok && operator == "+" {
		if r, ok := right.(*object.List); ok {
			elements := make([]object.Object, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			return &object.List{Elements: append(elements, r.Elements...)}, nil
		}
	}

	return nil, fail(tok, object.TypeError, "unsupported operand types for %s: %s and %s",
		operator, object.TypeName(left), object.TypeName(right))
}

func intOp(tok token.Token, operator string, a, b int64) (object.Object, error) {
	switch operator {
	case "+":
		return &object.Integer{Value: a + b}, nil
	case "-":
		return &object.Integer{Value: a - b}, nil
	case "*":
		return &object.Integer{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, fail(tok, object.DivisionByZero, "division by zero")
		}
		return &object.Integer{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, fail(tok, object.DivisionByZero, "modulo by zero")
		}
		return &object.Integer{Value: a % b}, nil
	case "**":
		if b < 0 {
			return &object.Float{Value: math.Pow(float64(a), float64(b))}, nil
		}
		result := int64(1)
		for base := a; b > 0; b >>= 1 {
			if b&1 == 1 {
				result *= base
			}
			base *= base
		}
		return &object.Integer{Value: result}, nil
	case "&":
		return &object.Integer{Value: a & b}, nil
	case "|":
		return &object.Integer{Value: a | b}, nil
	case "^":
		return &object.Integer{Value: a ^ b}, nil
	case "<<", ">>":
		if b < 0 {
			return nil, fail(tok, object.TypeError, "negative shift count %d", b)
		}
		if operator == "<<" {
			return &object.Integer{Value: a << uint64(b)}, nil
		}
		return &object.Integer{Value: a >> uint64(b)}, nil
	case "<":
		return object.NativeBool(a < b), nil
	case "<=":
		return object.NativeBool(a <= b), nil
	case ">":
		return object.NativeBool(a > b), nil
	case ">=":
		return object.NativeBool(a >= b), nil
	}
	return nil, fail(tok, object.TypeError, "unsupported operand types for %s: int and int", operator)
}

func floatOp(tok token.Token, operator string, a, b float64) (object.Object, error) {
	switch operator {
	case "+":
		return &object.Float{Value: a + b}, nil
	case "-":
		return &object.Float{Value: a - b}, nil
	case "*":
		return &object.Float{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, fail(tok, object.DivisionByZero, "division by zero")
		}
		return &object.Float{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, fail(tok, object.DivisionByZero, "modulo by zero")
		}
		return &object.Float{Value: math.Mod(a, b)}, nil
	case "**":
		return &object.Float{Value: math.Pow(a, b)}, nil
	case "<":
		return object.NativeBool(a < b), nil
	case "<=":
		return object.NativeBool(a <= b), nil
	case ">":
		return object.NativeBool(a > b), nil
	case ">=":
		return object.NativeBool(a >= b), nil
	}
	return nil, fail(tok, object.TypeError, "unsupported operand types for %s: float", operator)
}

func stringCompare(tok token.Token, operator string, a, b string) (object.Object, error) {
	switch operator {
	case "<":
		return object.NativeBool(a < b), nil
	case "<=":
		return object.NativeBool(a <= b), nil
	case ">":
		return object.NativeBool(a > b), nil
	case ">=":
		return object.NativeBool(a >= b), nil
	}
	return nil, fail(tok, object.TypeError, "unsupported operand types for %s: string and string", operator)
}

func repeatString(tok token.Token, left, right object.Object) (object.Object, error) {
	s, isString := left.(*object.String)
	n, isInt := right.(*object.Integer)
	if !isString {
		s, isString = right.(*object.String)
		n, isInt = left.(*object.Integer)
	}
	if !isString || !isInt {
		return nil, fail(tok, object.TypeError, "unsupported operand types for *: %s and %s", object.TypeName(left), object.TypeName(right))
	}
	if n.Value < 0 {
		return nil, fail(tok, object.TypeError, "negative repeat count %d", n.Value)
	}
	return &object.String{Value: strings.Repeat(s.Value, int(n.Value))}, nil
}

func membership(tok token.Token, needle, haystack object.Object) (object.Object, error) {
	switch h := haystack.(type) {
	case *object.List:
		for _, el := range h.Elements {
			if object.Equals(el, needle) {
				return object.TRUE, nil
			}
		}
		return object.FALSE, nil
	case *object.String:
		s, ok := needle.(*object.String)
		if !ok {
			return nil, fail(tok, object.TypeError, "'in <string>' requires string, got %s", object.TypeName(needle))
		}
		return object.NativeBool(strings.Contains(h.Value, s.Value)), nil
	case *object.Map:
		return object.NativeBool(hasKey(needle, h)), nil
	case *object.StructInstance:
		return object.NativeBool(hasKey(needle, h.Fields)), nil
	case *object.Instance:
		return object.NativeBool(hasKey(needle, h.Fields)), nil
	}
	return nil, fail(tok, object.TypeError, "cannot test membership in %s", object.TypeName(haystack))
}

func hasKey(key object.Object, m *object.Map) bool {
	s, ok := key.(*object.String)
	return ok && m.Has(s.Value)
}
