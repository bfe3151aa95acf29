package object

import (
	"math"
	"strconv"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
)

// CanonicalType maps annotation aliases to the name TypeName reports.
func CanonicalType(name string) string {
	switch name {
	case "double":
		return "float"
	case "str":
		return "string"
	case "boolean":
		return "bool"
	case "fn", "func":
		return "function"
	}
	return name
}

// Cast converts between the scalar types. Casting to a value's own type
// returns it unchanged.
func Cast(value Object, target string) (Object, error) {
	switch CanonicalType(target) {
	case "int":
		return castInt(value)
	case "float":
		return castFloat(value)
	case "bool":
		return castBool(value)
	case "string":
		if s, ok := value.(*String); ok {
			return s, nil
		}
		return &String{Value: value.Inspect()}, nil
	}
	if TypeName(value) == target {
		return value, nil
	}
	return nil, NewError(CastError, "cannot cast %s to %s", TypeName(value), target)
}

func castInt(value Object) (Object, error) {
	switch v := value.(type) {
	case *Integer:
		return v, nil
	case *Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return nil, NewError(CastError, "cannot cast %s to int", FormatFloat(v.Value))
		}
		return &Integer{Value: int64(math.Trunc(v.Value))}, nil
	case *Boolean:
		if v.Value {
			return &Integer{Value: 1}, nil
		}
		return &Integer{Value: 0}, nil
	case *String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64)
		if err != nil {
			return nil, NewError(CastError, "cannot cast %q to int", v.Value)
		}
		return &Integer{Value: n}, nil
	}
	return nil, NewError(CastError, "cannot cast %s to int", TypeName(value))
}

func castFloat(value Object) (Object, error) {
	switch v := value.(type) {
	case *Integer:
		return &Float{Value: float64(v.Value)}, nil
	case *Float:
		return v, nil
	case *Boolean:
		if v.Value {
			return &Float{Value: 1}, nil
		}
		return &Float{Value: 0}, nil
	case *String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, NewError(CastError, "cannot cast %q to float", v.Value)
		}
		return &Float{Value: f}, nil
	}
	return nil, NewError(CastError, "cannot cast %s to float", TypeName(value))
}

func castBool(value Object) (Object, error) {
	switch v := value.(type) {
	case *Boolean:
		return v, nil
	case *Integer:
		return NativeBool(v.Value != 0), nil
	case *Float:
		return NativeBool(v.Value != 0), nil
	case *String:
		return NativeBool(v.Value != ""), nil
	case *Null:
		return FALSE, nil
	case *List:
		return NativeBool(len(v.Elements) > 0), nil
	case *Map:
		return NativeBool(v.Len() > 0), nil
	}
	return nil, NewError(CastError, "cannot cast %s to bool", TypeName(value))
}

// IsOfType is the `is` test against a type name. Class instances also match
// their ancestors and implemented traits.
func IsOfType(value Object, name string) bool {
	name = CanonicalType(name)
	switch name {
	case "any":
		return true
	case "number":
		return IsNumeric(value)
	case "function":
		return IsCallable(value)
	}
	if inst, ok := value.(*Instance); ok {
		return inst.Class.IsA(name)
	}
	return TypeName(value) == name
}

// ConformsTo checks a value against a declared annotation. int widens to
// float; a nullable annotation also admits null. Unknown names (generic
// parameters, user types not yet declared) are not checked.
func ConformsTo(value Object, hint *ast.TypeRef, known func(string) bool) bool {
	if hint == nil {
		return true
	}
	if _, isNull := value.(*Null); isNull && hint.Nullable {
		return true
	}
	name := CanonicalType(hint.Name)
	switch name {
	case "int", "float", "bool", "string", "list", "map", "null", "any", "number", "function":
	default:
		if known == nil || !known(name) {
			return true
		}
	}
	if name == "float" {
		if _, ok := value.(*Integer); ok {
			return true
		}
	}
	return IsOfType(value, name)
}

// ZeroValue is the initial value of a field annotated with hint.
func ZeroValue(hint *ast.TypeRef) Object {
	if hint == nil || hint.Nullable {
		return NULL
	}
	switch CanonicalType(hint.Name) {
	case "int":
		return &Integer{Value: 0}
	case "float":
		return &Float{Value: 0}
	case "bool":
		return FALSE
	case "string":
		return &String{Value: ""}
	case "list":
		return &List{}
	case "map":
		return NewMap()
	}
	return NULL
}
