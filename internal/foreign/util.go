package foreign

import (
	"github.com/yen-lang/Yen-sub000/internal/object"
)

func unpackString(arg object.Object, fn string, pos int) (string, error) {
	s, ok := arg.(*object.String)
	if !ok {
		return "", object.NewError(object.TypeError, "argument %d to `%s` must be a string, got %s", pos, fn, object.TypeName(arg))
	}
	return s.Value, nil
}

func unpackInt(arg object.Object, fn string, pos int) (int64, error) {
	i, ok := arg.(*object.Integer)
	if !ok {
		return 0, object.NewError(object.TypeError, "argument %d to `%s` must be an int, got %s", pos, fn, object.TypeName(arg))
	}
	return i.Value, nil
}

func unpackNumber(arg object.Object, fn string, pos int) (float64, error) {
	f, ok := object.ToFloat(arg)
	if !ok {
		return 0, object.NewError(object.TypeError, "argument %d to `%s` must be a number, got %s", pos, fn, object.TypeName(arg))
	}
	return f, nil
}

func unpackStrings(args []object.Object, fn string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := unpackString(a, fn, i+1)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// toHost converts a value into the Go representation used by the codecs and
// the database layer.
func toHost(obj object.Object) (any, error) {
	switch o := obj.(type) {
	case *object.Null:
		return nil, nil
	case *object.Integer:
		return o.Value, nil
	case *object.Float:
		return o.Value, nil
	case *object.Boolean:
		return o.Value, nil
	case *object.String:
		return o.Value, nil
	}
	return nil, object.NewError(object.TypeError, "cannot pass %s to the host", object.TypeName(obj))
}

// fromHost converts a decoded Go scalar into a value.
func fromHost(v any) object.Object {
	switch x := v.(type) {
	case nil:
		return object.NULL
	case int:
		return &object.Integer{Value: int64(x)}
	case int64:
		return &object.Integer{Value: x}
	case float64:
		return &object.Float{Value: x}
	case bool:
		return object.NativeBool(x)
	case string:
		return &object.String{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	}
	return object.NULL
}
