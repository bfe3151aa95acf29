package evaluator

import (
	"sort"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

// builtin is a name-triggered function. Builtins take precedence over user
// definitions of the same name, except the helpers below.
type builtin func(e *Evaluator, tok token.Token, args []object.Object) (object.Object, error)

var builtins map[string]builtin

// helpers are builtins that yield to a user function or callable variable
// of the same name.
var helpers = map[string]bool{
	"type_of": true, "keys": true, "values": true, "abs": true, "min": true,
	"max": true, "upper": true, "lower": true, "trim": true, "replace": true,
}

// methodBuiltins may also be called with the receiver as first argument,
// as in `xs.push(1)`.
var methodBuiltins = map[string]bool{
	"len": true, "push": true, "pop": true, "insert": true, "remove_at": true,
	"clear": true, "contains": true, "reverse": true, "sort": true, "join": true,
	"split": true, "map": true, "filter": true, "reduce": true, "keys": true,
	"values": true, "upper": true, "lower": true, "trim": true, "replace": true,
}

func init() {
	builtins = map[string]builtin{
		"int":       castTo("int"),
		"float":     castTo("float"),
		"str":       castTo("string"),
		"bool":      castTo("bool"),
		"len":       builtinLen,
		"push":      builtinPush,
		"pop":       builtinPop,
		"insert":    builtinInsert,
		"remove_at": builtinRemoveAt,
		"clear":     builtinClear,
		"contains":  builtinContains,
		"reverse":   builtinReverse,
		"sort":      builtinSort,
		"join":      builtinJoin,
		"split":     builtinSplit,
		"map":       builtinMap,
		"filter":    builtinFilter,
		"reduce":    builtinReduce,
		"range":     builtinRange,
		"type_of":   builtinTypeOf,
		"keys":      builtinKeys,
		"values":    builtinValues,
		"abs":       builtinAbs,
		"min":       extremum("min", -1),
		"max":       extremum("max", 1),
		"upper":     stringFunc("upper", strings.ToUpper),
		"lower":     stringFunc("lower", strings.ToLower),
		"trim":      stringFunc("trim", strings.TrimSpace),
		"replace":   builtinReplace,
	}
}

func arity(tok token.Token, name string, args []object.Object, min, max int) error {
	if len(args) < min || len(args) > max {
		return fail(tok, object.ArityError, "%s expects %s arguments, got %d", name, arityText(min, max, false), len(args))
	}
	return nil
}

func listArg(tok token.Token, name string, arg object.Object) (*object.List, error) {
	l, ok := arg.(*object.List)
	if !ok {
		return nil, fail(tok, object.TypeError, "%s expects a list, got %s", name, object.TypeName(arg))
	}
	return l, nil
}

func stringArg(tok token.Token, name string, arg object.Object) (string, error) {
	s, ok := arg.(*object.String)
	if !ok {
		return "", fail(tok, object.TypeError, "%s expects a string, got %s", name, object.TypeName(arg))
	}
	return s.Value, nil
}

func intArg(tok token.Token, name string, arg object.Object) (int64, error) {
	i, ok := arg.(*object.Integer)
	if !ok {
		return 0, fail(tok, object.TypeError, "%s expects an int, got %s", name, object.TypeName(arg))
	}
	return i.Value, nil
}

func castTo(target string) builtin {
	return func(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
		if err := arity(tok, target, args, 1, 1); err != nil {
			return nil, err
		}
		val, err := object.Cast(args[0], target)
		if err != nil {
			return nil, object.AsError(err).At(tok)
		}
		return val, nil
	}
}

func builtinLen(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "len", args, 1, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *object.List:
		return &object.Integer{Value: int64(len(a.Elements))}, nil
	case *object.String:
		return &object.Integer{Value: int64(len([]rune(a.Value)))}, nil
	case *object.Map:
		return &object.Integer{Value: int64(a.Len())}, nil
	case *object.StructInstance:
		return &object.Integer{Value: int64(a.Fields.Len())}, nil
	}
	return nil, fail(tok, object.TypeError, "len not supported for %s", object.TypeName(args[0]))
}

func builtinPush(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if len(args) < 2 {
		return nil, fail(tok, object.ArityError, "push expects 2 or more arguments, got %d", len(args))
	}
	l, err := listArg(tok, "push", args[0])
	if err != nil {
		return nil, err
	}
	l.Elements = append(l.Elements, args[1:]...)
	return l, nil
}

func builtinPop(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "pop", args, 1, 1); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "pop", args[0])
	if err != nil {
		return nil, err
	}
	if len(l.Elements) == 0 {
		return nil, fail(tok, object.IndexError, "pop from empty list")
	}
	last := l.Elements[len(l.Elements)-1]
	l.Elements = l.Elements[:len(l.Elements)-1]
	return last, nil
}

func builtinInsert(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "insert", args, 3, 3); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "insert", args[0])
	if err != nil {
		return nil, err
	}
	i, err := intArg(tok, "insert", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i > int64(len(l.Elements)) {
		return nil, fail(tok, object.IndexError, "insert index %d out of range for length %d", i, len(l.Elements))
	}
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[i+1:], l.Elements[i:])
	l.Elements[i] = args[2]
	return l, nil
}

func builtinRemoveAt(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "remove_at", args, 2, 2); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "remove_at", args[0])
	if err != nil {
		return nil, err
	}
	i, err := listIndex(tok, args[1], len(l.Elements))
	if err != nil {
		return nil, err
	}
	removed := l.Elements[i]
	l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
	return removed, nil
}

func builtinClear(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "clear", args, 1, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *object.List:
		a.Elements = nil
		return a, nil
	case *object.Map:
		a.Clear()
		return a, nil
	}
	return nil, fail(tok, object.TypeError, "clear not supported for %s", object.TypeName(args[0]))
}

func builtinContains(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "contains", args, 2, 2); err != nil {
		return nil, err
	}
	return membership(tok, args[1], args[0])
}

func builtinReverse(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "reverse", args, 1, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *object.List:
		for i, j := 0, len(a.Elements)-1; i < j; i, j = i+1, j-1 {
			a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
		}
		return a, nil
	case *object.String:
		runes := []rune(a.Value)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return &object.String{Value: string(runes)}, nil
	}
	return nil, fail(tok, object.TypeError, "reverse not supported for %s", object.TypeName(args[0]))
}

// builtinSort sorts a list in place, by the total order of values or by a
// comparator returning a bool (less) or an int (negative when less).
func builtinSort(e *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "sort", args, 1, 2); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "sort", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		sort.SliceStable(l.Elements, func(i, j int) bool {
			return object.Compare(l.Elements[i], l.Elements[j]) < 0
		})
		return l, nil
	}

	cmp := args[1]
	var sortErr error
	sort.SliceStable(l.Elements, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		res, err := e.apply(tok, cmp, []object.Object{l.Elements[i], l.Elements[j]})
		if err != nil {
			sortErr = err
			return false
		}
		switch r := res.(type) {
		case *object.Boolean:
			return r.Value
		case *object.Integer:
			return r.Value < 0
		}
		sortErr = fail(tok, object.TypeError, "sort comparator must return bool or int, got %s", object.TypeName(res))
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return l, nil
}

func builtinJoin(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "join", args, 1, 2); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "join", args[0])
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) == 2 {
		if sep, err = stringArg(tok, "join", args[1]); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = el.Inspect()
	}
	return &object.String{Value: strings.Join(parts, sep)}, nil
}

func builtinSplit(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "split", args, 1, 2); err != nil {
		return nil, err
	}
	s, err := stringArg(tok, "split", args[0])
	if err != nil {
		return nil, err
	}
	var parts []string
	if len(args) == 1 {
		parts = strings.Fields(s)
	} else {
		sep, err := stringArg(tok, "split", args[1])
		if err != nil {
			return nil, err
		}
		parts = strings.Split(s, sep)
	}
	list := &object.List{Elements: make([]object.Object, len(parts))}
	for i, p := range parts {
		list.Elements[i] = &object.String{Value: p}
	}
	return list, nil
}

func builtinMap(e *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "map", args, 2, 2); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "map", args[0])
	if err != nil {
		return nil, err
	}
	out := &object.List{Elements: make([]object.Object, 0, len(l.Elements))}
	for _, el := range l.Elements {
		val, err := e.apply(tok, args[1], []object.Object{el})
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, val)
	}
	return out, nil
}

func builtinFilter(e *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "filter", args, 2, 2); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "filter", args[0])
	if err != nil {
		return nil, err
	}
	out := &object.List{Elements: []object.Object{}}
	for _, el := range l.Elements {
		val, err := e.apply(tok, args[1], []object.Object{el})
		if err != nil {
			return nil, err
		}
		keep, err := object.Truthy(val)
		if err != nil {
			return nil, object.AsError(err).At(tok)
		}
		if keep {
			out.Elements = append(out.Elements, el)
		}
	}
	return out, nil
}

// builtinReduce folds a list left to right. Without an initial value the
// first element seeds the accumulator.
func builtinReduce(e *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "reduce", args, 2, 3); err != nil {
		return nil, err
	}
	l, err := listArg(tok, "reduce", args[0])
	if err != nil {
		return nil, err
	}
	elements := l.Elements
	var acc object.Object
	if len(args) == 3 {
		acc = args[2]
	} else {
		if len(elements) == 0 {
			return nil, fail(tok, object.TypeError, "reduce of empty list with no initial value")
		}
		acc, elements = elements[0], elements[1:]
	}
	for _, el := range elements {
		if acc, err = e.apply(tok, args[1], []object.Object{acc, el}); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func builtinRange(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "range", args, 1, 3); err != nil {
		return nil, err
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		v, err := intArg(tok, "range", a)
		if err != nil {
			return nil, err
		}
		bounds[i] = v
	}
	switch len(bounds) {
	case 1:
		return intRange(0, bounds[0], 1), nil
	case 2:
		return intRange(bounds[0], bounds[1], 1), nil
	}
	if bounds[2] == 0 {
		return nil, fail(tok, object.TypeError, "range step must not be zero")
	}
	return intRange(bounds[0], bounds[1], bounds[2]), nil
}

func builtinTypeOf(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "type_of", args, 1, 1); err != nil {
		return nil, err
	}
	return &object.String{Value: object.TypeName(args[0])}, nil
}

func fieldsOf(tok token.Token, name string, arg object.Object) (*object.Map, error) {
	switch a := arg.(type) {
	case *object.Map:
		return a, nil
	case *object.StructInstance:
		return a.Fields, nil
	case *object.Instance:
		return a.Fields, nil
	}
	return nil, fail(tok, object.TypeError, "%s expects a map, got %s", name, object.TypeName(arg))
}

func builtinKeys(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "keys", args, 1, 1); err != nil {
		return nil, err
	}
	m, err := fieldsOf(tok, "keys", args[0])
	if err != nil {
		return nil, err
	}
	list := &object.List{Elements: []object.Object{}}
	for _, k := range m.Keys() {
		list.Elements = append(list.Elements, &object.String{Value: k})
	}
	return list, nil
}

func builtinValues(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "values", args, 1, 1); err != nil {
		return nil, err
	}
	m, err := fieldsOf(tok, "values", args[0])
	if err != nil {
		return nil, err
	}
	list := &object.List{Elements: []object.Object{}}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		list.Elements = append(list.Elements, v)
	}
	return list, nil
}

func builtinAbs(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "abs", args, 1, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *object.Integer:
		if a.Value < 0 {
			return &object.Integer{Value: -a.Value}, nil
		}
		return a, nil
	case *object.Float:
		if a.Value < 0 {
			return &object.Float{Value: -a.Value}, nil
		}
		return a, nil
	}
	return nil, fail(tok, object.TypeError, "abs expects a number, got %s", object.TypeName(args[0]))
}

// extremum picks the smallest (sign -1) or largest (sign 1) of its arguments,
// or of a single list argument.
func extremum(name string, sign int) builtin {
	return func(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
		candidates := args
		if len(args) == 1 {
			l, err := listArg(tok, name, args[0])
			if err != nil {
				return nil, err
			}
			candidates = l.Elements
		}
		if len(candidates) == 0 {
			return nil, fail(tok, object.ArityError, "%s of no values", name)
		}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if object.Compare(c, best)*sign > 0 {
				best = c
			}
		}
		return best, nil
	}
}

func stringFunc(name string, fn func(string) string) builtin {
	return func(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
		if err := arity(tok, name, args, 1, 1); err != nil {
			return nil, err
		}
		s, err := stringArg(tok, name, args[0])
		if err != nil {
			return nil, err
		}
		return &object.String{Value: fn(s)}, nil
	}
}

func builtinReplace(_ *Evaluator, tok token.Token, args []object.Object) (object.Object, error) {
	if err := arity(tok, "replace", args, 3, 3); err != nil {
		return nil, err
	}
	parts := make([]string, 3)
	for i, a := range args {
		s, err := stringArg(tok, "replace", a)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return &object.String{Value: strings.ReplaceAll(parts[0], parts[1], parts[2])}, nil
}
