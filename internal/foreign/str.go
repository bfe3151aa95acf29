package foreign

import (
	"strings"
	"unicode/utf8"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

func fnStrMap(name string, fn func(string) string) *object.Native {
	return &object.Native{
		Name:  "str." + name,
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			s, err := unpackString(args[0], name, 1)
			if err != nil {
				return nil, err
			}
			return &object.String{Value: fn(s)}, nil
		},
	}
}

func fnStrPredicate(name string, fn func(string, string) bool) *object.Native {
	return &object.Native{
		Name:  "str." + name,
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			parts, err := unpackStrings(args, name)
			if err != nil {
				return nil, err
			}
			return object.NativeBool(fn(parts[0], parts[1])), nil
		},
	}
}

func fnStrReplace() *object.Native {
	return &object.Native{
		Name:  "str.replace",
		Arity: 3,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			parts, err := unpackStrings(args, "replace")
			if err != nil {
				return nil, err
			}
			return &object.String{Value: strings.ReplaceAll(parts[0], parts[1], parts[2])}, nil
		},
	}
}

// fnStrIndexOf returns the rune index of the first occurrence, or -1.
func fnStrIndexOf() *object.Native {
	return &object.Native{
		Name:  "str.index_of",
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			parts, err := unpackStrings(args, "index_of")
			if err != nil {
				return nil, err
			}
			idx := strings.Index(parts[0], parts[1])
			if idx >= 0 {
				idx = utf8.RuneCountInString(parts[0][:idx])
			}
			return &object.Integer{Value: int64(idx)}, nil
		},
	}
}

func fnStrRepeat() *object.Native {
	return &object.Native{
		Name:  "str.repeat",
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			s, err := unpackString(args[0], "repeat", 1)
			if err != nil {
				return nil, err
			}
			n, err := unpackInt(args[1], "repeat", 2)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, object.NewError(object.TypeError, "negative repeat count %d", n)
			}
			return &object.String{Value: strings.Repeat(s, int(n))}, nil
		},
	}
}

// fnStrFormat substitutes each `{}` in the template with the next argument.
func fnStrFormat() *object.Native {
	return &object.Native{
		Name:  "str.format",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if len(args) == 0 {
				return nil, object.NewError(object.ArityError, "`format` expects a template")
			}
			tmpl, err := unpackString(args[0], "format", 1)
			if err != nil {
				return nil, err
			}
			var out strings.Builder
			next := 1
			for {
				before, after, found := strings.Cut(tmpl, "{}")
				out.WriteString(before)
				if !found {
					break
				}
				if next >= len(args) {
					return nil, object.NewError(object.ArityError, "`format` has more placeholders than arguments")
				}
				out.WriteString(args[next].Inspect())
				next++
				tmpl = after
			}
			return &object.String{Value: out.String()}, nil
		},
	}
}
