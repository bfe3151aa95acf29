package foreign

import (
	"crypto/rand"
	"encoding/binary"
	"math"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

func fnMathUnary(name string, fn func(float64) float64) *object.Native {
	return &object.Native{
		Name:  "math." + name,
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			x, err := unpackNumber(args[0], name, 1)
			if err != nil {
				return nil, err
			}
			return &object.Float{Value: fn(x)}, nil
		},
	}
}

// fnMathRound rounds to an int; ints pass through unchanged.
func fnMathRound(name string, fn func(float64) float64) *object.Native {
	return &object.Native{
		Name:  "math." + name,
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if i, ok := args[0].(*object.Integer); ok {
				return i, nil
			}
			x, err := unpackNumber(args[0], name, 1)
			if err != nil {
				return nil, err
			}
			r := fn(x)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return nil, object.NewError(object.CastError, "cannot round %s to int", object.FormatFloat(x))
			}
			return &object.Integer{Value: int64(r)}, nil
		},
	}
}

func fnMathAbs() *object.Native {
	return &object.Native{
		Name:  "math.abs",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			switch x := args[0].(type) {
			case *object.Integer:
				if x.Value < 0 {
					return &object.Integer{Value: -x.Value}, nil
				}
				return x, nil
			case *object.Float:
				return &object.Float{Value: math.Abs(x.Value)}, nil
			}
			return nil, object.NewError(object.TypeError, "argument 1 to `abs` must be a number, got %s", object.TypeName(args[0]))
		},
	}
}

func fnMathPow() *object.Native {
	return &object.Native{
		Name:  "math.pow",
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			base, err := unpackNumber(args[0], "pow", 1)
			if err != nil {
				return nil, err
			}
			exp, err := unpackNumber(args[1], "pow", 2)
			if err != nil {
				return nil, err
			}
			return &object.Float{Value: math.Pow(base, exp)}, nil
		},
	}
}

func fnMathExtremum(name string, sign int) *object.Native {
	return &object.Native{
		Name:  "math." + name,
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if len(args) == 0 {
				return nil, object.NewError(object.ArityError, "`%s` expects at least 1 argument", name)
			}
			best := args[0]
			for i, arg := range args {
				if !object.IsNumeric(arg) {
					return nil, object.NewError(object.TypeError, "argument %d to `%s` must be a number, got %s", i+1, name, object.TypeName(arg))
				}
				if object.Compare(arg, best)*sign > 0 {
					best = arg
				}
			}
			return best, nil
		},
	}
}

// fnMathRandom returns a float in [0, 1), or an int in [lo, hi) when given
// two bounds.
func fnMathRandom() *object.Native {
	return &object.Native{
		Name:  "math.random",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			var b [8]byte
			if _, err := rand.Read(b[:]); err != nil {
				return nil, object.NewError(object.NativeError, "failed to generate random number: %v", err)
			}
			n := binary.BigEndian.Uint64(b[:])

			switch len(args) {
			case 0:
				return &object.Float{Value: float64(n>>11) / (1 << 53)}, nil
			case 2:
				lo, err := unpackInt(args[0], "random", 1)
				if err != nil {
					return nil, err
				}
				hi, err := unpackInt(args[1], "random", 2)
				if err != nil {
					return nil, err
				}
				if lo >= hi {
					return nil, object.NewError(object.TypeError, "invalid range: %d is not below %d", lo, hi)
				}
				return &object.Integer{Value: lo + int64(n%uint64(hi-lo))}, nil
			}
			return nil, object.NewError(object.ArityError, "`random` expects 0 or 2 arguments, got %d", len(args))
		},
	}
}
