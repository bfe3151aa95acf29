package foreign

import (
	"log/slog"
	"os"
	"time"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

func fnSysEnv() *object.Native {
	return &object.Native{
		Name:  "sys.env",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			name, err := unpackString(args[0], "env", 1)
			if err != nil {
				return nil, err
			}
			if value, ok := os.LookupEnv(name); ok {
				return &object.String{Value: value}, nil
			}
			return object.NULL, nil
		},
	}
}

// fnSysArgs lists the arguments given after the script path.
func fnSysArgs() *object.Native {
	return &object.Native{
		Name:  "sys.args",
		Arity: 0,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			list := &object.List{Elements: []object.Object{}}
			for _, a := range ctx.Configuration().Args {
				list.Elements = append(list.Elements, &object.String{Value: a})
			}
			return list, nil
		},
	}
}

func fnSysTime() *object.Native {
	return &object.Native{
		Name:  "sys.time",
		Arity: 0,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return &object.Integer{Value: time.Now().UnixMilli()}, nil
		},
	}
}

func fnSysSleep() *object.Native {
	return &object.Native{
		Name:  "sys.sleep",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			ms, err := unpackInt(args[0], "sleep", 1)
			if err != nil {
				return nil, err
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return object.NULL, nil
		},
	}
}

func fnSysExit() *object.Native {
	return &object.Native{
		Name:  "sys.exit",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			code := int64(0)
			if len(args) > 0 {
				var err error
				if code, err = unpackInt(args[0], "exit", 1); err != nil {
					return nil, err
				}
			}
			slog.Debug("exit requested", slog.Int64("code", code))
			os.Exit(int(code))
			return object.NULL, nil
		},
	}
}
