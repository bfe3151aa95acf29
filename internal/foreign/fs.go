package foreign

import (
	"errors"
	"io/fs"
	"os"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

func fnFsRead() *object.Native {
	return &object.Native{
		Name:  "fs.read",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			path, err := unpackString(args[0], "read", 1)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to read file: %v", err)
			}
			return &object.String{Value: string(data)}, nil
		},
	}
}

// fnFsWrite writes or appends a value's string form; it returns the number of
// bytes written.
func fnFsWrite(appendMode bool) *object.Native {
	name := "write"
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		name = "append"
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return &object.Native{
		Name:  "fs." + name,
		Arity: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			path, err := unpackString(args[0], name, 1)
			if err != nil {
				return nil, err
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to open file: %v", err)
			}
			defer f.Close()
			n, err := f.WriteString(args[1].Inspect())
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to write file: %v", err)
			}
			return &object.Integer{Value: int64(n)}, nil
		},
	}
}

func fnFsExists() *object.Native {
	return &object.Native{
		Name:  "fs.exists",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			path, err := unpackString(args[0], "exists", 1)
			if err != nil {
				return nil, err
			}
			_, err = os.Stat(path)
			switch {
			case err == nil:
				return object.TRUE, nil
			case errors.Is(err, fs.ErrNotExist):
				return object.FALSE, nil
			}
			return nil, object.NewError(object.NativeError, "failed to stat file: %v", err)
		},
	}
}

func fnFsRemove() *object.Native {
	return &object.Native{
		Name:  "fs.remove",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			path, err := unpackString(args[0], "remove", 1)
			if err != nil {
				return nil, err
			}
			if err := os.Remove(path); err != nil {
				return nil, object.NewError(object.NativeError, "failed to remove file: %v", err)
			}
			return object.NULL, nil
		},
	}
}
