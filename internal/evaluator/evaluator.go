package evaluator

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/foreign"
	"github.com/yen-lang/Yen-sub000/internal/modules"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/pattern"
	"github.com/yen-lang/Yen-sub000/internal/token"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

// Signal is the control flow outcome of executing a statement.
type Signal int

const (
	Normal Signal = iota
	Break
	Continue
	Return
)

// Result carries a statement's signal and, for Return and expression
// statements, a value. Errors travel separately.
type Result struct {
	Signal Signal
	Value  object.Object
}

var normal = Result{Signal: Normal}

type Option func(*Evaluator)

func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) { e.out = w }
}

func WithInput(r io.Reader) Option {
	return func(e *Evaluator) { e.in = bufio.NewReader(r) }
}

func WithLoader(l *modules.Loader) Option {
	return func(e *Evaluator) { e.loader = l }
}

type Evaluator struct {
	config  util.Configuration
	out     io.Writer
	in      *bufio.Reader
	loader  *modules.Loader
	natives map[string]*object.Native

	globals *object.Environment
	env     *object.Environment // the active frame
	decls   *object.Declarations

	exports  []string
	handleID *int64
}

func New(config util.Configuration, options ...Option) *Evaluator {
	if config.MaxCallDepth <= 0 {
		config.MaxCallDepth = util.DefaultMaxCallDepth
	}
	globals := object.NewEnvironment()
	e := &Evaluator{
		config:   config,
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		natives:  foreign.Natives(),
		globals:  globals,
		env:      globals,
		decls:    object.NewDeclarations(),
		handleID: new(int64),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.loader == nil {
		e.loader = modules.NewLoader(config)
	}
	slog.Debug("evaluator created",
		slog.Int("natives", len(e.natives)),
		slog.Int("max-call-depth", config.MaxCallDepth))
	return e
}

// child creates an evaluator for a module. It shares I/O, natives and the
// module loader but starts with empty globals and declarations.
func (e *Evaluator) child() *Evaluator {
	globals := object.NewEnvironment()
	return &Evaluator{
		config:   e.config,
		out:      e.out,
		in:       e.in,
		loader:   e.loader,
		natives:  e.natives,
		globals:  globals,
		env:      globals,
		decls:    object.NewDeclarations(),
		handleID: e.handleID,
	}
}

func (e *Evaluator) SetOutput(w io.Writer) { e.out = w }
func (e *Evaluator) SetInput(r io.Reader)  { e.in = bufio.NewReader(r) }

// Output, Configuration, NextHandleID and Call make the evaluator the
// context handed to native functions.
func (e *Evaluator) Output() io.Writer                 { return e.out }
func (e *Evaluator) Configuration() util.Configuration { return e.config }

func (e *Evaluator) NextHandleID() int64 {
	*e.handleID++
	return *e.handleID
}

func (e *Evaluator) Call(fn object.Object, args ...object.Object) (object.Object, error) {
	return e.apply(token.Token{}, fn, args)
}

// Run executes a whole program. Deferred statements registered at the top
// level run when the program finishes, even when it fails.
func (e *Evaluator) Run(program *ast.Program) error {
	_, err := e.runStatements(program.Statements)
	return e.finishFrame(e.globals, err)
}

// Eval executes program statements in the persistent global state and
// returns the value of a trailing expression statement, if any.
func (e *Evaluator) Eval(program *ast.Program) (object.Object, error) {
	res, err := e.runStatements(program.Statements)
	if err != nil {
		return nil, e.finishFrame(e.globals, err)
	}
	if err := e.finishFrame(e.globals, nil); err != nil {
		return nil, err
	}
	if res.Value == nil {
		return object.NULL, nil
	}
	return res.Value, nil
}

func (e *Evaluator) runStatements(stmts []ast.Statement) (Result, error) {
	last := normal
	for _, stmt := range stmts {
		res, err := e.execute(stmt)
		if err != nil {
			return Result{}, err
		}
		if res.Signal == Return {
			return res, nil
		}
		// break and continue outside a loop are ignored at the top level
		last = Result{Signal: Normal, Value: res.Value}
	}
	return last, nil
}

// finishFrame runs the frame's deferred statements, last registered first.
// An error from a deferred statement is reported only if the frame itself
// completed without one.
func (e *Evaluator) finishFrame(frame *object.Environment, err error) error {
	defers := frame.TakeDefers()
	if len(defers) == 0 {
		return err
	}
	saved := e.env
	e.env = frame
	defer func() { e.env = saved }()
	for _, stmt := range defers {
		if _, derr := e.execute(stmt); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

// fail builds a runtime error located at tok.
func fail(tok token.Token, kind object.ErrorKind, format string, a ...interface{}) error {
	return object.NewError(kind, format, a...).At(tok)
}

// locate attaches the position of node to an error that has none yet.
func locate(err error, node ast.Node) error {
	if err == nil {
		return nil
	}
	rtErr := object.AsError(err)
	if p, ok := node.(ast.Positioned); ok {
		rtErr.At(p.Pos())
	}
	return rtErr
}

// Evaluate and EvaluateWith let the pattern matcher evaluate literal values
// and guards.
func (e *Evaluator) Evaluate(expr ast.Expression) (object.Object, error) {
	return e.evalExpression(expr)
}

func (e *Evaluator) EvaluateWith(expr ast.Expression, bindings pattern.Bindings) (object.Object, error) {
	frame := object.NewEnclosedEnvironment(e.env)
	frame.Depth = e.env.Depth
	for name, v := range bindings {
		frame.Define(name, v, nil)
	}
	saved := e.env
	e.env = frame
	defer func() { e.env = saved }()
	return e.evalExpression(expr)
}
