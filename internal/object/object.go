package object

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

const (
	NULL_OBJ    = "NULL"
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"

	LIST_OBJ     = "LIST"
	MAP_OBJ      = "MAP"
	STRUCT_OBJ   = "STRUCT"
	INSTANCE_OBJ = "INSTANCE"

	FUNCTION_OBJ     = "FUNCTION"
	BOUND_METHOD_OBJ = "BOUND_METHOD"
	NATIVE_OBJ       = "NATIVE"
	CLOSURE_OBJ      = "CLOSURE"
	COMPOSED_OBJ     = "COMPOSED"
	ERROR_OBJ        = "ERROR"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// EvaluatorContext is the view of the interpreter handed to native functions.
type EvaluatorContext interface {
	Call(fn Object, args ...Object) (Object, error)
	Output() io.Writer
	Configuration() util.Configuration
	NextHandleID() int64
}

type ForeignFunction func(ctx EvaluatorContext, args ...Object) (Object, error)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Container is implemented by values that render differently when nested.
type Container interface {
	Object
	inspect(depth int) string
}

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return FormatFloat(f.Value) }

// FormatFloat renders the shortest decimal that round-trips, always in plain
// notation with a '.', so the result lexes back as a FLOAT literal.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// List is shared by reference: every alias sees in-place mutation.
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string  { return l.inspect(0) }
func (l *List) inspect(depth int) string {
	if depth >= 2 {
		return "[list]"
	}
	elements := make([]string, 0, len(l.Elements))
	for _, e := range l.Elements {
		elements = append(elements, inspectNested(e, depth+1))
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// Map is a string-keyed mapping that remembers insertion order for printing
// and iteration.
type Map struct {
	keys  []string
	pairs map[string]Object
}

func NewMap() *Map {
	return &Map{pairs: map[string]Object{}}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string  { return m.inspect(0) }
func (m *Map) inspect(depth int) string {
	if depth >= 2 {
		return "{map}"
	}
	return "{" + m.inspectPairs(depth) + "}"
}

func (m *Map) inspectPairs(depth int) string {
	pairs := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, k+": "+inspectNested(m.pairs[k], depth+1))
	}
	return strings.Join(pairs, ", ")
}

func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.pairs[key]
	return v, ok
}

func (m *Map) Set(key string, value Object) {
	if _, ok := m.pairs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.pairs[key] = value
}

func (m *Map) Delete(key string) bool {
	if _, ok := m.pairs[key]; !ok {
		return false
	}
	delete(m.pairs, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *Map) Has(key string) bool {
	_, ok := m.pairs[key]
	return ok
}

func (m *Map) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Map) Clear() {
	m.keys = nil
	m.pairs = map[string]Object{}
}

// StructInstance is a value of a `struct` declaration.
type StructInstance struct {
	Shape  *StructDef
	Fields *Map
}

func (s *StructInstance) Type() ObjectType { return STRUCT_OBJ }
func (s *StructInstance) Inspect() string  { return s.inspect(0) }
func (s *StructInstance) inspect(depth int) string {
	if depth >= 2 {
		return "{struct}"
	}
	return s.Shape.Name + " {" + s.Fields.inspectPairs(depth) + "}"
}

// Instance is an object of a class.
type Instance struct {
	Class  *ClassDef
	Fields *Map
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string  { return i.inspect(0) }
func (i *Instance) inspect(depth int) string {
	if depth >= 2 {
		return "{struct}"
	}
	return i.Class.Name + " {" + i.Fields.inspectPairs(depth) + "}"
}

func inspectNested(obj Object, depth int) string {
	switch o := obj.(type) {
	case Container:
		return o.inspect(depth)
	case nil:
		return "null"
	}
	return obj.Inspect()
}

// Function is a declared function or method; identity is the declaration.
type Function struct {
	Name  string
	Decl  *ast.FunctionStatement
	Owner *ClassDef // the class (or trait implementor) that declared a method
	Env   *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Name + ">" }

// BoundMethod pairs a receiver with the method looked up on it.
type BoundMethod struct {
	Receiver Object
	Method   *Function
	Class    *ClassDef // where the method was found; super resolves from its parent
}

func (bm *BoundMethod) Type() ObjectType { return BOUND_METHOD_OBJ }
func (bm *BoundMethod) Inspect() string {
	return "<method " + bm.Method.Name + ">"
}

// Native is a host function. Arity -1 accepts any number of arguments.
type Native struct {
	Name  string
	Arity int
	Fn    ForeignFunction
}

func (n *Native) Type() ObjectType { return NATIVE_OBJ }
func (n *Native) Inspect() string  { return "<native " + n.Name + ">" }

// Closure is a lambda with the frame that was active when it was created.
type Closure struct {
	Parameters []*ast.Parameter
	Body       ast.Expression
	Block      *ast.BlockStatement
	Env        *Environment
}

func (c *Closure) Type() ObjectType { return CLOSURE_OBJ }
func (c *Closure) Inspect() string {
	var out bytes.Buffer
	params := make([]string, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		params = append(params, p.Name.Value)
	}
	out.WriteString("<closure |")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString("|>")
	return out.String()
}

// Composed is `First >>> Second`: calling it applies First, then Second.
type Composed struct {
	First  Object
	Second Object
}

func (c *Composed) Type() ObjectType { return COMPOSED_OBJ }
func (c *Composed) Inspect() string {
	return fmt.Sprintf("<composed %s >>> %s>", c.First.Inspect(), c.Second.Inspect())
}

// IsCallable reports whether obj can appear in call position.
func IsCallable(obj Object) bool {
	switch obj.(type) {
	case *Function, *BoundMethod, *Native, *Closure, *Composed:
		return true
	}
	return false
}

// TypeName is the user-facing name of a value's type, as used by `is` and type_of.
func TypeName(obj Object) string {
	switch o := obj.(type) {
	case *Null, nil:
		return "null"
	case *Integer:
		return "int"
	case *Float:
		return "float"
	case *Boolean:
		return "bool"
	case *String:
		return "string"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *StructInstance:
		return o.Shape.Name
	case *Instance:
		return o.Class.Name
	case *Error:
		return "error"
	}
	return "function"
}
