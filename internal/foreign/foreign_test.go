package foreign

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

type testContext struct {
	out    bytes.Buffer
	config util.Configuration
	nextID int64
}

func (c *testContext) Call(fn object.Object, args ...object.Object) (object.Object, error) {
	return nil, object.NewError(object.TypeError, "calls are not supported in tests")
}
func (c *testContext) Output() io.Writer                 { return &c.out }
func (c *testContext) Configuration() util.Configuration { return c.config }
func (c *testContext) NextHandleID() int64 {
	c.nextID++
	return c.nextID
}

func str(s string) object.Object  { return &object.String{Value: s} }
func num(i int64) object.Object   { return &object.Integer{Value: i} }
func flt(f float64) object.Object { return &object.Float{Value: f} }

func call(t *testing.T, ctx object.EvaluatorContext, name string, args ...object.Object) object.Object {
	t.Helper()
	fn, ok := Natives()[name]
	if !ok {
		t.Fatalf("native %s is not registered", name)
	}
	if fn.Arity >= 0 && len(args) != fn.Arity {
		t.Fatalf("%s takes %d arguments, test passes %d", name, fn.Arity, len(args))
	}
	result, err := fn.Fn(ctx, args...)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	return result
}

func TestNativesInspect(t *testing.T) {
	ctx := &testContext{}
	tests := []struct {
		name     string
		native   string
		args     []object.Object
		expected string
	}{
		{"sqrt", "math.sqrt", []object.Object{num(16)}, "4.0"},
		{"floor", "math.floor", []object.Object{flt(2.7)}, "2"},
		{"ceil", "math.ceil", []object.Object{flt(2.1)}, "3"},
		{"floor int", "math.floor", []object.Object{num(5)}, "5"},
		{"abs int", "math.abs", []object.Object{num(-3)}, "3"},
		{"abs float", "math.abs", []object.Object{flt(-1.5)}, "1.5"},
		{"pow", "math.pow", []object.Object{num(2), num(10)}, "1024.0"},
		{"min", "math.min", []object.Object{num(3), flt(1.5), num(2)}, "1.5"},
		{"max", "math.max", []object.Object{num(3), flt(1.5), num(7)}, "7"},
		{"upper", "str.upper", []object.Object{str("yen")}, "YEN"},
		{"trim", "str.trim", []object.Object{str("  x ")}, "x"},
		{"replace", "str.replace", []object.Object{str("a-b-c"), str("-"), str("+")}, "a+b+c"},
		{"starts_with", "str.starts_with", []object.Object{str("yenlang"), str("yen")}, "true"},
		{"ends_with", "str.ends_with", []object.Object{str("yenlang"), str("yen")}, "false"},
		{"index_of runes", "str.index_of", []object.Object{str("héllo"), str("l")}, "2"},
		{"index_of missing", "str.index_of", []object.Object{str("abc"), str("z")}, "-1"},
		{"repeat", "str.repeat", []object.Object{str("ab"), num(3)}, "ababab"},
		{"format", "str.format", []object.Object{str("{} + {} = {}"), num(1), num(2), num(3)}, "1 + 2 = 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, ctx, tt.native, tt.args...).Inspect()
			if got != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.native, tt.expected, got)
			}
		})
	}
}

func TestNativeArgumentErrors(t *testing.T) {
	ctx := &testContext{}
	tests := []struct {
		native string
		args   []object.Object
		kind   object.ErrorKind
	}{
		{"math.sqrt", []object.Object{str("x")}, object.TypeError},
		{"str.upper", []object.Object{num(1)}, object.TypeError},
		{"str.format", []object.Object{str("{} {}"), num(1)}, object.ArityError},
		{"math.random", []object.Object{num(5), num(5)}, object.TypeError},
		{"fs.read", []object.Object{str(filepath.Join(t.TempDir(), "missing.txt"))}, object.NativeError},
		{"json.parse", []object.Object{str("{not json")}, object.NativeError},
		{"db.open", []object.Object{str("oracle"), str("x")}, object.NativeError},
		{"db.query", []object.Object{num(999), str("select 1")}, object.NativeError},
	}
	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			_, err := Natives()[tt.native].Fn(ctx, tt.args...)
			if !object.IsKind(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestRandomRange(t *testing.T) {
	ctx := &testContext{}
	for i := 0; i < 100; i++ {
		n := call(t, ctx, "math.random", num(3), num(6)).(*object.Integer).Value
		if n < 3 || n >= 6 {
			t.Fatalf("random(3, 6) out of range: %d", n)
		}
		f := call(t, ctx, "math.random").(*object.Float).Value
		if f < 0 || f >= 1 {
			t.Fatalf("random() out of range: %v", f)
		}
	}
}

func TestSysArgs(t *testing.T) {
	ctx := &testContext{config: util.Configuration{Args: []string{"one", "two"}}}
	if got := call(t, ctx, "sys.args").Inspect(); got != "[one, two]" {
		t.Fatalf("unexpected args %s", got)
	}
}

func TestJSON(t *testing.T) {
	ctx := &testContext{}
	parsed := call(t, ctx, "json.parse", str(`{"z": 1, "a": [true, null, 2.5], "s": "x"}`))
	if got, want := parsed.Inspect(), "{z: 1, a: [true, null, 2.5], s: x}"; got != want {
		t.Fatalf("parse: expected %s, got %s", want, got)
	}

	encoded := call(t, ctx, "json.stringify", parsed).Inspect()
	if want := `{"z":1,"a":[true,null,2.5],"s":"x"}`; encoded != want {
		t.Fatalf("stringify: expected %s, got %s", want, encoded)
	}

	pretty := call(t, ctx, "json.stringify", &object.List{Elements: []object.Object{num(1)}}, str("  ")).Inspect()
	if want := "[\n  1\n]"; pretty != want {
		t.Fatalf("indented stringify: expected %q, got %q", want, pretty)
	}
}

func TestYAML(t *testing.T) {
	ctx := &testContext{}
	parsed := call(t, ctx, "yaml.parse", str("name: yen\nversion: 2\ntags:\n  - fast\n  - small\n"))
	if got, want := parsed.Inspect(), "{name: yen, version: 2, tags: [fast, small]}"; got != want {
		t.Fatalf("parse: expected %s, got %s", want, got)
	}

	encoded := call(t, ctx, "yaml.stringify", parsed).Inspect()
	if want := "name: yen\nversion: 2\ntags:\n    - fast\n    - small\n"; encoded != want {
		t.Fatalf("stringify: expected %q, got %q", want, encoded)
	}
}

func TestFileSystem(t *testing.T) {
	ctx := &testContext{}
	path := str(filepath.Join(t.TempDir(), "notes.txt"))

	if got := call(t, ctx, "fs.exists", path).Inspect(); got != "false" {
		t.Fatalf("file should not exist yet")
	}
	call(t, ctx, "fs.write", path, str("one\n"))
	call(t, ctx, "fs.append", path, num(2))
	if got := call(t, ctx, "fs.read", path).Inspect(); got != "one\n2" {
		t.Fatalf("unexpected content %q", got)
	}
	call(t, ctx, "fs.remove", path)
	if got := call(t, ctx, "fs.exists", path).Inspect(); got != "false" {
		t.Fatalf("file should be removed")
	}
}

func TestSQLite(t *testing.T) {
	ctx := &testContext{}
	handle := call(t, ctx, "db.open", str("sqlite3"), str(":memory:"))

	call(t, ctx, "db.exec", handle, str("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL)"))
	res := call(t, ctx, "db.exec", handle, str("INSERT INTO users (name, score) VALUES (?, ?)"), str("ada"), flt(9.5))
	if got := res.Inspect(); got != "{rows_affected: 1, last_insert_id: 1}" {
		t.Fatalf("unexpected exec result %s", got)
	}

	call(t, ctx, "db.begin", handle)
	call(t, ctx, "db.exec", handle, str("INSERT INTO users (name, score) VALUES (?, ?)"), str("bob"), num(3))
	call(t, ctx, "db.rollback", handle)

	rows := call(t, ctx, "db.query", handle, str("SELECT id, name, score FROM users WHERE score > ?"), num(1))
	if got, want := rows.Inspect(), "[{id: 1, name: ada, score: 9.5}]"; got != want {
		t.Fatalf("query: expected %s, got %s", want, got)
	}

	call(t, ctx, "db.close", handle)
	if _, err := Natives()["db.exec"].Fn(ctx, handle, str("SELECT 1")); err == nil || !strings.Contains(err.Error(), "invalid connection handle") {
		t.Fatalf("expected closed handle error, got %v", err)
	}
}
