package evaluator

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/parser"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

func runWith(t *testing.T, config util.Configuration, src string) (string, error) {
	t.Helper()
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse errors:\n%s", strings.Join(errs, "\n"))
	}
	var out bytes.Buffer
	e := New(config, WithOutput(&out))
	err := e.Run(program)
	return out.String(), err
}

func run(t *testing.T, src string) string {
	t.Helper()
	out, err := runWith(t, util.Configuration{}, src)
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput so far:\n%s", err, out)
	}
	return out
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sort in place", `let a = [3,1,2]; sort(a); print a;`, "[1, 2, 3]\n"},
		{"enum match",
			`enum Color { Red, Green, Blue } match (Color.Green) { Color.Red => print "r"; Color.Green => print "g"; Color.Blue => print "b"; }`,
			"g\n"},
		{"struct index", `struct P { x; y; } let p = P; p["x"] = 5; print p["x"];`, "5\n"},
		{"assignment in callee shadows", `let x = 1; func f(x) { x = 99; return x; } f(x); print x;`, "1\n"},
		{"callee sees caller frame", `func g() { return y; } func h() { let y = 7; return g(); } print h();`, "7\n"},
		{"int truncates float", `print int(3.9), int(-3.9), float(2), int(float(7));`, "3 -3 2.0 7\n"},
		{"index assign round trip", `let xs = [1, 2, 3]; xs[1] = 20; print xs[1], xs;`, "20 [1, 20, 3]\n"},
		{"first matching arm", `match (3) { 1 | 3 => print "odd"; 3 => print "three"; _ => print "other"; }`, "odd\n"},
		{"match binding and guard", `match ([2, 9]) { [a, b] if a > b => print "desc"; [a, b] => print a + b; }`, "11\n"},
		{"numeric promotion", `print 7 / 2, 7.0 / 2, 2 ** 10, 2 ** -1, 7 % 3;`, "3 3.5 1024 0.5 1\n"},
		{"strings", `print "a" + 1, "ab" * 3, "yen" in "yenlang", len("héllo");`, "a1 ababab true 5\n"},
		{"interpolation", `let n = 2; print "n=${n + 1}";`, "n=3\n"},
		{"slices", `let xs = [1, 2, 3, 4]; print xs[1:3], xs[-2:], "hello"[1:3];`, "[2, 3] [3, 4] el\n"},
		{"coalesce and optional chaining", `let p = null; print p?.name ?? "anon";`, "anon\n"},
		{"for with continue", `let total = 0; for i in 0..5 { if i == 3 { continue } total += i } print total;`, "7\n"},
		{"inclusive range", `print 1..=3;`, "[1, 2, 3]\n"},
		{"while and increment", `let i = 0; while i < 3 { i++ } print i;`, "3\n"},
		{"loop with break", `let i = 0; loop { i += 2; if i > 5 { break } } print i;`, "6\n"},
		{"repeat", `repeat 2 print "r"`, "r\nr\n"},
		{"for over map", `let m = {a: 1, b: 2}; for (k, v) in m { print k, v }`, "a 1\nb 2\n"},
		{"switch", `let x = 2; switch x { case 1, 2: print "low" case 3: print "three" default: print "other" }`, "low\n"},
		{"closures capture frame", `func counter() { let n = 10; return |d| n + d; } let add = counter(); print add(5);`, "15\n"},
		{"pipe and compose",
			`func double(x) { return x * 2 } func inc(x) { return x + 1 } func add(a, b) { return a + b }
			print 5 |> double; let f = double >>> inc; print f(5); print 3 |> add(4);`,
			"10\n11\n7\n"},
		{"higher order builtins",
			`func sq(x) { return x * x } func even(x) { return x % 2 == 0 } func add(a, b) { return a + b }
			let xs = [1, 2, 3, 4]; print map(xs, sq), filter(xs, even), reduce(xs, add, 0);`,
			"[1, 4, 9, 16] [2, 4] 10\n"},
		{"builtin as method", `let xs = [1]; xs.push(2, 3); print xs.len(), xs, xs.pop(), xs;`, "3 [1, 2, 3] 3 [1, 2]\n"},
		{"sort with comparator", `func desc(a, b) { return a > b } let xs = [1, 3, 2]; sort(xs, desc); print xs;`, "[3, 2, 1]\n"},
		{"list helpers",
			`let xs = [1, 2]; insert(xs, 0, 0); print xs, remove_at(xs, 1), xs, contains(xs, 2), reverse(xs);`,
			"[0, 1, 2] 1 [0, 2] true [2, 0]\n"},
		{"string helpers", `print join(split("a,b,c", ","), "-"), upper("yen"), trim("  x "), replace("aaa", "a", "b");`, "a-b-c YEN x bbb\n"},
		{"map helpers", `let m = {z: 1, y: 2}; print keys(m), values(m), len(m), type_of(m);`, "[z, y] [1, 2] 2 map\n"},
		{"min max abs range", `print min(3, 1, 2), max([4, 9, 2]), abs(-5), range(3), range(1, 7, 2);`, "1 9 5 [0, 1, 2] [1, 3, 5]\n"},
		{"recursion", `func fact(n) { if n <= 1 { return 1 } return n * fact(n - 1) } print fact(10);`, "3628800\n"},
		{"default and variadic parameters",
			`func f(a, b = 10, ...rest) { return [a, b, rest] } print f(1), f(1, 2, 3, 4);`,
			"[1, 10, []] [1, 2, [3, 4]]\n"},
		{"try catch finally",
			`try { throw "boom" } catch e { print "caught", e } finally { print "done" }
			try { let z = 1 / 0 } catch err { print err.kind }`,
			"caught boom\ndone\nDivisionByZero\n"},
		{"defer runs at function exit", `func f() { defer print "deferred"; print "body"; return 1 } print f();`, "body\ndeferred\n1\n"},
		{"casts and is", `print "42" as int + 1, 3 is int, 3 is float, 2.5 is number;`, "43 true false true\n"},
		{"natives", `print math.sqrt(16), str.upper("a"), math.floor(2.5);`, "4.0 A 2\n"},
		{"strings inside containers", `print ["a", "b"], {k: "v"}, [["x"]];`, "[a, b] {k: v} [[x]]\n"},
		{"inclusive range at max int", `print len(9223372036854775806..=9223372036854775807), 3..=3;`, "2 [3]\n"},
		{"range builtin near max int", `print range(9223372036854775805, 9223372036854775807, 5);`, "[9223372036854775805]\n"},
		{"power by squaring", `print 3 ** 5, 1 ** 10000000000000, (-1) ** 10000000000001, 2 ** 62;`, "243 1 -1 4611686018427387904\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"inheritance and super", `
class Animal {
	let name = "";
	func init(name) { this.name = name }
	func speak() { return this.name + " makes a sound" }
}
class Dog extends Animal {
	func speak() { return this.name + " barks" }
	func parent() { return super.speak() }
}
let d = Dog("rex");
print d.speak();
print d.parent();
print d is Animal, d is Dog;
`, "rex barks\nrex makes a sound\ntrue true\n"},
		{"data class equality", `
data class Point(x, y);
let a = Point(1, 2);
let b = Point(1, 2);
print a == b, a;
`, "true Point {x: 1, y: 2}\n"},
		{"plain class identity", `
class Box(v);
print Box(1) == Box(1);
`, "false\n"},
		{"traits with defaults", `
trait Greeter { func name(); func greet() { return "hi " + this.name() } }
class Bob impl Greeter { func name() { return "bob" } }
let b = Bob();
print b.greet(), b is Greeter;
`, "hi bob true\n"},
		{"statics and getters", `
class Counter {
	static let count = 0
	static func make() { Counter.count += 1; return Counter() }
	let v = 1
	get double() { return this.v * 2 }
}
Counter.make();
Counter.make();
print Counter.count, Counter().double;
`, "2 2\n"},
		{"lazy field", `
class Lazy {
	lazy let value = compute()
}
func compute() { print "computing"; return 5 }
let l = Lazy();
print "created";
print l.value;
print l.value;
`, "created\ncomputing\n5\n5\n"},
		{"extension on builtin type", `
extend int { func double() { return this * 2 } }
let n = 21;
print n.double();
`, "42\n"},
		{"impl for struct", `
struct V { x; }
impl V { func twice() { return this.x * 2 } }
let v = V(4);
print v.twice();
`, "8\n"},
		{"instance indexing", `
class P(x);
let p = P(3);
p["x"] = 4;
print p["x"], p.x;
`, "4 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  object.ErrorKind
	}{
		{"int division by zero", `print 1 / 0;`, object.DivisionByZero},
		{"float division by int zero", `print 1.0 / 0;`, object.DivisionByZero},
		{"int division by float zero", `print 1 / 0.0;`, object.DivisionByZero},
		{"modulo by zero", `print 5 % 0;`, object.DivisionByZero},
		{"undefined variable", `print nope;`, object.NameError},
		{"list index out of range", `let xs = [1]; print xs[3];`, object.IndexError},
		{"negative list index", `let xs = [1]; print xs[-1];`, object.IndexError},
		{"missing map key", `let m = {a: 1}; print m["b"];`, object.IndexError},
		{"non string map key", `let m = {a: 1}; print m[1];`, object.TypeError},
		{"arity", `func two(a, b) { } two(1);`, object.ArityError},
		{"closure arity", `let f = |a| a; f(1, 2);`, object.ArityError},
		{"no match", `match (5) { 1 => print "one"; }`, object.MatchExhaustionError},
		{"bad operands", `print [1] - 1;`, object.TypeError},
		{"non boolean condition", `if "yes" { print 1 }`, object.TypeError},
		{"strict logical operators", `print 1 && true;`, object.TypeError},
		{"assert", `assert 1 > 2, "math is broken"`, object.AssertionError},
		{"bad cast", `print "abc" as int;`, object.CastError},
		{"const reassignment", `const k = 1; k = 2;`, object.TypeError},
		{"typed binding", `let n: int = 1; n = "x";`, object.TypeError},
		{"private access", `class A { priv let secret = 1; } print A().secret;`, object.TypeError},
		{"missing trait method", `trait T { func m(); } class C impl T { }`, object.TypeError},
		{"sealed parent", `sealed class S { } class D extends S { }`, object.TypeError},
		{"throw", `throw "bad";`, object.ThrownError},
		{"string immutable", `let s = "abc"; s[0] = "x";`, object.TypeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runWith(t, util.Configuration{}, tt.input)
			if !object.IsKind(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := runWith(t, util.Configuration{}, "let a = 1;\nprint a / 0;")
	rtErr := object.AsError(err)
	if rtErr == nil || rtErr.Line != 2 {
		t.Fatalf("expected an error on line 2, got %v", err)
	}
}

func TestPrivateAccessThroughThis(t *testing.T) {
	out, err := runWith(t, util.Configuration{}, `
class Account {
	priv let balance = 0;
	func deposit(n) { this.balance += n; return this.balance }
}
let a = Account();
print a.deposit(5);
print a.balance;
`)
	if out != "5\n" {
		t.Errorf("unexpected output %q", out)
	}
	if !object.IsKind(err, object.TypeError) {
		t.Fatalf("expected TypeError for private access, got %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	_, err := runWith(t, util.Configuration{MaxCallDepth: 50}, `func r(n) { return r(n + 1) } r(0);`)
	if !object.IsKind(err, object.RecursionError) {
		t.Fatalf("expected RecursionError, got %v", err)
	}

	out, err := runWith(t, util.Configuration{MaxCallDepth: 50}, `func down(n) { if n == 0 { return 0 } return down(n - 1) } print down(40);`)
	if err != nil || out != "0\n" {
		t.Fatalf("recursion below the limit failed: %q %v", out, err)
	}
}

func TestTopLevelDefersRunOnError(t *testing.T) {
	out, err := runWith(t, util.Configuration{}, `defer print "cleanup"; print 1 / 0;`)
	if !object.IsKind(err, object.DivisionByZero) {
		t.Fatalf("expected DivisionByZero, got %v", err)
	}
	if out != "cleanup\n" {
		t.Fatalf("deferred statement did not run: %q", out)
	}
}

func TestEvalKeepsState(t *testing.T) {
	var out bytes.Buffer
	e := New(util.Configuration{}, WithOutput(&out))
	for _, line := range []string{"let x = 40", "func add2(n) { return n + 2 }"} {
		program, errs := parser.Parse(line)
		if len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		if _, err := e.Eval(program); err != nil {
			t.Fatalf("eval %q: %v", line, err)
		}
	}
	program, _ := parser.Parse("add2(x)")
	val, err := e.Eval(program)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if val.Inspect() != "42" {
		t.Fatalf("expected 42, got %s", val.Inspect())
	}
}

func TestInput(t *testing.T) {
	program, errs := parser.Parse(`let n = input<int>("n? "); print n + 1;`)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	var out bytes.Buffer
	e := New(util.Configuration{}, WithOutput(&out), WithInput(strings.NewReader("41\n")))
	if err := e.Run(program); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "n? 42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "lib/greet.yen", `
func helper() { return "!" }
export func greet(n) { return "hi " + n + helper() }
export let version = 3
export enum Mood { Calm, Loud }
`)
	config := util.Configuration{RootPath: dir}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"merged", `import "lib/greet"; print greet("yen"), version, Mood.Loud;`, "hi yen! 3 1\n"},
		{"dotted name", `import lib.greet; print greet("dot");`, "hi dot!\n"},
		{"alias", `import "lib/greet" as g; print g.greet("a"), g.version, g.Mood.Calm;`, "hi a! 3 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runWith(t, config, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out)
			}
		})
	}

	t.Run("unexported names stay private", func(t *testing.T) {
		_, err := runWith(t, config, `import "lib/greet"; helper();`)
		if !object.IsKind(err, object.NameError) {
			t.Fatalf("expected NameError, got %v", err)
		}
	})

	t.Run("missing module", func(t *testing.T) {
		_, err := runWith(t, config, `import "nowhere";`)
		if !object.IsKind(err, object.ImportError) {
			t.Fatalf("expected ImportError, got %v", err)
		}
	})
}

func TestImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.yen", `import "b"; export let a = 1`)
	writeModule(t, dir, "b.yen", `import "a"; export let b = 2`)

	_, err := runWith(t, util.Configuration{RootPath: dir}, `import "a";`)
	if !object.IsKind(err, object.ImportError) || !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("expected import cycle error, got %v", err)
	}
}

// Printing a scalar and evaluating the printed text as a literal must print
// the same text again. Strings are re-quoted since they print bare.
func TestScalarRoundTrip(t *testing.T) {
	literals := []string{
		"0", "42", "-7", "9223372036854775807",
		"2.5", "-0.5", "1.0", "1.0 / 3.0",
		"0.0000001", "0.000000000000000000001", "1000000000000000000000.0", "123456789012345678901234567890.0",
		"true", "false", "null",
		`"yen"`, `""`, `"a b\tc"`,
	}
	for _, lit := range literals {
		t.Run(lit, func(t *testing.T) {
			first := strings.TrimSuffix(run(t, "print "+lit+";"), "\n")
			again := first
			if strings.HasPrefix(lit, `"`) {
				again = strconv.Quote(first)
			}
			second := strings.TrimSuffix(run(t, "print "+again+";"), "\n")
			if first != second {
				t.Errorf("%s printed %q, reading it back printed %q", lit, first, second)
			}
		})
	}
}

func TestUserFunctionsShadowHelpers(t *testing.T) {
	src := `
func max(a, b) { return "user max" }
func values(m) { return "user values" }
let keys = |m| "lambda keys";
print max(1, 2), values({a: 1}), keys({a: 1}), min(3, 1);
`
	if got, want := run(t, src), "user max user values lambda keys 1\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// the core builtins keep precedence
	if got := run(t, `func len(x) { return -1 } print len([1, 2]);`); got != "2\n" {
		t.Errorf("len should stay the builtin, got %q", got)
	}
}
