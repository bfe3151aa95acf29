package parser

import (
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/lexer"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("parser has %d errors for %q:\n%s", len(errs), input, strings.Join(errs, "\n"))
	}
	return program
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c));"},
		{"-a * b", "((-a) * b);"},
		{"!true == false", "((!true) == false);"},
		{"a || b && c", "(a || (b && c));"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2));"},
		{"1 + 2 .. 5", "((1 + 2)..5);"},
		{"a ?? b || c", "(a ?? (b || c));"},
		{"x |> f(1)", "(x |> f(1));"},
		{"a.b(c)[0]", "(a.b(c)[0]);"},
		{"1 << 2 + 3", "(1 << (2 + 3));"},
		{"x as int + 1", "((x as int) + 1);"},
		{"a < b == c > d", "((a < b) == (c > d));"},
		{"a & b | c ^ d", "((a & b) | (c ^ d));"},
		{"a ? b : c", "(a ? b : c);"},
		{"x in xs && y", "((x in xs) && y);"},
		{"f >>> g", "(f >>> g);"},
		{"p?.name", "p?.name;"},
		{"~a & b", "((~a) & b);"},
		{"xs[1:]", "(xs[1:]);"},
		{"(a + b) * c", "((a + b) * c);"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parseOK(t, tt.input)
			if got := program.String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestLetStatements(t *testing.T) {
	program := parseOK(t, "let x: int = 5; var y = 1; const z = 2; w := 3; let u")
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}

	tests := []struct {
		name    string
		mutable bool
		typ     string
		hasInit bool
	}{
		{"x", true, "int", true},
		{"y", true, "", true},
		{"z", false, "", true},
		{"w", true, "", true},
		{"u", true, "", false},
	}
	for i, tt := range tests {
		let, ok := program.Statements[i].(*ast.LetStatement)
		if !ok {
			t.Fatalf("statement %d is %T, not *ast.LetStatement", i, program.Statements[i])
		}
		if let.Name.Value != tt.name {
			t.Errorf("statement %d: name=%q, want %q", i, let.Name.Value, tt.name)
		}
		if let.Mutable != tt.mutable {
			t.Errorf("statement %d: mutable=%v, want %v", i, let.Mutable, tt.mutable)
		}
		if let.Type.String() != tt.typ {
			t.Errorf("statement %d: type=%q, want %q", i, let.Type.String(), tt.typ)
		}
		if (let.Value != nil) != tt.hasInit {
			t.Errorf("statement %d: initializer present=%v, want %v", i, let.Value != nil, tt.hasInit)
		}
	}
}

func TestConstWithoutInitializer(t *testing.T) {
	_, errs := Parse("const k")
	if len(errs) != 1 || !strings.Contains(errs[0], "must be initialized") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestAssignmentForms(t *testing.T) {
	tests := []struct {
		input    string
		check    func(ast.Statement) bool
		expected string
	}{
		{"x = 1", func(s ast.Statement) bool { _, ok := s.(*ast.AssignStatement); return ok }, "x = 1;"},
		{"xs[0] = 1", func(s ast.Statement) bool { _, ok := s.(*ast.IndexAssignStatement); return ok }, "xs[0] = 1;"},
		{"p.x = 1", func(s ast.Statement) bool { _, ok := s.(*ast.SetStatement); return ok }, "p.x = 1;"},
		{"x += 2", func(s ast.Statement) bool { c, ok := s.(*ast.CompoundAssignStatement); return ok && c.Operator == "+" }, "x += 2;"},
		{"x++", func(s ast.Statement) bool { c, ok := s.(*ast.CompoundAssignStatement); return ok && c.Operator == "+" }, "x += 1;"},
		{"a.b--", func(s ast.Statement) bool { c, ok := s.(*ast.CompoundAssignStatement); return ok && c.Operator == "-" }, "a.b -= 1;"},
		{"m[k] <<= 1", func(s ast.Statement) bool { c, ok := s.(*ast.CompoundAssignStatement); return ok && c.Operator == "<<" }, "(m[k]) <<= 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parseOK(t, tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(program.Statements))
			}
			stmt := program.Statements[0]
			if !tt.check(stmt) {
				t.Fatalf("unexpected statement type %T", stmt)
			}
			if stmt.String() != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, stmt.String())
			}
		})
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, errs := Parse("f() = 3")
	if len(errs) == 0 {
		t.Fatalf("expected an error for assignment to a call")
	}
}

func TestControlFlowStatements(t *testing.T) {
	input := `
if x > 1 { print "a" } else if x < 0 { print "b" } else { print "c" }
while i < 3 { i += 1 }
do { i -= 1 } while i > 0
loop { break }
for v in xs { continue }
for (k, v) in m { print k, v }
repeat 3 print "hi"
`
	program := parseOK(t, input)
	if len(program.Statements) != 7 {
		t.Fatalf("expected 7 statements, got %d: %s", len(program.Statements), program.String())
	}

	ifStmt := program.Statements[0].(*ast.IfStatement)
	if _, ok := ifStmt.Alternative.(*ast.IfStatement); !ok {
		t.Errorf("else if should nest an IfStatement, got %T", ifStmt.Alternative)
	}
	if _, ok := program.Statements[2].(*ast.DoWhileStatement); !ok {
		t.Errorf("statement 2 is %T", program.Statements[2])
	}
	forPair := program.Statements[5].(*ast.ForStatement)
	if len(forPair.Variables) != 2 || forPair.Variables[1].Value != "v" {
		t.Errorf("for pair variables wrong: %v", forPair.Variables)
	}
	ps := forPair.Body.Statements[0].(*ast.PrintStatement)
	if len(ps.Values) != 2 {
		t.Errorf("print should carry 2 values, got %d", len(ps.Values))
	}
	repeat := program.Statements[6].(*ast.RepeatStatement)
	if len(repeat.Body.Statements) != 1 {
		t.Errorf("repeat body should hold a single statement")
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parseOK(t, `func add(a: int, b: int = 2, ...rest) -> int { return a + b }`)
	fn, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if fn.Name.Value != "add" || len(fn.Parameters) != 3 {
		t.Fatalf("unexpected function %s", fn.String())
	}
	if fn.Parameters[0].Type.String() != "int" {
		t.Errorf("first parameter type=%q", fn.Parameters[0].Type.String())
	}
	if fn.Parameters[1].Default == nil {
		t.Errorf("second parameter should have a default")
	}
	if !fn.Parameters[2].Variadic {
		t.Errorf("third parameter should be variadic")
	}
	if fn.ReturnType.String() != "int" {
		t.Errorf("return type=%q", fn.ReturnType.String())
	}

	_, errs := Parse("func f(...a, b) { }")
	if len(errs) == 0 {
		t.Errorf("variadic parameter before another parameter should fail")
	}
}

func TestLambdaExpressions(t *testing.T) {
	tests := []struct {
		input    string
		params   int
		hasBlock bool
	}{
		{"|x| x + 1", 1, false},
		{"|a, b| { return a * b }", 2, true},
		{"|| 42", 0, false},
		{"func (n) { return n }", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parseOK(t, tt.input)
			stmt := program.Statements[0].(*ast.ExpressionStatement)
			lambda, ok := stmt.Expression.(*ast.LambdaExpression)
			if !ok {
				t.Fatalf("expression is %T", stmt.Expression)
			}
			if len(lambda.Parameters) != tt.params {
				t.Errorf("params=%d, want %d", len(lambda.Parameters), tt.params)
			}
			if (lambda.Block != nil) != tt.hasBlock {
				t.Errorf("block=%v, want %v", lambda.Block != nil, tt.hasBlock)
			}
		})
	}
}

func TestCollectionLiterals(t *testing.T) {
	program := parseOK(t, `let xs = [1, 2, ...ys,]; let m = {name: "yen", "k": 2}`)
	xs := program.Statements[0].(*ast.LetStatement).Value.(*ast.ListLiteral)
	if len(xs.Elements) != 3 {
		t.Fatalf("list should have 3 elements, got %d", len(xs.Elements))
	}
	if _, ok := xs.Elements[2].(*ast.SpreadExpression); !ok {
		t.Errorf("third element should be a spread, got %T", xs.Elements[2])
	}
	m := program.Statements[1].(*ast.LetStatement).Value.(*ast.MapLiteral)
	if len(m.Keys) != 2 {
		t.Fatalf("map should have 2 keys, got %d", len(m.Keys))
	}
	if key, ok := m.Keys[0].(*ast.StringLiteral); !ok || key.Value != "name" {
		t.Errorf("bare identifier key should become a string, got %s", m.Keys[0].String())
	}
}

func TestInterpolatedString(t *testing.T) {
	program := parseOK(t, `"a ${b + 1} c"`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	interp, ok := stmt.Expression.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expression is %T", stmt.Expression)
	}
	if len(interp.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(interp.Parts))
	}
	if _, ok := interp.Parts[1].(*ast.InfixExpression); !ok {
		t.Errorf("middle part is %T", interp.Parts[1])
	}

	_, errs := Parse(`"a ${b"`)
	if len(errs) == 0 {
		t.Errorf("unterminated interpolation should fail")
	}
}

func TestInputExpression(t *testing.T) {
	program := parseOK(t, `let n = input<int>("n? ")`)
	input, ok := program.Statements[0].(*ast.LetStatement).Value.(*ast.InputExpression)
	if !ok {
		t.Fatalf("value is %T", program.Statements[0].(*ast.LetStatement).Value)
	}
	if input.Target.String() != "int" || input.Prompt == nil {
		t.Errorf("unexpected input expression %s", input.String())
	}
}

func TestMatchPatterns(t *testing.T) {
	input := `match v {
	0 => print "zero";
	-1..=5 => print "range";
	Color.Red | Color.Blue => print "color";
	(a, b) => print a;
	[x, _] => print x;
	Point { x, y: 0 } => print x;
	(7) => print "seven";
	n when n > 10 => print n;
	_ => print "default";
}`
	program := parseOK(t, input)
	match, ok := program.Statements[0].(*ast.MatchStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if len(match.Arms) != 9 {
		t.Fatalf("expected 9 arms, got %d", len(match.Arms))
	}

	checks := []func(ast.Pattern) bool{
		func(p ast.Pattern) bool { _, ok := p.(*ast.LiteralPattern); return ok },
		func(p ast.Pattern) bool { r, ok := p.(*ast.RangePattern); return ok && r.Inclusive },
		func(p ast.Pattern) bool { o, ok := p.(*ast.OrPattern); return ok && len(o.Alternatives) == 2 },
		func(p ast.Pattern) bool { tp, ok := p.(*ast.TuplePattern); return ok && len(tp.Elements) == 2 },
		func(p ast.Pattern) bool { tp, ok := p.(*ast.TuplePattern); return ok && tp.String() == "[x, _]" },
		func(p ast.Pattern) bool { sp, ok := p.(*ast.StructPattern); return ok && len(sp.Fields) == 2 },
		func(p ast.Pattern) bool { _, ok := p.(*ast.LiteralPattern); return ok },
		func(p ast.Pattern) bool { _, ok := p.(*ast.GuardedPattern); return ok },
		func(p ast.Pattern) bool { _, ok := p.(*ast.WildcardPattern); return ok },
	}
	for i, check := range checks {
		if !check(match.Arms[i].Pattern) {
			t.Errorf("arm %d: unexpected pattern %T (%s)", i, match.Arms[i].Pattern, match.Arms[i].Pattern.String())
		}
	}
}

func TestEnumMatchProgramParses(t *testing.T) {
	program := parseOK(t, `enum Color { Red, Green, Blue } match (Color.Green) { Color.Red => print "r"; Color.Green => print "g"; Color.Blue => print "b"; }`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	enum := program.Statements[0].(*ast.EnumStatement)
	if len(enum.Values) != 3 {
		t.Errorf("enum should have 3 values, got %d", len(enum.Values))
	}
}

func TestSwitchStatement(t *testing.T) {
	program := parseOK(t, `switch x { case 1, 2: print "low" case 3: print "three"; print "!" default: print "other" }`)
	sw := program.Statements[0].(*ast.SwitchStatement)
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(sw.Cases))
	}
	if len(sw.Cases[0].Values) != 2 {
		t.Errorf("first case should have 2 values")
	}
	if len(sw.Cases[1].Body.Statements) != 2 {
		t.Errorf("second case should have 2 statements, got %d", len(sw.Cases[1].Body.Statements))
	}
	if sw.Default == nil || len(sw.Default.Statements) != 1 {
		t.Errorf("default block missing")
	}
}

func TestClassDeclaration(t *testing.T) {
	input := `data class Point(x, y) extends Base impl Show, Eq {
	pub func norm() { return 0 }
	priv let secret = 1;
	static let count = 0
	lazy let cache = 1
	get area() { return 1 }
	set area(v) { }
	describe() { return "p" }
}`
	program := parseOK(t, input)
	class, ok := program.Statements[0].(*ast.ClassStatement)
	if !ok {
		t.Fatalf("statement is %T", program.Statements[0])
	}
	if !class.IsData || class.Sealed {
		t.Errorf("flags wrong: data=%v sealed=%v", class.IsData, class.Sealed)
	}
	if class.Parent == nil || class.Parent.Value != "Base" {
		t.Errorf("parent missing")
	}
	if len(class.Traits) != 2 {
		t.Errorf("expected 2 traits, got %d", len(class.Traits))
	}
	if len(class.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(class.Fields))
	}
	if class.Fields[2].Visibility != ast.Private {
		t.Errorf("secret should be private")
	}
	if !class.Fields[3].Static || !class.Fields[4].Lazy {
		t.Errorf("static/lazy flags not recorded")
	}
	if len(class.Methods) != 5 {
		t.Fatalf("expected 5 methods (including init), got %d", len(class.Methods))
	}
	if class.Methods[1].Kind != ast.GetterMember || class.Methods[2].Kind != ast.SetterMember {
		t.Errorf("accessor kinds wrong")
	}
	if class.Methods[4].Function.Name.Value != "init" {
		t.Errorf("primary constructor should be synthesized as init")
	}
}

func TestTraitImplExtend(t *testing.T) {
	input := `
trait Show { func show(); func twice() { return this.show() + this.show() } }
impl Show for Point { func show() { return "p" } }
extend int { func double() { return this * 2 } }
`
	program := parseOK(t, input)
	trait := program.Statements[0].(*ast.TraitStatement)
	if len(trait.Methods) != 2 || trait.Methods[0].Body != nil || trait.Methods[1].Body == nil {
		t.Errorf("trait methods wrong: %s", trait.String())
	}
	impl := program.Statements[1].(*ast.ImplStatement)
	if impl.Trait == nil || impl.Trait.Value != "Show" || impl.Target.Value != "Point" {
		t.Errorf("impl wrong: %s", impl.String())
	}
	ext := program.Statements[2].(*ast.ExtendStatement)
	if ext.Target.Value != "int" || len(ext.Methods) != 1 {
		t.Errorf("extend wrong: %s", ext.String())
	}
}

func TestImportExportAndMisc(t *testing.T) {
	input := `
import "lib/util" as u
import math.extra
export func f() { return 1 }
defer print "bye"
assert x > 0, "positive"
try { throw "boom" } catch e { print e } finally { print "done" }
go work(1)
`
	program := parseOK(t, input)
	if len(program.Statements) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(program.Statements))
	}
	imp := program.Statements[0].(*ast.ImportStatement)
	if imp.Path != "lib/util" || imp.Alias == nil || imp.Alias.Value != "u" {
		t.Errorf("import wrong: %s", imp.String())
	}
	if p := program.Statements[1].(*ast.ImportStatement).Path; p != "math.extra" {
		t.Errorf("dotted import path=%q", p)
	}
	if _, ok := program.Statements[2].(*ast.ExportStatement).Declaration.(*ast.FunctionStatement); !ok {
		t.Errorf("export should wrap a function")
	}
	try := program.Statements[5].(*ast.TryStatement)
	if try.CatchName == nil || try.CatchName.Value != "e" || try.Finally == nil {
		t.Errorf("try wrong: %s", try.String())
	}
}

func TestErrorRecovery(t *testing.T) {
	program, errs := Parse("let = 5; print 1;")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.Contains(errs[0], "expected next token to be IDENT") {
		t.Errorf("unexpected error text %q", errs[0])
	}
	if !strings.HasPrefix(errs[0], "[  1: 5]") {
		t.Errorf("error should carry the position of '=', got %q", errs[0])
	}
	if len(program.Statements) != 1 {
		t.Fatalf("parser should recover and keep the print, got %d statements", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*ast.PrintStatement); !ok {
		t.Errorf("recovered statement is %T", program.Statements[0])
	}
}

func TestLexErrorsAreReported(t *testing.T) {
	_, errs := Parse(`let s = "abc`)
	if len(errs) == 0 {
		t.Fatalf("expected errors for an unterminated string")
	}
	if !strings.Contains(errs[0], "unterminated string") {
		t.Errorf("first error should come from the lexer, got %q", errs[0])
	}
}

func TestGenericTypeAnnotations(t *testing.T) {
	program := parseOK(t, "let m: map<string, list<int>> = {}; let p: Point? = null")
	first := program.Statements[0].(*ast.LetStatement)
	if first.Type.String() != "map<string, list<int>>" {
		t.Errorf("type=%q", first.Type.String())
	}
	second := program.Statements[1].(*ast.LetStatement)
	if !second.Type.Nullable {
		t.Errorf("Point? should be nullable")
	}
}

func TestRenderAST(t *testing.T) {
	program := parseOK(t, "let x = 1 + 2")

	js, err := RenderASTAsJSON(program)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	for _, want := range []string{`"0.type": "Program"`, `"LetStatement"`, `"InfixExpression"`} {
		if !strings.Contains(js, want) {
			t.Errorf("json output missing %s:\n%s", want, js)
		}
	}

	yml, err := RenderASTAsYAML(program)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(yml, "LetStatement") || !strings.Contains(yml, "IntegerLiteral") {
		t.Errorf("yaml output incomplete:\n%s", yml)
	}
}

func TestErrorPositionFromOffset(t *testing.T) {
	src := "let x =\n"
	tokens, _ := lexer.Tokenize(src)
	// drop the lexer's EOF so the parser has to synthesize one
	tokens = tokens[:len(tokens)-1]

	p := New(tokens, src)
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected a parse error")
	}
	if !strings.HasPrefix(errs[0], "[  2: 1]") {
		t.Errorf("expected error at 2:1, got %q", errs[0])
	}

	p = New([]token.Token{{Type: token.RPAREN, Literal: ")", Position: 0}}, ")")
	p.ParseProgram()
	if errs := p.Errors(); len(errs) == 0 || !strings.HasPrefix(errs[0], "[  1: 1]") {
		t.Errorf("expected error at 1:1, got %v", errs)
	}
}
