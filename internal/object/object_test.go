package object

import (
	"math"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/ast"
)

func TestScalarInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{NULL, "null"},
		{TRUE, "true"},
		{FALSE, "false"},
		{&Integer{Value: -42}, "-42"},
		{&Float{Value: 3}, "3.0"},
		{&Float{Value: 2.5}, "2.5"},
		{&Float{Value: 0.1}, "0.1"},
		{&Float{Value: 1e22}, "10000000000000000000000.0"},
		{&Float{Value: 1e-7}, "0.0000001"},
		{&Float{Value: -1.5e-10}, "-0.00000000015"},
		{&Float{Value: math.NaN()}, "nan"},
		{&Float{Value: math.Inf(-1)}, "-inf"},
		{&String{Value: "hi"}, "hi"},
	}

	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("Inspect()=%q, want %q", got, tt.expected)
		}
	}
}

func TestContainerInspect(t *testing.T) {
	inner := &List{Elements: []Object{&Integer{Value: 1}}}
	nested := &List{Elements: []Object{&List{Elements: []Object{inner}}}}
	if got := nested.Inspect(); got != "[[[list]]]" {
		t.Errorf("nested list=%q", got)
	}

	m := NewMap()
	m.Set("b", &String{Value: "x"})
	m.Set("a", &List{Elements: []Object{&Integer{Value: 1}, NULL}})
	if got := m.Inspect(); got != "{b: x, a: [1, null]}" {
		t.Errorf("map=%q", got)
	}

	shape := &StructDef{Name: "P"}
	s := &StructInstance{Shape: shape, Fields: NewMap()}
	s.Fields.Set("x", &Integer{Value: 5})
	s.Fields.Set("inner", &List{Elements: []Object{NewMap()}})
	if got := s.Inspect(); got != "P {x: 5, inner: [{map}]}" {
		t.Errorf("struct=%q", got)
	}
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	for _, k := range []string{"z", "a", "m"} {
		m.Set(k, NULL)
	}
	m.Set("a", TRUE)
	m.Delete("z")
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "m" {
		t.Fatalf("keys=%v", keys)
	}
	if v, _ := m.Get("a"); v != TRUE {
		t.Errorf("a=%v", v)
	}
}

func TestEquals(t *testing.T) {
	point := NewClassDef("Point")
	point.IsData = true
	plain := NewClassDef("Plain")

	newInst := func(cls *ClassDef, x int64) *Instance {
		inst := &Instance{Class: cls, Fields: NewMap()}
		inst.Fields.Set("x", &Integer{Value: x})
		return inst
	}
	shared := newInst(plain, 1)

	tests := []struct {
		name     string
		a, b     Object
		expected bool
	}{
		{"int", &Integer{Value: 1}, &Integer{Value: 1}, true},
		{"int vs float", &Integer{Value: 1}, &Float{Value: 1}, false},
		{"string", &String{Value: "a"}, &String{Value: "a"}, true},
		{"null", NULL, &Null{}, true},
		{"list", &List{Elements: []Object{TRUE}}, &List{Elements: []Object{TRUE}}, true},
		{"list length", &List{}, &List{Elements: []Object{TRUE}}, false},
		{"data class", newInst(point, 1), newInst(point, 1), true},
		{"data class differs", newInst(point, 1), newInst(point, 2), false},
		{"plain class", newInst(plain, 1), newInst(plain, 1), false},
		{"same instance", shared, shared, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equals(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equals=%v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCompareTotalOrder(t *testing.T) {
	ordered := []Object{
		NULL,
		FALSE,
		&Integer{Value: -1},
		&Float{Value: 0.5},
		&Integer{Value: 2},
		&String{Value: "a"},
		&String{Value: "b"},
		&List{Elements: []Object{&Integer{Value: 1}}},
		&List{Elements: []Object{&Integer{Value: 1}, &Integer{Value: 0}}},
		NewMap(),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if c := Compare(ordered[i], ordered[i+1]); c >= 0 {
			t.Errorf("Compare(%s, %s)=%d, want < 0", ordered[i].Inspect(), ordered[i+1].Inspect(), c)
		}
		if c := Compare(ordered[i+1], ordered[i]); c <= 0 {
			t.Errorf("Compare(%s, %s)=%d, want > 0", ordered[i+1].Inspect(), ordered[i].Inspect(), c)
		}
	}
}

func TestCast(t *testing.T) {
	tests := []struct {
		value    Object
		target   string
		expected string
		wantErr  bool
	}{
		{&Float{Value: 2.9}, "int", "2", false},
		{&Float{Value: -2.9}, "int", "-2", false},
		{&Integer{Value: 3}, "float", "3.0", false},
		{&Integer{Value: 3}, "double", "3.0", false},
		{&Integer{Value: 0}, "bool", "false", false},
		{&String{Value: ""}, "bool", "false", false},
		{&String{Value: "x"}, "bool", "true", false},
		{&String{Value: " 12 "}, "int", "12", false},
		{&String{Value: "1.5"}, "float", "1.5", false},
		{&Float{Value: 1.5}, "string", "1.5", false},
		{&String{Value: "12abc"}, "int", "", true},
		{&String{Value: "x"}, "float", "", true},
		{&List{}, "int", "", true},
	}

	for _, tt := range tests {
		got, err := Cast(tt.value, tt.target)
		if tt.wantErr {
			if !IsKind(err, CastError) {
				t.Errorf("Cast(%s, %s) err=%v, want CastError", tt.value.Inspect(), tt.target, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Cast(%s, %s) unexpected error %v", tt.value.Inspect(), tt.target, err)
			continue
		}
		if got.Inspect() != tt.expected {
			t.Errorf("Cast(%s, %s)=%s, want %s", tt.value.Inspect(), tt.target, got.Inspect(), tt.expected)
		}
	}
}

func TestIntFloatRoundTrip(t *testing.T) {
	for _, x := range []float64{0.4, 7.99, -3.5, 1e9 + 0.5} {
		got, err := Cast(&Float{Value: x}, "int")
		if err != nil {
			t.Fatal(err)
		}
		if got.(*Integer).Value != int64(math.Trunc(x)) {
			t.Errorf("int(%v)=%d", x, got.(*Integer).Value)
		}
	}
	for _, n := range []int64{0, -7, 1 << 40} {
		f, _ := Cast(&Integer{Value: n}, "float")
		back, _ := Cast(f, "int")
		if back.(*Integer).Value != n {
			t.Errorf("int(float(%d))=%d", n, back.(*Integer).Value)
		}
	}
}

func TestTruthy(t *testing.T) {
	if ok, err := Truthy(&Integer{Value: 2}); err != nil || !ok {
		t.Errorf("2 should be truthy")
	}
	if ok, err := Truthy(FALSE); err != nil || ok {
		t.Errorf("false should be falsy")
	}
	if _, err := Truthy(&String{Value: "x"}); !IsKind(err, TypeError) {
		t.Errorf("string condition should raise TypeError, got %v", err)
	}
}

func TestConformsTo(t *testing.T) {
	known := func(string) bool { return false }
	if !ConformsTo(&Integer{Value: 1}, &ast.TypeRef{Name: "float"}, known) {
		t.Errorf("int should widen to float")
	}
	if ConformsTo(&String{Value: "1"}, &ast.TypeRef{Name: "int"}, known) {
		t.Errorf("string should not conform to int")
	}
	if !ConformsTo(NULL, &ast.TypeRef{Name: "int", Nullable: true}, known) {
		t.Errorf("nullable should admit null")
	}
	if !ConformsTo(&Integer{Value: 1}, &ast.TypeRef{Name: "T"}, known) {
		t.Errorf("unknown names are not checked")
	}
}

func TestEnvironmentAssignShadowsOuterFrame(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", &Integer{Value: 1}, nil)
	global.DefineConstant("k", &Integer{Value: 2}, nil)

	frame := NewEnclosedEnvironment(global)
	if _, err := frame.Assign("x", &Integer{Value: 99}); err != nil {
		t.Fatal(err)
	}
	if v, _ := frame.Get("x"); v.(*Integer).Value != 99 {
		t.Errorf("frame x=%s", v.Inspect())
	}
	if v, _ := global.Get("x"); v.(*Integer).Value != 1 {
		t.Errorf("global x=%s, want 1", v.Inspect())
	}

	if _, err := frame.Assign("k", NULL); !IsKind(err, TypeError) {
		t.Errorf("assigning a constant should raise TypeError, got %v", err)
	}
	if _, err := global.Assign("missing", NULL); !IsKind(err, NameError) {
		t.Errorf("assigning an undefined name should raise NameError, got %v", err)
	}
}

func TestTakeDefersIsLIFO(t *testing.T) {
	env := NewEnvironment()
	first := &ast.BreakStatement{}
	second := &ast.ContinueStatement{}
	env.RegisterDefer(first)
	env.RegisterDefer(second)
	got := env.TakeDefers()
	if len(got) != 2 || got[0] != second || got[1] != first {
		t.Fatalf("defers=%v", got)
	}
	if env.TakeDefers() != nil {
		t.Errorf("defers should be cleared")
	}
}

func TestClassMethodLookup(t *testing.T) {
	greet := &Function{Name: "greet"}
	describe := &Function{Name: "describe"}
	trait := &TraitDef{Name: "Describable", Defaults: map[string]*Function{"describe": describe}}

	base := NewClassDef("Animal")
	base.Methods["greet"] = greet
	base.Traits = []*TraitDef{trait}
	dog := NewClassDef("Dog")
	dog.Parent = base

	if fn, owner := dog.FindMethod("greet"); fn != greet || owner != base {
		t.Errorf("inherited method not found")
	}
	if fn, _ := dog.FindMethod("describe"); fn != describe {
		t.Errorf("trait default not found")
	}
	if !dog.IsA("Animal") || !dog.IsA("Describable") || dog.IsA("Cat") {
		t.Errorf("IsA hierarchy wrong")
	}
}
