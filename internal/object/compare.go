package object

import (
	"strings"
)

// Equals compares by tag first, then by value. Lists and maps compare
// structurally, data class instances by their fields, and every other
// reference value by identity.
func Equals(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	switch left := a.(type) {
	case *Null:
		return true
	case *Integer:
		return left.Value == b.(*Integer).Value
	case *Float:
		return left.Value == b.(*Float).Value
	case *Boolean:
		return left.Value == b.(*Boolean).Value
	case *String:
		return left.Value == b.(*String).Value
	case *List:
		right := b.(*List)
		if len(left.Elements) != len(right.Elements) {
			return false
		}
		for i := range left.Elements {
			if !Equals(left.Elements[i], right.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		return mapsEqual(left, b.(*Map))
	case *Instance:
		right := b.(*Instance)
		if left == right {
			return true
		}
		return left.Class.IsData && left.Class == right.Class && mapsEqual(left.Fields, right.Fields)
	case *Error:
		right := b.(*Error)
		return left == right || (left.Kind == right.Kind && left.Message == right.Message)
	}
	return a == b
}

func mapsEqual(left, right *Map) bool {
	if left == right {
		return true
	}
	if left.Len() != right.Len() {
		return false
	}
	for _, k := range left.keys {
		rv, ok := right.pairs[k]
		if !ok || !Equals(left.pairs[k], rv) {
			return false
		}
	}
	return true
}

func rank(obj Object) int {
	switch obj.(type) {
	case *Null, nil:
		return 0
	case *Boolean:
		return 1
	case *Integer, *Float:
		return 2
	case *String:
		return 3
	case *List:
		return 4
	case *Map:
		return 5
	case *StructInstance:
		return 6
	case *Instance:
		return 7
	}
	return 8
}

// Compare is the total order used by sort: values of different kinds order
// by kind (null, bool, number, string, list, map, struct, instance, then
// everything else), numbers numerically, strings bytewise, lists
// element-wise and the rest by their rendering.
func Compare(a, b Object) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch left := a.(type) {
	case *Null, nil:
		return 0
	case *Boolean:
		lb, rb := left.Value, b.(*Boolean).Value
		switch {
		case lb == rb:
			return 0
		case !lb:
			return -1
		}
		return 1
	case *Integer, *Float:
		if li, ok := left.(*Integer); ok {
			if ri, ok := b.(*Integer); ok {
				return compareOrdered(li.Value, ri.Value)
			}
		}
		lf, _ := ToFloat(a)
		rf, _ := ToFloat(b)
		return compareOrdered(lf, rf)
	case *String:
		return strings.Compare(left.Value, b.(*String).Value)
	case *List:
		right := b.(*List)
		for i := 0; i < len(left.Elements) && i < len(right.Elements); i++ {
			if c := Compare(left.Elements[i], right.Elements[i]); c != 0 {
				return c
			}
		}
		return len(left.Elements) - len(right.Elements)
	}
	return strings.Compare(a.Inspect(), b.Inspect())
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Truthy is the condition test used by if, while, ternary and guards.
func Truthy(obj Object) (bool, error) {
	switch o := obj.(type) {
	case *Boolean:
		return o.Value, nil
	case *Integer:
		return o.Value != 0, nil
	}
	return false, NewError(TypeError, "condition must be bool or int, got %s", TypeName(obj))
}

func IsNumeric(obj Object) bool {
	switch obj.(type) {
	case *Integer, *Float:
		return true
	}
	return false
}

func ToFloat(obj Object) (float64, bool) {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value), true
	case *Float:
		return o.Value, true
	}
	return 0, false
}
