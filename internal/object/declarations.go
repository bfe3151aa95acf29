package object

import (
	"github.com/yen-lang/Yen-sub000/internal/ast"
)

type StructDef struct {
	Name   string
	Fields []*ast.FieldDecl
}

func (s *StructDef) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name.Value == name {
			return true
		}
	}
	return false
}

type ClassDef struct {
	Name   string
	Parent *ClassDef
	Traits []*TraitDef
	IsData bool
	Sealed bool

	Fields        []*ast.ClassField // instance fields, in declaration order
	Methods       map[string]*Function
	Getters       map[string]*Function
	Setters       map[string]*Function
	StaticMethods map[string]*Function
	Statics       *Map
	Constants     map[string]bool // const fields, instance or static
	Private       map[string]bool
}

func NewClassDef(name string) *ClassDef {
	return &ClassDef{
		Name:          name,
		Methods:       map[string]*Function{},
		Getters:       map[string]*Function{},
		Setters:       map[string]*Function{},
		StaticMethods: map[string]*Function{},
		Statics:       NewMap(),
		Constants:     map[string]bool{},
		Private:       map[string]bool{},
	}
}

// FindMethod resolves a method through the class chain, then through the
// default methods of implemented traits. It returns the class that supplied it.
func (c *ClassDef) FindMethod(name string) (*Function, *ClassDef) {
	for cls := c; cls != nil; cls = cls.Parent {
		if fn, ok := cls.Methods[name]; ok {
			return fn, cls
		}
	}
	for cls := c; cls != nil; cls = cls.Parent {
		for _, trait := range cls.Traits {
			if fn, ok := trait.Defaults[name]; ok {
				return fn, cls
			}
		}
	}
	return nil, nil
}

func (c *ClassDef) FindGetter(name string) (*Function, *ClassDef) {
	for cls := c; cls != nil; cls = cls.Parent {
		if fn, ok := cls.Getters[name]; ok {
			return fn, cls
		}
	}
	return nil, nil
}

func (c *ClassDef) FindSetter(name string) (*Function, *ClassDef) {
	for cls := c; cls != nil; cls = cls.Parent {
		if fn, ok := cls.Setters[name]; ok {
			return fn, cls
		}
	}
	return nil, nil
}

// FindStatic resolves a static field through the class chain.
func (c *ClassDef) FindStatic(name string) (*ClassDef, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Statics.Has(name) {
			return cls, true
		}
	}
	return nil, false
}

func (c *ClassDef) FindStaticMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if fn, ok := cls.StaticMethods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

func (c *ClassDef) IsPrivate(name string) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Private[name] {
			return true
		}
	}
	return false
}

func (c *ClassDef) IsConstant(name string) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Constants[name] {
			return true
		}
	}
	return false
}

// IsA reports whether the class is name, descends from it or implements a
// trait called name.
func (c *ClassDef) IsA(name string) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls.Name == name {
			return true
		}
		for _, t := range cls.Traits {
			if t.Name == name {
				return true
			}
		}
	}
	return false
}

type TraitDef struct {
	Name     string
	Required []string
	Defaults map[string]*Function
}

type EnumDef struct {
	Name   string
	Values []string
	Index  map[string]int64
}

func NewEnumDef(name string, values []string) *EnumDef {
	def := &EnumDef{Name: name, Values: values, Index: map[string]int64{}}
	for i, v := range values {
		def.Index[v] = int64(i)
	}
	return def
}

// Declarations holds the named declaration tables. Declarations are
// registered when their statement executes.
type Declarations struct {
	Functions  map[string]*Function
	Structs    map[string]*StructDef
	Classes    map[string]*ClassDef
	Enums      map[string]*EnumDef
	Traits     map[string]*TraitDef
	Extensions map[string]map[string]*Function // builtin type name -> methods
}

func NewDeclarations() *Declarations {
	return &Declarations{
		Functions:  map[string]*Function{},
		Structs:    map[string]*StructDef{},
		Classes:    map[string]*ClassDef{},
		Enums:      map[string]*EnumDef{},
		Traits:     map[string]*TraitDef{},
		Extensions: map[string]map[string]*Function{},
	}
}

// Extension finds a method added with `extend` to the type of obj.
func (d *Declarations) Extension(obj Object, name string) (*Function, bool) {
	methods, ok := d.Extensions[TypeName(obj)]
	if !ok {
		return nil, false
	}
	fn, ok := methods[name]
	return fn, ok
}
