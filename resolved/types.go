// Package resolved holds the fully bound program model handed over by the
// front end. Everything in here is read-only for the code generator.
package resolved

import "strings"

type TypeKind string

const (
	Class     TypeKind = "class"
	Interface TypeKind = "interface"
	Enum      TypeKind = "enum"
	Primitive TypeKind = "primitive"
	Array     TypeKind = "array"
	Null      TypeKind = "null"
	TypeVar   TypeKind = "typevar"
)

// Type is a type binding. Name is the binary qualified name, e.g.
// "java.util.Map$Entry", "p.Outer$1" or "int[]".
type Type struct {
	Name       string      `json:"name"`
	Kind       TypeKind    `json:"kind"`
	Local      bool        `json:"local,omitempty"`
	Anonymous  bool        `json:"anonymous,omitempty"`
	Static     bool        `json:"static,omitempty"`
	Super      *Type       `json:"super,omitempty"`
	Interfaces []*Type     `json:"interfaces,omitempty"`
	Outer      *Type       `json:"outer,omitempty"`
	Elem       *Type       `json:"elem,omitempty"`
	Erasure    *Type       `json:"erasure,omitempty"`
	Fields     []*Variable `json:"fields,omitempty"`
	Methods    []*Method   `json:"methods,omitempty"`
}

func (t *Type) IsPrimitive() bool { return t != nil && t.Kind == Primitive }
func (t *Type) IsArray() bool     { return t != nil && t.Kind == Array }
func (t *Type) IsNull() bool      { return t != nil && t.Kind == Null }
func (t *Type) IsVoid() bool      { return t != nil && t.Kind == Primitive && t.Name == "void" }
func (t *Type) IsInterface() bool { return t != nil && t.Kind == Interface }

// IsReference reports whether values of t are object pointers.
func (t *Type) IsReference() bool {
	return t != nil && (t.Kind == Class || t.Kind == Interface || t.Kind == Enum || t.Kind == Array || t.Kind == TypeVar)
}

func (t *Type) IsString() bool { return t != nil && t.Name == "java.lang.String" }

func (t *Type) IsFloating() bool {
	return t.IsPrimitive() && (t.Name == "float" || t.Name == "double")
}

// Erased returns the erasure of t, or t itself when it has none.
func (t *Type) Erased() *Type {
	for t != nil && t.Erasure != nil && t.Erasure != t {
		t = t.Erasure
	}
	return t
}

// Nested reports whether t is declared inside another type.
func (t *Type) Nested() bool { return t != nil && t.Outer != nil }

// HasOuterThis reports whether instances of t carry a link to an instance
// of the enclosing type.
func (t *Type) HasOuterThis() bool {
	if t == nil || t.Outer == nil || t.Static {
		return false
	}
	return t.Kind == Class
}

// Package returns the dotted package name, empty for the default package.
func (t *Type) Package() string {
	name := t.Erased().Name
	if t.IsArray() {
		return t.Elem.Package()
	}
	if i := strings.IndexByte(name, '$'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// BinaryName returns the name without the package, e.g. "Outer$Inner".
func (t *Type) BinaryName() string {
	name := t.Erased().Name
	if pkg := t.Package(); pkg != "" && !t.IsArray() {
		return name[len(pkg)+1:]
	}
	return name
}

// IsSubtypeOf reports whether t is o or inherits from it.
func (t *Type) IsSubtypeOf(o *Type) bool {
	if t == nil || o == nil {
		return false
	}
	t, o = t.Erased(), o.Erased()
	if t == o {
		return true
	}
	if t.Super != nil && t.Super.IsSubtypeOf(o) {
		return true
	}
	for _, i := range t.Interfaces {
		if i.IsSubtypeOf(o) {
			return true
		}
	}
	return false
}

// Encloses reports whether o is nested (at any depth) inside t.
func (t *Type) Encloses(o *Type) bool {
	for x := o.Outer; x != nil; x = x.Outer {
		if x == t {
			return true
		}
	}
	return false
}

// Constructors returns the declared constructors in declaration order.
func (t *Type) Constructors() []*Method {
	var ctors []*Method
	for _, m := range t.Methods {
		if m.Constructor {
			ctors = append(ctors, m)
		}
	}
	return ctors
}

// LookupMethod finds a method by name and arity in t and its supertypes.
func (t *Type) LookupMethod(name string, arity int) *Method {
	if t == nil {
		return nil
	}
	for _, m := range t.Methods {
		if m.Name == name && len(m.Params) == arity {
			return m
		}
	}
	if m := t.Super.LookupMethod(name, arity); m != nil {
		return m
	}
	for _, i := range t.Interfaces {
		if m := i.LookupMethod(name, arity); m != nil {
			return m
		}
	}
	return nil
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Variable is a variable binding: a field, parameter or local.
type Variable struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   *Type   `json:"type"`
	Field  bool    `json:"field,omitempty"`
	Static bool    `json:"static,omitempty"`
	Final  bool    `json:"final,omitempty"` // final or effectively final
	Owner  *Type   `json:"owner,omitempty"`
	Method *Method `json:"method,omitempty"`
	Const  string  `json:"const,omitempty"`
}

func (v *Variable) String() string { return v.Name }

// Method is a method or constructor binding. Initializer blocks are
// represented by synthetic methods named "<init>" and "<clinit>" so that
// locals declared in them still have a declaring method.
type Method struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Owner        *Type   `json:"owner"`
	Params       []*Type `json:"params,omitempty"`
	Return       *Type   `json:"return,omitempty"`
	Constructor  bool    `json:"constructor,omitempty"`
	Static       bool    `json:"static,omitempty"`
	Private      bool    `json:"private,omitempty"`
	Native       bool    `json:"native,omitempty"`
	Abstract     bool    `json:"abstract,omitempty"`
	Varargs      bool    `json:"varargs,omitempty"`
	Synchronized bool    `json:"synchronized,omitempty"`
	ReturnErased bool    `json:"returnErased,omitempty"`
}

// IsMain reports whether m is a program entry point.
func (m *Method) IsMain() bool {
	if m.Name != "main" || !m.Static || !m.Return.IsVoid() || len(m.Params) != 1 {
		return false
	}
	p := m.Params[0]
	return p.IsArray() && p.Elem.IsString()
}

func (m *Method) String() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.Name + "." + m.Name
}
