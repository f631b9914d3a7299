package resolved

import "strings"

var primitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "void"}

// Universe interns types by name so that every reference to the same name
// yields the same *Type.
type Universe struct {
	types map[string]*Type
	order []*Type
}

func NewUniverse() *Universe {
	u := &Universe{types: make(map[string]*Type)}
	for _, name := range primitiveNames {
		u.define(&Type{Name: name, Kind: Primitive})
	}
	u.define(&Type{Name: "null", Kind: Null})
	return u
}

func (u *Universe) define(t *Type) *Type {
	u.types[t.Name] = t
	u.order = append(u.order, t)
	return t
}

// Type returns the type with the given name, creating a class placeholder
// when it is not known yet. Names ending in "[]" yield array types.
func (u *Universe) Type(name string) *Type {
	if t, ok := u.types[name]; ok {
		return t
	}
	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		return u.define(&Type{Name: name, Kind: Array, Elem: u.Type(elem)})
	}
	return u.define(&Type{Name: name, Kind: Class})
}

// Lookup returns the named type without creating it.
func (u *Universe) Lookup(name string) (*Type, bool) {
	t, ok := u.types[name]
	return t, ok
}

// ArrayOf returns the array type whose elements are t.
func (u *Universe) ArrayOf(t *Type) *Type {
	return u.Type(t.Name + "[]")
}

// Types returns every interned type in creation order.
func (u *Universe) Types() []*Type {
	return u.order
}
