package compiler

import "j2cgen/resolved"

// StaticInits records the types of a program that run static
// initialization. A type initializes its superclass first, so it needs a
// clinit_ routine when any class above it owns one.
type StaticInits struct {
	owns map[*resolved.Type]bool
}

func NewStaticInits() *StaticInits {
	return &StaticInits{owns: map[*resolved.Type]bool{}}
}

// Note records decl and every type declared inside it.
func (s *StaticInits) Note(decl *resolved.TypeDecl) {
	resolved.Inspect(decl, func(n resolved.Node) bool {
		if d, ok := n.(*resolved.TypeDecl); ok && ownsStaticInit(d) {
			s.owns[d.Type.Erased()] = true
		}
		return n != nil
	})
}

// Has reports whether t or one of its superclasses owns static
// initialization.
func (s *StaticInits) Has(t *resolved.Type) bool {
	seen := map[*resolved.Type]bool{}
	for t = t.Erased(); t != nil && !seen[t]; t = t.Super.Erased() {
		if s.owns[t] {
			return true
		}
		seen[t] = true
	}
	return false
}

func ownsStaticInit(decl *resolved.TypeDecl) bool {
	if len(decl.Constants) > 0 {
		return true
	}
	for _, d := range decl.Body {
		switch d := d.(type) {
		case *resolved.FieldDecl:
			if !d.Static {
				continue
			}
			for _, f := range d.Vars {
				if f.Init != nil && !isConstant(f.Var) {
					return true
				}
			}
		case *resolved.Initializer:
			if d.Static {
				return true
			}
		}
	}
	return false
}
