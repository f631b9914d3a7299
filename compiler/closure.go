package compiler

import (
	"j2cgen/resolved"
)

// ClosureSet is the ordered set of enclosing-method variables one local or
// anonymous type reads. Order is first use; the set is sealed once the
// type and everything nested in it has been analysed.
type ClosureSet struct {
	vars   []*resolved.Variable
	index  map[*resolved.Variable]int
	sealed bool
}

func newClosureSet() *ClosureSet {
	return &ClosureSet{index: make(map[*resolved.Variable]int)}
}

func (s *ClosureSet) add(v *resolved.Variable) {
	if s.sealed {
		invariantf("", "capture of %s after the closure set was sealed", v.Name)
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = len(s.vars)
	s.vars = append(s.vars, v)
}

// Vars returns the captured variables in first-use order.
func (s *ClosureSet) Vars() []*resolved.Variable {
	if s == nil {
		return nil
	}
	return s.vars
}

func (s *ClosureSet) Contains(v *resolved.Variable) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

func (s *ClosureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.vars)
}

// hasClosures reports whether t can capture: local and anonymous types and
// everything nested inside them.
func hasClosures(t *resolved.Type) bool {
	for ; t != nil; t = t.Outer {
		if t.Local || t.Anonymous {
			return true
		}
	}
	return false
}

// qualifies reports whether a read of v from code of type t is a capture:
// v is a final local or parameter of a method that does not belong to t.
func qualifies(t *resolved.Type, v *resolved.Variable) bool {
	if v == nil || v.Field || v.Method == nil || !v.Final {
		return false
	}
	return v.Method.Owner != t
}

// ClosureCollector computes the closure sets of every type declared in a
// top-level type. Nested types are analysed and sealed before their
// captures are merged into the enclosing type.
type ClosureCollector struct {
	sets map[*resolved.Type]*ClosureSet
}

func NewClosureCollector() *ClosureCollector {
	return &ClosureCollector{sets: make(map[*resolved.Type]*ClosureSet)}
}

// Collect analyses decl and everything nested in it.
func (c *ClosureCollector) Collect(decl *resolved.TypeDecl) {
	c.collect(decl, nil)
}

// Closures returns the closure set of t, nil for types that cannot capture.
func (c *ClosureCollector) Closures(t *resolved.Type) *ClosureSet {
	return c.sets[t]
}

// Captures reports whether code of t refers to v through a closure field.
func (c *ClosureCollector) Captures(t *resolved.Type, v *resolved.Variable) bool {
	return c.sets[t].Contains(v)
}

// collect analyses decl. initializing is the variable whose declarator
// contains decl, if any; reads of it are not captures.
func (c *ClosureCollector) collect(decl *resolved.TypeDecl, initializing *resolved.Variable) *ClosureSet {
	t := decl.Type
	if s, ok := c.sets[t]; ok {
		return s
	}
	var set *ClosureSet
	if hasClosures(t) {
		set = newClosureSet()
		c.sets[t] = set
	}
	v := &captureVisitor{c: c, typ: t, set: set, root: decl, initializing: initializing}
	resolved.Walk(v, decl)
	// A subclass of a capturing local type has to hand the same values to
	// the superclass constructor.
	if super := c.sets[t.Super]; super != nil && t.Super != t {
		v.inherit(super)
	}
	if set != nil {
		set.sealed = true
	}
	DebugLogPrintf("closures of %s: %v", t.Name, set.Vars())
	return set
}

type captureVisitor struct {
	c    *ClosureCollector
	typ  *resolved.Type
	set  *ClosureSet
	root *resolved.TypeDecl
	// variable whose initializer is being walked
	initializing *resolved.Variable
}

func (v *captureVisitor) inherit(from *ClosureSet) {
	if v.set == nil {
		return
	}
	for _, x := range from.Vars() {
		if qualifies(v.typ, x) {
			v.set.add(x)
		}
	}
}

func (v *captureVisitor) Visit(node resolved.Node) resolved.Visitor {
	switch n := node.(type) {
	case *resolved.TypeDecl:
		if n != v.root {
			v.inherit(v.c.collect(n, v.initializing))
			return nil
		}
	case *resolved.VarFrag:
		return &captureVisitor{c: v.c, typ: v.typ, set: v.set, root: v.root, initializing: n.Var}
	case *resolved.Name:
		if v.set != nil && n.Var != nil && n.Var != v.initializing && qualifies(v.typ, n.Var) {
			v.set.add(n.Var)
		}
	case *resolved.New:
		// Instantiating a capturing local type passes its captures along.
		if n.Body == nil && n.Class != v.typ {
			if s := v.c.sets[n.Class]; s != nil {
				v.inherit(s)
			}
		}
	}
	return v
}
