package compiler

import (
	"strconv"
	"strings"

	"j2cgen/resolved"
)

type Param struct {
	Type *resolved.Type
	Name string
}

func (p Param) String() string {
	return typeRef(p.Type) + " " + p.Name
}

// Constructor is one C++ constructor of a generated class. The first
// Implicit params carry the outer instance and the captured variables.
type Constructor struct {
	Params   []Param
	Implicit int
	Inits    []string
	Body     []string
	Declared *resolved.MethodDecl
}

func (c Constructor) paramList() string {
	ps := make([]string, len(c.Params))
	for i, p := range c.Params {
		ps[i] = p.String()
	}
	return strings.Join(ps, ", ")
}

// declaration spells the in-class declaration.
func (c Constructor) declaration(t *resolved.Type) string {
	return cName(t) + "(" + c.paramList() + ");"
}

// write prints the out-of-class definition.
func (c Constructor) write(p *printer, t *resolved.Type) {
	p.println(qualifiedCName(t, false), "::", cName(t), "(", c.paramList(), ")")
	p.indent++
	for i, init := range c.Inits {
		sep := ", "
		if i == 0 {
			sep = ": "
		}
		p.printlni(sep, init)
	}
	p.indent--
	p.println("{")
	p.indent++
	for _, line := range c.Body {
		p.printlni(line)
	}
	p.indent--
	p.println("}")
	p.println()
}

// ConstructorSynthesizer derives the constructor surface of one unit from
// its declared constructors, its enclosing instance and its captures.
type ConstructorSynthesizer struct {
	unit     *Unit
	deps     *DependencySet
	closures *ClosureCollector
}

func NewConstructorSynthesizer(u *Unit, closures *ClosureCollector) *ConstructorSynthesizer {
	return &ConstructorSynthesizer{unit: u, deps: u.Deps, closures: closures}
}

// Synthesize fills in unit.Ctors. Every type ends up with at least one.
func (s *ConstructorSynthesizer) Synthesize() []Constructor {
	t := s.unit.Type
	if t.IsInterface() {
		s.unit.Ctors = nil
		return nil
	}
	var ctors []Constructor
	if t.Anonymous {
		ctors = s.forwarders()
	} else {
		hasEmpty := false
		for _, d := range s.unit.DeclaredCtors {
			ctors = append(ctors, s.declared(d))
			if len(d.Method.Params) == 0 {
				hasEmpty = true
			}
		}
		if !hasEmpty {
			ctors = append(ctors, s.implicitOnly())
		}
	}
	s.unit.Ctors = ctors
	return ctors
}

// implicitParams are the outer instance followed by the captures.
func (s *ConstructorSynthesizer) implicitParams() []Param {
	t := s.unit.Type
	var ps []Param
	if t.HasOuterThis() {
		s.deps.Soft(t.Outer)
		ps = append(ps, Param{Type: t.Outer, Name: outerThisName(t)})
	}
	for _, v := range s.unit.Closures.Vars() {
		s.deps.Soft(v.Type)
		ps = append(ps, Param{Type: v.Type, Name: closureName(v)})
	}
	return ps
}

func (s *ConstructorSynthesizer) prologue() []string {
	var body []string
	if s.unit.HasClinit {
		body = append(body, "clinit_();")
	}
	if s.unit.HasInit {
		body = append(body, "init_();")
	}
	return body
}

// ownsOuterField reports whether the outer instance is stored in a field of
// this type rather than handed to the superclass that already has one.
func ownsOuterField(t *resolved.Type) bool {
	if !t.HasOuterThis() {
		return false
	}
	return !(t.Super.HasOuterThis() && t.Super.Outer == t.Outer)
}

// superImplicit spells the implicit arguments the superclass constructor
// expects.
func (s *ConstructorSynthesizer) superImplicit() []string {
	t := s.unit.Type
	super := t.Super
	if super == nil {
		return nil
	}
	var args []string
	if super.HasOuterThis() {
		args = append(args, s.outerFor(super.Outer))
	}
	for _, v := range s.closures.Closures(super).Vars() {
		if !s.unit.Closures.Contains(v) {
			invariantf(t.Name, "superclass %s captures %s which is not handed over", super.Name, v.Name)
		}
		args = append(args, closureName(v))
	}
	return args
}

// outerFor walks from the outer instance parameter to the first enclosing
// instance that is a target.
func (s *ConstructorSynthesizer) outerFor(target *resolved.Type) string {
	t := s.unit.Type
	if !t.HasOuterThis() {
		invariantf(t.Name, "no enclosing instance of %s", target.Name)
	}
	path := outerThisName(t)
	for cur := t.Outer; !cur.IsSubtypeOf(target); cur = cur.Outer {
		if !cur.HasOuterThis() {
			invariantf(t.Name, "no enclosing instance of %s", target.Name)
		}
		s.deps.Hard(cur)
		path += "->" + outerThisName(cur)
	}
	return path
}

// inits is the initializer list: superclass or outer instance, then the
// fields in declaration order, then the captures.
func (s *ConstructorSynthesizer) inits(superArgs []string, forceSuper bool) []string {
	t := s.unit.Type
	var inits []string
	if forceSuper || len(superArgs) > 0 {
		inits = append(inits, "super("+strings.Join(superArgs, ", ")+")")
	}
	if ownsOuterField(t) {
		name := outerThisName(t)
		inits = append(inits, name+"("+name+")")
	}
	for _, f := range s.unit.Fields {
		inits = append(inits, identifier(f.Name)+"()")
	}
	for _, v := range s.unit.Closures.Vars() {
		name := closureName(v)
		inits = append(inits, name+"("+name+")")
	}
	return inits
}

func (s *ConstructorSynthesizer) declared(d *resolved.MethodDecl) Constructor {
	implicit := s.implicitParams()
	ps := append([]Param(nil), implicit...)
	var names []string
	for i, t := range d.Method.Params {
		s.deps.Soft(t)
		name := "a" + strconv.Itoa(i)
		if i < len(d.Params) {
			name = identifier(d.Params[i].Name)
		}
		ps = append(ps, Param{Type: t, Name: name})
		names = append(names, name)
	}
	return Constructor{
		Params:   ps,
		Implicit: len(implicit),
		Inits:    s.inits(s.superImplicit(), false),
		Body:     append(s.prologue(), "ctor("+strings.Join(names, ", ")+");"),
		Declared: d,
	}
}

func (s *ConstructorSynthesizer) implicitOnly() Constructor {
	implicit := s.implicitParams()
	return Constructor{
		Params:   implicit,
		Implicit: len(implicit),
		Inits:    s.inits(s.superImplicit(), false),
		Body:     s.prologue(),
	}
}

// forwarders creates one constructor per visible superclass constructor of
// an anonymous type.
func (s *ConstructorSynthesizer) forwarders() []Constructor {
	t := s.unit.Type
	superImplicit := s.superImplicit()
	var supers []*resolved.Method
	if t.Super != nil {
		for _, m := range t.Super.Constructors() {
			if !m.Private {
				supers = append(supers, m)
			}
		}
	}
	if len(supers) == 0 {
		implicit := s.implicitParams()
		return []Constructor{{
			Params:   implicit,
			Implicit: len(implicit),
			Inits:    s.inits(superImplicit, false),
			Body:     s.prologue(),
		}}
	}
	var ctors []Constructor
	for _, m := range supers {
		implicit := s.implicitParams()
		ps := append([]Param(nil), implicit...)
		args := append([]string(nil), superImplicit...)
		for i, pt := range m.Params {
			s.deps.Soft(pt)
			name := "a" + strconv.Itoa(i)
			ps = append(ps, Param{Type: pt, Name: name})
			args = append(args, name)
		}
		ctors = append(ctors, Constructor{
			Params:   ps,
			Implicit: len(implicit),
			Inits:    s.inits(args, len(m.Params) > 0),
			Body:     s.prologue(),
		})
	}
	return ctors
}
