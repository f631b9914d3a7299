package compiler

import (
	"strconv"
	"strings"

	"j2cgen/resolved"
)

// Unit is the generated state of one type between lowering and flush.
type Unit struct {
	Decl     *resolved.TypeDecl
	Type     *resolved.Type
	Deps     *DependencySet
	Closures *ClosureSet

	Fields        []*resolved.Variable // instance fields in declaration order
	StaticFields  []*resolved.Variable
	DeclaredCtors []*resolved.MethodDecl
	Natives       []*resolved.MethodDecl
	Ctors         []Constructor

	HasInit           bool
	HasClinit         bool
	HasNatives        bool
	NeedsFinally      bool
	NeedsSynchronized bool
	NeedsMath         bool
	Main              bool

	init   strings.Builder
	clinit strings.Builder
	body   string
}

func newUnit(decl *resolved.TypeDecl, closures *ClosureSet, statics *StaticInits) *Unit {
	u := &Unit{
		Decl:      decl,
		Type:      decl.Type,
		Deps:      NewDependencySet(),
		Closures:  closures,
		HasClinit: statics.Has(decl.Type),
	}
	for _, d := range decl.Body {
		switch d := d.(type) {
		case *resolved.FieldDecl:
			if d.Static {
				continue
			}
			for _, f := range d.Vars {
				if f.Init != nil {
					u.HasInit = true
				}
			}
		case *resolved.Initializer:
			if !d.Static {
				u.HasInit = true
			}
		case *resolved.MethodDecl:
			if d.Method.Constructor {
				u.DeclaredCtors = append(u.DeclaredCtors, d)
			}
		}
	}
	return u
}

// isConstant reports whether v is emitted as an in-class constant.
func isConstant(v *resolved.Variable) bool {
	return v.Static && v.Final && v.Const != "" && v.Type.IsPrimitive()
}

// Lowering turns the members of one type into target code. Expressions are
// returned as strings, statements are printed.
type Lowering struct {
	unit     *Unit
	typ      *resolved.Type
	universe *resolved.Universe
	deps     *DependencySet
	closures *ClosureCollector
	statics  *StaticInits
	diag     *Diagnostics
	enqueue  func(*resolved.TypeDecl)
	p        *printer
	method   *resolved.Method

	finallyCount int
	syncCount    int
}

func newLowering(u *Unit, universe *resolved.Universe, closures *ClosureCollector, statics *StaticInits, diag *Diagnostics, enqueue func(*resolved.TypeDecl)) *Lowering {
	return &Lowering{
		unit:     u,
		typ:      u.Type,
		universe: universe,
		deps:     u.Deps,
		closures: closures,
		statics:  statics,
		diag:     diag,
		enqueue:  enqueue,
		p:        newPrinter(),
	}
}

func (l *Lowering) context() string {
	if l.method != nil {
		return l.typ.Name + "." + l.method.Name
	}
	return l.typ.Name
}

func (l *Lowering) report(kind string, attrs map[string]string) {
	l.diag.Unsupported(Construct{Kind: kind, Context: l.context(), Attrs: attrs})
}

func (l *Lowering) unsupported(kind string) string {
	l.report(kind, nil)
	return "/* unsupported: " + kind + " */"
}

// lowerBody lowers every member of the unit's type.
func (l *Lowering) lowerBody() {
	decl := l.unit.Decl
	for _, c := range decl.Constants {
		l.enumConstant(c)
	}
	for _, d := range decl.Body {
		switch d := d.(type) {
		case *resolved.FieldDecl:
			l.field(d)
		case *resolved.MethodDecl:
			l.methodDecl(d)
		case *resolved.Initializer:
			l.initializer(d)
		case *resolved.TypeDecl:
			l.enqueue(d)
		case *resolved.Unsupported:
			l.report(d.Kind, nil)
		}
	}
	l.unit.body = l.p.String()
}

// routine lowers fn into the static or instance initializer routine.
func (l *Lowering) routine(static bool, fn func()) {
	marker, dst := MarkerInit, &l.unit.init
	if static {
		marker, dst = MarkerClinit, &l.unit.clinit
	}
	saved := l.p.indent
	l.p.indent = 1
	dst.WriteString(l.p.capture(marker, fn))
	l.p.indent = saved
}

func (l *Lowering) staticMember(v *resolved.Variable) {
	l.p.println(typeRef(v.Type), " ", qualifiedCName(l.typ, false), "::", identifier(v.Name), ";")
}

func (l *Lowering) field(d *resolved.FieldDecl) {
	for _, f := range d.Vars {
		v := f.Var
		l.deps.Soft(v.Type)
		if !d.Static {
			l.unit.Fields = append(l.unit.Fields, v)
		} else {
			l.unit.StaticFields = append(l.unit.StaticFields, v)
			if isConstant(v) {
				continue
			}
			l.staticMember(v)
		}
		if f.Init == nil {
			continue
		}
		l.routine(d.Static, func() {
			l.deps.Hard(f.Init.Info().Type)
			l.p.printlni(identifier(v.Name), " = ", l.expr(f.Init), ";")
		})
	}
}

func (l *Lowering) initializer(d *resolved.Initializer) {
	l.routine(d.Static, func() {
		l.block(d.Body)
	})
}

func (l *Lowering) enumConstant(c *resolved.EnumConstant) {
	l.unit.StaticFields = append(l.unit.StaticFields, c.Var)
	l.staticMember(c.Var)
	if c.Body != nil {
		l.report("EnumConstantBody", map[string]string{"constant": c.Var.Name})
	}
	l.routine(true, func() {
		l.deps.Use(l.typ, UseValue)
		args := l.argList(c.Ctor, c.Args)
		l.p.printlni(identifier(c.Var.Name), " = new ", qualifiedCName(l.typ, true), "(", strings.Join(args, ", "), ");")
	})
}

// params spells the parameter list of a declared method.
func params(d *resolved.MethodDecl, deps *DependencySet) string {
	var ps []string
	if len(d.Params) > 0 {
		for _, v := range d.Params {
			deps.Soft(v.Type)
			ps = append(ps, typeRef(v.Type)+" "+identifier(v.Name))
		}
		return strings.Join(ps, ", ")
	}
	for i, t := range d.Method.Params {
		deps.Soft(t)
		ps = append(ps, typeRef(t)+" a"+strconv.Itoa(i))
	}
	return strings.Join(ps, ", ")
}

func (l *Lowering) methodDecl(d *resolved.MethodDecl) {
	m := d.Method
	switch {
	case m.Native:
		l.unit.HasNatives = true
		l.unit.Natives = append(l.unit.Natives, d)
		return
	case d.Body == nil:
		return
	}
	l.method = m
	defer func() { l.method = nil }()

	if m.IsMain() {
		l.unit.Main = true
	}
	name, ret := identifier(m.Name), "void"
	if m.Constructor {
		name = "ctor"
	} else {
		l.deps.Soft(m.Return)
		ret = typeRef(m.Return)
	}
	l.p.println()
	l.p.println(ret, " ", qualifiedCName(l.typ, false), "::", name, "(", params(d, l.deps), ")")
	l.p.println("{")
	l.p.indent++
	if m.Static && l.unit.HasClinit {
		l.p.printlni("clinit_();")
	}
	if m.Synchronized {
		if m.Static {
			l.report("SynchronizedStaticMethod", nil)
		} else {
			l.p.printlni(l.synchronizedGuard("this"))
		}
	}
	l.stmts(d.Body.Stmts)
	l.p.indent--
	l.p.println("}")
}

// synchronizedGuard returns the declaration that holds the monitor of obj
// until the end of the enclosing block.
func (l *Lowering) synchronizedGuard(obj string) string {
	l.unit.NeedsSynchronized = true
	l.deps.Hard(l.universe.Type("java.lang.Object"))
	n := strconv.Itoa(l.syncCount)
	l.syncCount++
	return "synchronized synchronized_" + n + "(" + obj + ");"
}

// usings spells the import lines of the definition artifact.
func (l *Lowering) usings(imports []resolved.Import) []string {
	var lines []string
	for _, imp := range imports {
		switch {
		case imp.Static:
		case imp.OnDemand && imp.Package:
			ns := "::" + strings.ReplaceAll(imp.Name, ".", "::")
			open, close := openNamespace(strings.TrimPrefix(ns, "::"))
			lines = append(lines, open+" "+close, "using namespace "+ns+";")
		case imp.OnDemand:
			// members of a type are reached through its qualified name
		case imp.Type != nil:
			l.deps.Soft(imp.Type)
			lines = append(lines, "using "+qualifiedCName(imp.Type, true)+";")
		}
	}
	return lines
}
