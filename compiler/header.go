package compiler

import (
	"strings"

	"j2cgen/resolved"
)

const runtimeInclude = "#include <j2c/runtime.h>"

// HeaderWriter produces the declaration artifact of one unit. It keeps its
// own dependency set: the header only needs what the class layout and the
// member signatures mention.
type HeaderWriter struct {
	unit     *Unit
	universe *resolved.Universe
	deps     *DependencySet
	p        *printer
}

func NewHeaderWriter(u *Unit, universe *resolved.Universe) *HeaderWriter {
	return &HeaderWriter{unit: u, universe: universe, deps: NewDependencySet(), p: newPrinter()}
}

// bases returns the C++ base classes. Types without a superclass derive
// from java.lang.Object, except Object itself.
func (h *HeaderWriter) bases() []*resolved.Type {
	t := h.unit.Type
	var bases []*resolved.Type
	switch {
	case t.Super != nil:
		bases = append(bases, t.Super)
	case t.Name != "java.lang.Object":
		bases = append(bases, h.universe.Type("java.lang.Object"))
	}
	return append(bases, t.Interfaces...)
}

func (h *HeaderWriter) Write() string {
	t := h.unit.Type
	bases := h.bases()
	for _, b := range bases {
		h.deps.Use(b, UseBase)
	}
	body := h.p.capture(MarkerHeader, func() {
		h.p.indent = 1
		h.members()
		h.p.indent = 0
	})

	var sb strings.Builder
	sb.WriteString("// Generated from " + t.Name + "\n\n")
	sb.WriteString("#pragma once\n\n")
	for _, d := range h.deps.HardDeps() {
		if d != t {
			sb.WriteString("#include <" + includePath(d) + ">\n")
		}
	}
	sb.WriteString(runtimeInclude + "\n\n")
	if fwd := h.forwardDecls(); len(fwd) > 0 {
		sb.WriteString(strings.Join(fwd, "\n") + "\n\n")
	}

	open, close := openNamespace(namespaceOf(t))
	if open != "" {
		sb.WriteString(open + "\n")
	}
	sb.WriteString("class " + cName(t))
	for i, b := range bases {
		sep := ", "
		if i == 0 {
			sep = "\n    : "
		}
		sb.WriteString(sep + "public virtual " + qualifiedCName(b, true))
	}
	sb.WriteString("\n{\npublic:\n")
	if t.Super != nil {
		sb.WriteString("    typedef " + qualifiedCName(t.Super, true) + " super;\n")
	}
	sb.WriteString(body)
	sb.WriteString("};\n")
	if close != "" {
		sb.WriteString(close + "\n")
	}
	return sb.String()
}

// forwardDecls declares every Soft-only type, the unit's own type included
// so that members can name it before the class body is complete.
func (h *HeaderWriter) forwardDecls() []string {
	var lines []string
	for _, d := range h.deps.SoftDeps() {
		lines = append(lines, forwardDecl(d))
	}
	return lines
}

func (h *HeaderWriter) members() {
	u := h.unit
	t := u.Type
	if u.HasClinit {
		h.p.printlni("static void clinit_();")
	}
	if u.HasInit {
		h.p.printlni("void init_();")
	}
	for _, c := range u.Ctors {
		for _, p := range c.Params {
			h.deps.Soft(p.Type)
		}
		h.p.printlni(c.declaration(t))
	}
	for _, d := range u.DeclaredCtors {
		h.p.printlni("void ctor(", params(d, h.deps), ");")
	}
	for _, d := range u.Decl.Body {
		if m, ok := d.(*resolved.MethodDecl); ok && !m.Method.Constructor {
			h.method(m)
		}
	}
	if len(u.Fields)+len(u.StaticFields) > 0 {
		h.p.println()
	}
	for _, v := range u.StaticFields {
		h.staticField(v)
	}
	for _, v := range u.Fields {
		if v.Type != t {
			h.deps.Use(v.Type, UseField)
		}
		h.p.printlni(typeRef(v.Type), " ", identifier(v.Name), ";")
	}
	if ownsOuterField(t) {
		h.deps.Use(t.Outer, UseField)
		h.p.printlni(typeRef(t.Outer), " ", outerThisName(t), ";")
	}
	for _, v := range u.Closures.Vars() {
		h.deps.Soft(v.Type)
		h.p.printlni(typeRef(v.Type), " ", closureName(v), ";")
	}
}

func (h *HeaderWriter) method(d *resolved.MethodDecl) {
	m := d.Method
	h.deps.Soft(m.Return)
	sig := typeRef(m.Return) + " " + identifier(m.Name) + "(" + params(d, h.deps) + ")"
	switch {
	case m.Static:
		h.p.printlni("static ", sig, ";")
	case m.Abstract || (h.unit.Type.IsInterface() && d.Body == nil):
		h.p.printlni("virtual ", sig, " = 0;")
	default:
		h.p.printlni("virtual ", sig, ";")
	}
}

func (h *HeaderWriter) staticField(v *resolved.Variable) {
	if isConstant(v) {
		h.p.printlni("static constexpr ", typeRef(v.Type), " ", identifier(v.Name), " = ", v.Const, ";")
		return
	}
	if v.Type != h.unit.Type {
		h.deps.Soft(v.Type)
	}
	h.p.printlni("static ", typeRef(v.Type), " ", identifier(v.Name), ";")
}
