package compiler

import (
	"strings"

	"j2cgen/resolved"
)

// writeStub produces the native stub artifact: one body per native method
// that reports the missing implementation at run time.
func writeStub(u *Unit) string {
	t := u.Type
	p := newPrinter()
	p.println("// Generated from ", t.Name)
	p.println()
	p.println("#include <", includePath(t), ">")
	p.println()
	p.println("extern void unimplemented_(const char16_t* name);")
	for _, d := range u.Natives {
		m := d.Method
		sig := typeRef(m.Return) + " " + qualifiedCName(t, false) + "::" + identifier(m.Name) +
			"(" + params(d, NewDependencySet()) + ")"
		p.println()
		p.println(sig)
		p.println("{ /* native */")
		p.indent++
		if m.Static && u.HasClinit {
			p.printlni("clinit_();")
		}
		p.printlni("unimplemented_(u\"", strings.ReplaceAll(sig, "\"", "\\\""), "\");")
		if r := defaultReturn(m.Return); r != "" {
			p.printlni("return ", r, ";")
		}
		p.indent--
		p.println("}")
	}
	return p.String()
}

// defaultReturn is the value a stub hands back, empty for void.
func defaultReturn(t *resolved.Type) string {
	switch {
	case t == nil || t.IsVoid():
		return ""
	case t.IsPrimitive():
		return "0"
	}
	return "nullptr"
}
