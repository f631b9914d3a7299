package compiler

import (
	"strings"

	"j2cgen/resolved"
)

var cppTypesMap = map[string]string{
	"boolean": "bool",
	"byte":    "int8_t",
	"char":    "char16_t",
	"short":   "int16_t",
	"int":     "int32_t",
	"long":    "int64_t",
	"float":   "float",
	"double":  "double",
	"void":    "void",
}

// boxTypes maps a primitive to its wrapper class.
var boxTypes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"short":   "java.lang.Short",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
}

// unboxTypes maps a wrapper class back to its primitive.
var unboxTypes = func() map[string]string {
	m := make(map[string]string, len(boxTypes))
	for prim, wrapper := range boxTypes {
		m[wrapper] = prim
	}
	return m
}()

// cName returns the unqualified C++ name of t. Nested types are flattened
// into their top-level namespace: p.Outer$Inner becomes Outer_Inner.
func cName(t *resolved.Type) string {
	t = t.Erased()
	switch {
	case t.IsPrimitive():
		return cppTypesMap[t.Name]
	case t.IsArray():
		if t.Elem.IsPrimitive() {
			return t.Elem.Name + "Array"
		}
		return cName(t.Elem) + "Array"
	}
	return strings.ReplaceAll(t.BinaryName(), "$", "_")
}

// namespaceOf returns the C++ namespace path of t, e.g. "java::lang".
// Arrays of primitives live in the global namespace.
func namespaceOf(t *resolved.Type) string {
	t = t.Erased()
	for t.IsArray() {
		t = t.Elem
	}
	if t.IsPrimitive() {
		return ""
	}
	return strings.ReplaceAll(t.Package(), ".", "::")
}

// qualifiedCName returns the fully qualified C++ name of t. Global names
// start with "::" and are used wherever a type is referenced; the
// non-global form is used in out-of-class definitions.
func qualifiedCName(t *resolved.Type, global bool) string {
	if t.Erased().IsPrimitive() {
		return cName(t)
	}
	name := cName(t)
	if ns := namespaceOf(t); ns != "" {
		name = ns + "::" + name
	}
	if global {
		return "::" + name
	}
	return name
}

// ref returns the pointer suffix for references to t.
func ref(t *resolved.Type) string {
	if t == nil || t.Erased().IsPrimitive() {
		return ""
	}
	return "*"
}

// typeRef spells a variable, parameter or return type.
func typeRef(t *resolved.Type) string {
	return qualifiedCName(t, true) + ref(t)
}

// canonicalName is the ordering key for dependency directives.
func canonicalName(t *resolved.Type) string {
	return qualifiedCName(t, true)
}

// artifactPath returns the path of t's artifacts relative to the output
// root, without extension.
func artifactPath(t *resolved.Type) string {
	t = t.Erased()
	if ns := namespaceOf(t); ns != "" {
		return strings.ReplaceAll(ns, "::", "/") + "/" + cName(t)
	}
	return cName(t)
}

func includePath(t *resolved.Type) string { return artifactPath(t) + ".h" }
func implPath(t *resolved.Type) string    { return artifactPath(t) + ".cpp" }
func stubPath(t *resolved.Type) string    { return artifactPath(t) + "-native.cpp" }

// outerThisName is the name of the field linking an instance of t to its
// enclosing instance.
func outerThisName(t *resolved.Type) string {
	return cName(t.Outer) + "_this"
}

// closureName is the field and parameter name a captured variable gets.
func closureName(v *resolved.Variable) string {
	return identifier(v.Name) + "_"
}

// openNamespace returns the text that opens ns and the matching close.
func openNamespace(ns string) (string, string) {
	if ns == "" {
		return "", ""
	}
	parts := strings.Split(ns, "::")
	var open, close strings.Builder
	for i, part := range parts {
		if i > 0 {
			open.WriteString(" ")
			close.WriteString(" ")
		}
		open.WriteString("namespace " + part + " {")
		close.WriteString("}")
	}
	return open.String(), close.String()
}

// forwardDecl declares t without defining it.
func forwardDecl(t *resolved.Type) string {
	open, close := openNamespace(namespaceOf(t))
	if open == "" {
		return "class " + cName(t) + ";"
	}
	return open + " class " + cName(t) + "; " + close
}
