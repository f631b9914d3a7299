package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"j2cgen/resolved"
)

// expr lowers e including the boxing conversion the front end attached.
func (l *Lowering) expr(e resolved.Expr) string {
	return l.convert(e, l.rawExpr(e))
}

// receiver lowers e as the target of a member access or the qualifier of a
// name. No boxing conversion is applied there.
func (l *Lowering) receiver(e resolved.Expr) string {
	return l.rawExpr(e)
}

func (l *Lowering) convert(e resolved.Expr, s string) string {
	info := e.Info()
	switch {
	case info.Boxing:
		var wrapper string
		ok := info.Type != nil
		if ok {
			wrapper, ok = boxTypes[info.Type.Erased().Name]
		}
		if !ok {
			invariantf(l.typ.Name, "boxing of %s, which has no wrapper type", info.Type)
		}
		w := l.universe.Type(wrapper)
		l.deps.Hard(w)
		return qualifiedCName(w, true) + "::valueOf(" + s + ")"
	case info.Unboxing && info.Type != nil:
		if prim, ok := unboxTypes[info.Type.Erased().Name]; ok {
			l.deps.Hard(info.Type)
			return "(" + s + ")->" + prim + "Value()"
		}
	}
	return s
}

func (l *Lowering) rawExpr(e resolved.Expr) string {
	switch e := e.(type) {
	case *resolved.Literal:
		return l.literal(e)
	case *resolved.Name:
		return l.name(e)
	case *resolved.FieldAccess:
		return l.fieldAccess(e)
	case *resolved.Infix:
		return l.infix(e)
	case *resolved.Prefix:
		x := l.expr(e.X)
		if (e.Op == "-" || e.Op == "+") && strings.HasPrefix(x, e.Op) {
			return e.Op + " " + x
		}
		return e.Op + x
	case *resolved.Postfix:
		return l.expr(e.X) + e.Op
	case *resolved.Assign:
		return l.assign(e)
	case *resolved.Call:
		return l.call(e)
	case *resolved.New:
		return l.newExpr(e)
	case *resolved.NewArray:
		return l.newArray(e)
	case *resolved.ArrayInit:
		return l.arrayInit(e.Info().Type, e.Elems)
	case *resolved.Index:
		l.deps.Hard(e.X.Info().Type)
		return "(*" + l.expr(e.X) + ")[" + l.expr(e.Index) + "]"
	case *resolved.Cast:
		return l.cast(e)
	case *resolved.InstanceOf:
		l.deps.Hard(e.Of)
		l.deps.Hard(e.X.Info().Type)
		return "(dynamic_cast< " + typeRef(e.Of) + " >(" + l.expr(e.X) + ") != nullptr)"
	case *resolved.Conditional:
		t := e.Info().Type
		return l.expr(e.Cond) + " ? " + l.coerce(e.Then, t) + " : " + l.coerce(e.Else, t)
	case *resolved.This:
		return l.this(e.Qualifier)
	case *resolved.Paren:
		return "(" + l.expr(e.X) + ")"
	case *resolved.TypeLit:
		return l.typeLit(e.Of)
	case *resolved.Unsupported:
		return l.unsupported(e.Kind)
	case nil:
		invariantf(l.typ.Name, "missing expression in %s", l.context())
	}
	return l.unsupported(fmt.Sprintf("%T", e))
}

func (l *Lowering) literal(e *resolved.Literal) string {
	v := e.Value
	switch e.Kind {
	case resolved.NullLit:
		return "nullptr"
	case resolved.StringLit:
		l.deps.Hard(l.universe.Type("java.lang.String"))
		return "u" + v + "_j"
	case resolved.CharLit:
		return "u" + v
	case resolved.IntLit:
		return strings.ReplaceAll(v, "_", "")
	case resolved.LongLit:
		return strings.TrimRight(strings.ReplaceAll(v, "_", ""), "lL") + "LL"
	case resolved.FloatLit:
		return floatLiteral(v, "f")
	case resolved.DoubleLit:
		return floatLiteral(v, "")
	}
	return v
}

func floatLiteral(v, suffix string) string {
	v = strings.TrimRight(strings.ReplaceAll(v, "_", ""), "fFdD")
	if !strings.ContainsAny(v, ".eEpPxX") {
		v += ".0"
	}
	return v + suffix
}

func (l *Lowering) name(n *resolved.Name) string {
	switch {
	case n.Var != nil:
		return l.variable(n)
	case n.Ref != nil:
		l.deps.Hard(n.Ref)
		return qualifiedCName(n.Ref, true)
	}
	return identifier(n.Ident)
}

func (l *Lowering) variable(n *resolved.Name) string {
	v := n.Var
	if n.Qualifier == nil {
		switch {
		case v.Field:
			return l.fieldRef(v)
		case l.closures.Captures(l.typ, v):
			return closureName(v)
		}
		return identifier(v.Name)
	}

	if q, ok := n.Qualifier.(*resolved.Name); ok && q.Var == nil {
		if q.Ref == nil {
			// package-qualified; nothing to reach through
			return identifier(v.Name)
		}
		return l.staticRef(q.Ref, v)
	}
	qt := n.Qualifier.Info().Type
	switch {
	case qt.IsArray() && v.Name == "length":
		l.deps.Hard(qt)
		return l.receiver(n.Qualifier) + "->length_"
	case v.Static && v.Owner != nil:
		return l.staticRef(v.Owner, v)
	}
	l.deps.Hard(qt)
	return l.receiver(n.Qualifier) + "->" + identifier(v.Name)
}

// fieldRef spells an unqualified field reference from code of l.typ.
func (l *Lowering) fieldRef(v *resolved.Variable) string {
	name := identifier(v.Name)
	owner := v.Owner
	switch {
	case owner == nil:
		return name
	case v.Static && l.triggers(owner, v):
		return l.staticRef(owner, v)
	case l.typ.IsSubtypeOf(owner):
		return name
	case v.Static:
		return l.staticRef(owner, v)
	}
	return l.outerPath(owner) + "->" + name
}

// triggers reports whether reading the static field v of owner from code of
// l.typ must run the static initialization of owner first.
func (l *Lowering) triggers(owner *resolved.Type, v *resolved.Variable) bool {
	return owner.Erased() != l.typ.Erased() && !isConstant(v) && l.statics.Has(owner)
}

// staticRef spells the static field v reached through owner.
func (l *Lowering) staticRef(owner *resolved.Type, v *resolved.Variable) string {
	l.deps.Hard(owner)
	ref := qualifiedCName(owner, true) + "::" + identifier(v.Name)
	if !l.triggers(owner, v) {
		return ref
	}
	return "(" + qualifiedCName(owner, true) + "::clinit_(), " + ref + ")"
}

// outerPath walks the outer-instance chain from l.typ to the first
// enclosing instance that is a target.
func (l *Lowering) outerPath(target *resolved.Type) string {
	path := "this"
	for t := l.typ; !t.IsSubtypeOf(target); t = t.Outer {
		if !t.HasOuterThis() {
			invariantf(l.typ.Name, "no enclosing instance of %s", target.Name)
		}
		l.deps.Hard(t.Outer)
		if path == "this" {
			path = outerThisName(t)
		} else {
			path += "->" + outerThisName(t)
		}
	}
	return path
}

func (l *Lowering) this(qualifier *resolved.Type) string {
	if qualifier == nil || qualifier == l.typ {
		return "this"
	}
	return l.outerPath(qualifier)
}

func (l *Lowering) fieldAccess(e *resolved.FieldAccess) string {
	f := e.Field
	name := identifier(f.Name)
	switch {
	case e.Super:
		return "super::" + name
	case e.X == nil:
		return l.fieldRef(f)
	}
	xt := e.X.Info().Type
	switch {
	case xt.IsArray() && f.Name == "length":
		l.deps.Hard(xt)
		return l.receiver(e.X) + "->length_"
	case f.Static && f.Owner != nil:
		return l.staticRef(f.Owner, f)
	}
	l.deps.Hard(xt)
	return l.receiver(e.X) + "->" + name
}

func (l *Lowering) infix(e *resolved.Infix) string {
	t := e.Info().Type
	operands := append([]resolved.Expr{e.X, e.Y}, e.More...)
	for _, o := range operands {
		l.deps.Hard(o.Info().Type)
	}
	acc := l.expr(operands[0])
	rest := operands[1:]
	switch {
	case e.Op == "+" && t.IsString():
		for _, o := range rest {
			acc = "::join(" + acc + ", " + l.expr(o) + ")"
		}
	case e.Op == "%" && t.IsFloating():
		l.unit.NeedsMath = true
		for _, o := range rest {
			acc = "std::fmod(" + acc + ", " + l.expr(o) + ")"
		}
	case e.Op == ">>>":
		for _, o := range rest {
			acc = unsignedShift(t, acc, l.expr(o))
		}
	default:
		for _, o := range rest {
			acc += " " + e.Op + " " + l.expr(o)
		}
	}
	return acc
}

// unsignedShift reinterprets x as unsigned for the shift and converts the
// result back to the source width.
func unsignedShift(t *resolved.Type, x, n string) string {
	signed, unsigned := "int32_t", "uint32_t"
	if t.Erased().Name == "long" {
		signed, unsigned = "int64_t", "uint64_t"
	}
	return "static_cast<" + signed + ">(static_cast<" + unsigned + ">(" + x + ") >> " + n + ")"
}

func (l *Lowering) assign(e *resolved.Assign) string {
	lt := e.Lhs.Info().Type
	l.deps.Hard(e.Rhs.Info().Type)
	lhs := l.expr(e.Lhs)
	rhs := l.expr(e.Rhs)
	switch {
	case e.Op == "+=" && lt.IsString():
		return lhs + " = ::join(" + lhs + ", " + rhs + ")"
	case e.Op == "%=" && lt.IsFloating():
		l.unit.NeedsMath = true
		return lhs + " = std::fmod(" + lhs + ", " + rhs + ")"
	case e.Op == ">>>=":
		return lhs + " = " + unsignedShift(lt, lhs, rhs)
	}
	return lhs + " " + e.Op + " " + rhs
}

func (l *Lowering) call(e *resolved.Call) string {
	m := e.Method
	if m == nil {
		invariantf(l.typ.Name, "unresolved method call in %s", l.context())
	}
	var target string
	switch {
	case e.Super:
		target = "super::"
	case e.Recv != nil:
		if n, ok := e.Recv.(*resolved.Name); ok && n.Var == nil && n.Ref != nil {
			l.deps.Hard(n.Ref)
			target = qualifiedCName(n.Ref, true) + "::"
		} else if m.Static && m.Owner != nil {
			l.deps.Hard(m.Owner)
			target = qualifiedCName(m.Owner, true) + "::"
		} else {
			l.deps.Hard(e.Recv.Info().Type)
			target = l.receiver(e.Recv) + "->"
		}
	case m.Owner != nil && !l.typ.IsSubtypeOf(m.Owner):
		if m.Static {
			l.deps.Hard(m.Owner)
			target = qualifiedCName(m.Owner, true) + "::"
		} else {
			target = l.outerPath(m.Owner) + "->"
		}
	}
	s := target + identifier(m.Name) + "(" + strings.Join(l.argList(m, e.Args), ", ") + ")"
	if rt := e.Info().Type; m.ReturnErased && rt.IsReference() && rt.Erased() != m.Return.Erased() {
		l.deps.Hard(rt)
		s = "dynamic_cast< " + typeRef(rt) + " >(" + s + ")"
	}
	return s
}

// argList lowers call arguments against the parameters of m. Trailing
// arguments of a varargs method are packed into an array unless a single
// array-compatible argument is passed.
func (l *Lowering) argList(m *resolved.Method, args []resolved.Expr) []string {
	var ps []*resolved.Type
	varargs := false
	if m != nil {
		ps = m.Params
		varargs = m.Varargs && len(ps) > 0
	}
	fixed := len(ps)
	if varargs {
		fixed--
	}
	var out []string
	for i, a := range args {
		if i >= fixed {
			break
		}
		out = append(out, l.coerce(a, ps[i]))
	}
	switch {
	case varargs:
		rest := args[min(fixed, len(args)):]
		va := ps[fixed]
		if len(rest) == 1 && arrayCompatible(rest[0].Info().Type, va) {
			out = append(out, l.coerce(rest[0], va))
		} else {
			out = append(out, l.varargsArray(va, rest))
		}
	case len(args) > fixed:
		for _, a := range args[fixed:] {
			out = append(out, l.expr(a))
		}
	}
	return out
}

func arrayCompatible(arg, param *resolved.Type) bool {
	switch {
	case arg == nil:
		return false
	case arg.IsNull():
		return true
	case !arg.IsArray():
		return false
	case arg.Erased() == param.Erased():
		return true
	}
	return !arg.Elem.IsPrimitive() && !param.Elem.IsPrimitive()
}

func (l *Lowering) varargsArray(at *resolved.Type, rest []resolved.Expr) string {
	l.deps.Hard(at)
	elems := []string{strconv.Itoa(len(rest))}
	for _, a := range rest {
		elems = append(elems, l.coerce(a, at.Elem))
	}
	return "new " + qualifiedCName(at, true) + "(" + strings.Join(elems, ", ") + ")"
}

// coerce lowers e for a slot of type to, casting when the types differ.
func (l *Lowering) coerce(e resolved.Expr, to *resolved.Type) string {
	s := l.expr(e)
	info := e.Info()
	if to == nil || info.Type == nil || info.Boxing || info.Unboxing {
		return s
	}
	from, to := info.Type.Erased(), to.Erased()
	if from == to || from.Kind == resolved.TypeVar || to.Kind == resolved.TypeVar {
		return s
	}
	l.deps.Hard(from)
	l.deps.Hard(to)
	return "static_cast< " + typeRef(to) + " >(" + s + ")"
}

func (l *Lowering) newExpr(e *resolved.New) string {
	t := e.Class
	if e.Body != nil {
		t = e.Body.Type
		l.enqueue(e.Body)
	}
	l.deps.Use(t, UseValue)
	var args []string
	if t.HasOuterThis() {
		if e.Outer != nil {
			l.deps.Hard(e.Outer.Info().Type)
			args = append(args, l.receiver(e.Outer))
		} else {
			args = append(args, l.this(t.Outer))
		}
	}
	for _, v := range l.closures.Closures(t).Vars() {
		args = append(args, l.capturedValue(v))
	}
	args = append(args, l.argList(e.Ctor, e.Args)...)
	return "(new " + qualifiedCName(t, true) + "(" + strings.Join(args, ", ") + "))"
}

// capturedValue spells v where it is handed to a capturing type.
func (l *Lowering) capturedValue(v *resolved.Variable) string {
	if l.closures.Captures(l.typ, v) {
		return closureName(v)
	}
	return identifier(v.Name)
}

func (l *Lowering) newArray(e *resolved.NewArray) string {
	t := e.Info().Type
	if e.Init != nil {
		return l.arrayInit(t, e.Init.Elems)
	}
	l.deps.Hard(t)
	if len(e.Dims) > 1 {
		l.report("NewArray", map[string]string{"dims": strconv.Itoa(len(e.Dims))})
	}
	dim := "0"
	if len(e.Dims) > 0 {
		dim = l.expr(e.Dims[0])
	}
	return "(new " + qualifiedCName(t, true) + "(" + dim + "))"
}

func (l *Lowering) arrayInit(t *resolved.Type, elems []resolved.Expr) string {
	l.deps.Hard(t)
	parts := []string{strconv.Itoa(len(elems))}
	for _, x := range elems {
		parts = append(parts, l.coerce(x, t.Elem))
	}
	return "(new " + qualifiedCName(t, true) + "(" + strings.Join(parts, ", ") + "))"
}

func (l *Lowering) cast(e *resolved.Cast) string {
	from := e.X.Info().Type
	l.deps.Hard(e.To)
	l.deps.Hard(from)
	op := "dynamic_cast"
	if e.To.IsPrimitive() || from.IsNull() {
		op = "static_cast"
	}
	return op + "< " + typeRef(e.To) + " >(" + l.expr(e.X) + ")"
}

func (l *Lowering) typeLit(t *resolved.Type) string {
	if t.IsPrimitive() {
		wrapper := "java.lang.Void"
		if w, ok := boxTypes[t.Name]; ok {
			wrapper = w
		}
		w := l.universe.Type(wrapper)
		l.deps.Hard(w)
		return qualifiedCName(w, true) + "::TYPE_"
	}
	l.deps.Hard(t)
	return qualifiedCName(t, true) + "::class_()"
}
