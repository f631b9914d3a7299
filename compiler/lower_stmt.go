package compiler

import (
	"strconv"
	"strings"

	"j2cgen/resolved"
)

func (l *Lowering) stmts(list []resolved.Stmt) {
	for _, s := range list {
		l.stmt(s)
	}
}

func (l *Lowering) stmt(s resolved.Stmt) {
	switch s := s.(type) {
	case *resolved.Block:
		l.block(s)
	case *resolved.LocalVar:
		l.localVar(s)
	case *resolved.LocalType:
		l.enqueue(s.Decl)
	case *resolved.ExprStmt:
		l.p.printlni(l.expr(s.X), ";")
	case *resolved.If:
		l.p.printi()
		l.ifChain(s)
		l.p.println()
	case *resolved.While:
		l.while(s, "")
	case *resolved.DoWhile:
		l.doWhile(s, "")
	case *resolved.For:
		l.forStmt(s, "")
	case *resolved.ForEach:
		l.forEach(s, "")
	case *resolved.Labeled:
		l.labeled(s)
	case *resolved.Break:
		if s.Label != "" {
			l.p.printlni("goto ", identifier(s.Label), "_break;")
		} else {
			l.p.printlni("break;")
		}
	case *resolved.Continue:
		if s.Label != "" {
			l.p.printlni("goto ", identifier(s.Label), "_cont;")
		} else {
			l.p.printlni("continue;")
		}
	case *resolved.Return:
		if s.X == nil {
			l.p.printlni("return;")
			return
		}
		l.deps.Hard(s.X.Info().Type)
		l.p.printlni("return ", l.expr(s.X), ";")
	case *resolved.Throw:
		l.deps.Hard(s.X.Info().Type)
		l.p.printlni("throw ", l.expr(s.X), ";")
	case *resolved.Try:
		l.try(s)
	case *resolved.Switch:
		l.switchStmt(s)
	case *resolved.Synchronized:
		l.deps.Hard(s.Lock.Info().Type)
		l.p.printlni("{")
		l.p.indent++
		l.p.printlni(l.synchronizedGuard(l.expr(s.Lock)))
		l.stmts(s.Body.Stmts)
		l.p.indent--
		l.p.printlni("}")
	case *resolved.CtorCall:
		target := "ctor"
		if s.Super {
			target = "super::ctor"
		}
		l.p.printlni(target, "(", strings.Join(l.argList(s.Method, s.Args), ", "), ");")
	case *resolved.Empty:
		l.p.printlni(";")
	case *resolved.Case:
		invariantf(l.typ.Name, "case label outside of a switch in %s", l.context())
	case *resolved.Unsupported:
		l.p.printlni(l.unsupported(s.Kind))
	}
}

func (l *Lowering) block(b *resolved.Block) {
	l.p.printlni("{")
	l.p.indent++
	l.stmts(b.Stmts)
	l.p.indent--
	l.p.printlni("}")
}

// bracedFunc prints a brace-enclosed block continuing the current line and
// leaves the line open after the closing brace.
func (l *Lowering) bracedFunc(fn func()) {
	l.p.println("{")
	l.p.indent++
	fn()
	l.p.indent--
	l.p.printi("}")
}

// braced prints s as a block.
func (l *Lowering) braced(s resolved.Stmt) {
	l.bracedFunc(func() { l.inline(s) })
}

// inline prints the statements of s without braces of its own.
func (l *Lowering) inline(s resolved.Stmt) {
	if b, ok := s.(*resolved.Block); ok {
		l.stmts(b.Stmts)
	} else if s != nil {
		l.stmt(s)
	}
}

// loopBody prints the body of a loop after the lines in head. The body of a
// labeled loop is nested in a block of its own and followed by the continue
// target, so a jump to the target never crosses a declaration.
func (l *Lowering) loopBody(s resolved.Stmt, label string, head ...string) {
	l.bracedFunc(func() {
		for _, line := range head {
			l.p.printlni(line)
		}
		if label == "" {
			l.inline(s)
			return
		}
		l.p.printi()
		l.braced(s)
		l.p.println()
		l.p.printlni(identifier(label), "_cont:;")
	})
}

func (l *Lowering) ifChain(s *resolved.If) {
	l.p.print("if (", l.expr(s.Cond), ") ")
	l.braced(s.Then)
	switch e := s.Else.(type) {
	case nil:
	case *resolved.If:
		l.p.print(" else ")
		l.ifChain(e)
	default:
		l.p.print(" else ")
		l.braced(e)
	}
}

func (l *Lowering) localVar(s *resolved.LocalVar) {
	for _, f := range s.Vars {
		l.deps.Soft(f.Var.Type)
		l.p.printi(typeRef(f.Var.Type), " ", identifier(f.Var.Name))
		if f.Init != nil {
			l.deps.Hard(f.Init.Info().Type)
			l.p.print(" = ", l.expr(f.Init))
		}
		l.p.println(";")
	}
}

func (l *Lowering) breakTarget(label string) {
	if label != "" {
		l.p.printlni(identifier(label), "_break:;")
	}
}

func (l *Lowering) labeled(s *resolved.Labeled) {
	switch b := s.Body.(type) {
	case *resolved.While:
		l.while(b, s.Label)
	case *resolved.DoWhile:
		l.doWhile(b, s.Label)
	case *resolved.For:
		l.forStmt(b, s.Label)
	case *resolved.ForEach:
		l.forEach(b, s.Label)
	default:
		l.stmt(s.Body)
		l.breakTarget(s.Label)
	}
}

func (l *Lowering) while(s *resolved.While, label string) {
	l.p.printi("while (", l.expr(s.Cond), ") ")
	l.loopBody(s.Body, label)
	l.p.println()
	l.breakTarget(label)
}

func (l *Lowering) doWhile(s *resolved.DoWhile, label string) {
	l.p.printi("do ")
	l.loopBody(s.Body, label)
	l.p.println(" while (", l.expr(s.Cond), ");")
	l.breakTarget(label)
}

func (l *Lowering) forStmt(s *resolved.For, label string) {
	var cond string
	if s.Cond != nil {
		cond = l.expr(s.Cond)
	}
	var updates []string
	for _, u := range s.Update {
		updates = append(updates, l.expr(u))
	}
	l.p.printi("for (", l.forInit(s.Init), "; ", cond, "; ", strings.Join(updates, ", "), ") ")
	l.loopBody(s.Body, label)
	l.p.println()
	l.breakTarget(label)
}

func (l *Lowering) forInit(init []resolved.Node) string {
	var parts []string
	for _, n := range init {
		switch n := n.(type) {
		case *resolved.LocalVar:
			var frags []string
			for _, f := range n.Vars {
				l.deps.Soft(f.Var.Type)
				frag := ref(f.Var.Type) + identifier(f.Var.Name)
				if f.Init != nil {
					l.deps.Hard(f.Init.Info().Type)
					frag += " = " + l.expr(f.Init)
				}
				frags = append(frags, frag)
			}
			if len(frags) > 0 {
				parts = append(parts, qualifiedCName(n.Vars[0].Var.Type, true)+" "+strings.Join(frags, ", "))
			}
		case resolved.Expr:
			parts = append(parts, l.expr(n))
		}
	}
	return strings.Join(parts, ", ")
}

func (l *Lowering) forEach(s *resolved.ForEach, label string) {
	xt := s.X.Info().Type
	v := s.Var
	l.deps.Hard(xt)
	l.deps.Soft(v.Type)
	l.p.printlni("{")
	l.p.indent++
	var value string
	if xt.IsArray() {
		l.p.printlni("auto _a = ", l.expr(s.X), ";")
		l.p.printi("for (int32_t _i = 0; _i < _a->length_; ++_i) ")
		value = l.element("(*_a)[_i]", xt.Elem, v.Type)
	} else {
		it := l.universe.Type("java.util.Iterator")
		if m := xt.LookupMethod("iterator", 0); m != nil && m.Return != nil {
			it = m.Return
		}
		l.deps.Hard(it)
		elem := s.Elem
		if elem == nil {
			elem = l.universe.Type("java.lang.Object")
		}
		l.p.printi("for (auto _i = ", l.receiver(s.X), "->iterator(); _i->hasNext(); ) ")
		value = l.element("_i->next()", elem, v.Type)
	}
	l.loopBody(s.Body, label, typeRef(v.Type)+" "+identifier(v.Name)+" = "+value+";")
	l.p.println()
	l.p.indent--
	l.p.printlni("}")
	l.breakTarget(label)
}

// element converts a loop element of type from to the declared loop
// variable type to.
func (l *Lowering) element(s string, from, to *resolved.Type) string {
	from, to = from.Erased(), to.Erased()
	switch {
	case from == to:
		return s
	case to.IsPrimitive() && !from.IsPrimitive():
		w := l.universe.Type(boxTypes[to.Name])
		l.deps.Hard(w)
		if from != w {
			s = "dynamic_cast< " + typeRef(w) + " >(" + s + ")"
		}
		return s + "->" + to.Name + "Value()"
	case from.IsPrimitive() && !to.IsPrimitive():
		w := l.universe.Type(boxTypes[from.Name])
		l.deps.Hard(w)
		return qualifiedCName(w, true) + "::valueOf(" + s + ")"
	case to.IsPrimitive() || from.IsSubtypeOf(to):
		l.deps.Hard(from)
		return s
	}
	l.deps.Hard(to)
	return "dynamic_cast< " + typeRef(to) + " >(" + s + ")"
}

func (l *Lowering) try(s *resolved.Try) {
	l.p.printlni("{")
	l.p.indent++
	if s.Finally != nil {
		l.p.printi("auto ", l.finallyGuard(), " = finally([&] ")
		l.braced(s.Finally)
		l.p.println(");")
	}
	body := func() {
		for _, r := range s.Resources {
			l.localVar(r)
			for _, f := range r.Vars {
				name := identifier(f.Var.Name)
				l.deps.Hard(f.Var.Type)
				l.p.printlni("auto ", l.finallyGuard(), " = finally([&] { if (", name, " != nullptr) ", name, "->close(); });")
			}
		}
		l.stmts(s.Body.Stmts)
	}
	if len(s.Catches) == 0 {
		body()
	} else {
		l.p.printi("try ")
		l.bracedFunc(body)
		for _, c := range s.Catches {
			for _, t := range c.Types {
				l.deps.Hard(t)
				l.p.print(" catch (", typeRef(t), " ", identifier(c.Param.Name), ") ")
				l.braced(c.Body)
			}
		}
		l.p.println()
	}
	l.p.indent--
	l.p.printlni("}")
}

func (l *Lowering) finallyGuard() string {
	l.unit.NeedsFinally = true
	n := l.finallyCount
	l.finallyCount++
	return "finally" + strconv.Itoa(n)
}

// switchStmt lowers a switch. Declarations in the switch body are hoisted
// into a block around it; their initializers stay in place as assignments.
// A switch on an enum or a string is skipped.
func (l *Lowering) switchStmt(s *resolved.Switch) {
	tag := s.Tag.Info()
	if tag.Type.IsReference() && !tag.Unboxing {
		l.report("Switch", map[string]string{"tag": tag.Type.Name})
		l.p.printlni("/* unsupported: Switch */")
		return
	}
	var hoisted []*resolved.VarFrag
	for _, st := range s.Body {
		if lv, ok := st.(*resolved.LocalVar); ok {
			hoisted = append(hoisted, lv.Vars...)
		}
	}
	if len(hoisted) > 0 {
		l.p.printlni("{")
		l.p.indent++
		for _, f := range hoisted {
			l.deps.Soft(f.Var.Type)
			l.p.printlni(typeRef(f.Var.Type), " ", identifier(f.Var.Name), ";")
		}
	}
	l.p.printlni("switch (", l.expr(s.Tag), ") {")
	for _, st := range s.Body {
		switch st := st.(type) {
		case *resolved.Case:
			if st.Default {
				l.p.printlni("default:")
			}
			for _, v := range st.Values {
				l.p.printlni("case ", l.expr(v), ":")
			}
		case *resolved.LocalVar:
			l.p.indent++
			for _, f := range st.Vars {
				if f.Init != nil {
					l.deps.Hard(f.Init.Info().Type)
					l.p.printlni(identifier(f.Var.Name), " = ", l.expr(f.Init), ";")
				}
			}
			l.p.indent--
		default:
			l.p.indent++
			l.stmt(st)
			l.p.indent--
		}
	}
	if n := len(s.Body); n > 0 {
		if _, ok := s.Body[n-1].(*resolved.Case); ok {
			// a label must precede a statement
			l.p.indent++
			l.p.printlni(";")
			l.p.indent--
		}
	}
	l.p.printlni("}")
	if len(hoisted) > 0 {
		l.p.indent--
		l.p.printlni("}")
	}
}
