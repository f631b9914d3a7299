package compiler

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"j2cgen/resolved"
)

// fixture builds resolved trees by hand.
type fixture struct {
	u   *resolved.Universe
	ids int
}

func newFixture() *fixture {
	f := &fixture{u: resolved.NewUniverse()}
	f.u.Type("java.lang.Object")
	f.class("java.lang.String", nil)
	return f
}

func (f *fixture) t(name string) *resolved.Type { return f.u.Type(name) }

func (f *fixture) id(prefix string) string {
	f.ids++
	return prefix + strconv.Itoa(f.ids)
}

func (f *fixture) class(name string, super *resolved.Type) *resolved.Type {
	t := f.u.Type(name)
	t.Kind = resolved.Class
	if super == nil && name != "java.lang.Object" {
		super = f.t("java.lang.Object")
	}
	t.Super = super
	return t
}

// inner declares a nested member class of outer.
func (f *fixture) inner(name string, outer *resolved.Type) *resolved.Type {
	t := f.class(name, nil)
	t.Outer = outer
	return t
}

func (f *fixture) method(owner *resolved.Type, name string, ret *resolved.Type, params ...*resolved.Type) *resolved.Method {
	if ret == nil {
		ret = f.t("void")
	}
	m := &resolved.Method{ID: f.id("m"), Name: name, Owner: owner, Return: ret, Params: params}
	owner.Methods = append(owner.Methods, m)
	return m
}

func (f *fixture) ctor(owner *resolved.Type, params ...*resolved.Type) *resolved.Method {
	m := f.method(owner, "<init>", nil, params...)
	m.Constructor = true
	return m
}

func (f *fixture) local(m *resolved.Method, name string, t *resolved.Type) *resolved.Variable {
	return &resolved.Variable{ID: f.id("v"), Name: name, Type: t, Final: true, Method: m}
}

func (f *fixture) field(owner *resolved.Type, name string, t *resolved.Type) *resolved.Variable {
	v := &resolved.Variable{ID: f.id("f"), Name: name, Type: t, Field: true, Owner: owner}
	owner.Fields = append(owner.Fields, v)
	return v
}

func ident(v *resolved.Variable) *resolved.Name {
	return &resolved.Name{ExprInfo: resolved.ExprInfo{Type: v.Type}, Ident: v.Name, Var: v}
}

func (f *fixture) intLit(v int) *resolved.Literal {
	return &resolved.Literal{ExprInfo: resolved.ExprInfo{Type: f.t("int")}, Kind: resolved.IntLit, Value: strconv.Itoa(v)}
}

func (f *fixture) strLit(s string) *resolved.Literal {
	return &resolved.Literal{ExprInfo: resolved.ExprInfo{Type: f.t("java.lang.String")}, Kind: resolved.StringLit, Value: strconv.Quote(s)}
}

func (f *fixture) typed(t string) resolved.ExprInfo {
	return resolved.ExprInfo{Type: f.t(t)}
}

func methodDecl(m *resolved.Method, params []*resolved.Variable, stmts ...resolved.Stmt) *resolved.MethodDecl {
	return &resolved.MethodDecl{Method: m, Params: params, Body: &resolved.Block{Stmts: stmts}}
}

func localVar(v *resolved.Variable, init resolved.Expr) *resolved.LocalVar {
	return &resolved.LocalVar{Vars: []*resolved.VarFrag{{Var: v, Init: init}}}
}

// lowering returns a Lowering for decl. The closures of decl are collected
// unless closures is given.
func (f *fixture) lowering(decl *resolved.TypeDecl, closures *ClosureCollector) (*Lowering, *bytes.Buffer, *[]*resolved.TypeDecl) {
	if closures == nil {
		closures = NewClosureCollector()
		closures.Collect(decl)
	}
	var diagOut bytes.Buffer
	var queued []*resolved.TypeDecl
	statics := NewStaticInits()
	statics.Note(decl)
	u := newUnit(decl, closures.Closures(decl.Type), statics)
	l := newLowering(u, f.u, closures, statics, NewDiagnostics(&diagOut), func(d *resolved.TypeDecl) {
		queued = append(queued, d)
	})
	return l, &diagOut, &queued
}

// lowerStmts prints stmts as the body of a method of typ.
func (f *fixture) lowerStmts(t *testing.T, typ *resolved.Type, stmts ...resolved.Stmt) (string, *Lowering) {
	t.Helper()
	m := f.method(typ, "run", nil)
	decl := &resolved.TypeDecl{Type: typ, Body: []resolved.Decl{methodDecl(m, nil, stmts...)}}
	l, _, _ := f.lowering(decl, nil)
	l.method = m
	l.stmts(stmts)
	return l.p.String(), l
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func assertNotContains(t *testing.T, got string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(got, u) {
			t.Errorf("output unexpectedly contains %q:\n%s", u, got)
		}
	}
}
