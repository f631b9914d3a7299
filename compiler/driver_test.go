package compiler

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"j2cgen/resolved"
)

// sampleProgram builds a top-level class with a member class, a native
// method, a main method and a try/finally in two methods.
func sampleProgram(f *fixture) *resolved.TypeDecl {
	a := f.class("p.A", nil)
	list := f.class("java.util.List", nil)
	strs := f.u.ArrayOf(f.t("java.lang.String"))

	items := f.field(a, "items", list)
	main := f.method(a, "main", nil, strs)
	main.Static = true
	args := f.local(main, "args", strs)
	poke := f.method(a, "poke", f.t("int"), f.t("int"))
	poke.Native = true
	work := f.method(a, "work", nil)
	other := f.method(a, "other", nil)

	b := f.inner("p.A$B", a)
	size := f.field(b, "size", f.t("int"))
	bDecl := &resolved.TypeDecl{Type: b, Body: []resolved.Decl{
		&resolved.FieldDecl{Vars: []*resolved.VarFrag{{Var: size, Init: f.intLit(1)}}},
	}}

	tryFinally := func() *resolved.Try {
		return &resolved.Try{Body: &resolved.Block{}, Finally: &resolved.Block{Stmts: []resolved.Stmt{&resolved.Empty{}}}}
	}
	return &resolved.TypeDecl{
		Type: a,
		Imports: []resolved.Import{
			{Name: "java.util.List", Type: list},
			{Name: "java.io", OnDemand: true, Package: true},
			{Name: "java.lang.Math.max", Static: true},
		},
		Body: []resolved.Decl{
			&resolved.FieldDecl{Vars: []*resolved.VarFrag{{Var: items}}},
			methodDecl(main, []*resolved.Variable{args}),
			&resolved.MethodDecl{Method: poke},
			methodDecl(work, nil, tryFinally()),
			methodDecl(other, nil, tryFinally()),
			bDecl,
		},
	}
}

func runDriver(t *testing.T, f *fixture, root string, top *resolved.TypeDecl) (*Driver, *bytes.Buffer, error) {
	t.Helper()
	var diag bytes.Buffer
	d := NewDriver(Options{Root: root}, f.u, NewDiagnostics(&diag))
	err := d.Generate(top)
	return d, &diag, err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestGenerateArtifacts(t *testing.T) {
	f := newFixture()
	root := t.TempDir()
	d, diag, err := runDriver(t, f, root, sampleProgram(f))
	if err != nil {
		t.Fatalf("Generate() = %v\n%s", err, diag)
	}

	header := readFile(t, filepath.Join(root, "p", "A.h"))
	assertContains(t, header,
		"// Generated from p.A\n",
		"#pragma once\n",
		"#include <java/lang/Object.h>\n",
		"#include <java/util/List.h>\n",
		"#include <j2c/runtime.h>\n",
		"namespace p {\nclass A\n    : public virtual ::java::lang::Object\n{\npublic:\n",
		"    typedef ::java::lang::Object super;\n",
		"    A();\n",
		"    static void main(::java::lang::StringArray* args);\n",
		"    virtual int32_t poke(int32_t a0);\n",
		"    ::java::util::List* items;\n",
	)

	impl := readFile(t, filepath.Join(root, "p", "A.cpp"))
	assertContains(t, impl,
		"#include <p/A.h>\n",
		"using namespace java::lang;\n",
		"using ::java::util::List;\n",
		"namespace java { namespace io { } }\nusing namespace ::java::io;\n",
		"p::A::A()\n    : items()\n{\n}\n",
		"void p::A::main(::java::lang::StringArray* args)\n{\n}\n",
	)
	assertNotContains(t, impl, "Math")
	if n := strings.Count(impl, "template<typename F> struct finally_"); n != 1 {
		t.Errorf("finally helper emitted %d times, want once", n)
	}

	stub := readFile(t, filepath.Join(root, "p", "A-native.cpp"))
	assertContains(t, stub,
		"#include <p/A.h>\n",
		"int32_t p::A::poke(int32_t a0)\n{ /* native */\n",
		"    unimplemented_(u\"int32_t p::A::poke(int32_t a0)\");\n",
		"    return 0;\n",
	)

	nested := readFile(t, filepath.Join(root, "p", "A_B.cpp"))
	assertContains(t, nested,
		"void p::A_B::init_()\n{\n    size = 1;\n}\n",
		"p::A_B::A_B(::p::A* A_this)\n    : A_this(A_this)\n    , size()\n{\n    init_();\n}\n",
	)

	reg := d.Registry()
	if got := typeNames(reg.Implemented); !equalStrings(got, []string{"p.A", "p.A$B"}) {
		t.Errorf("implemented = %v", got)
	}
	if got := typeNames(reg.Stubs); !equalStrings(got, []string{"p.A"}) {
		t.Errorf("stubs = %v", got)
	}
	if got := typeNames(reg.Mains); !equalStrings(got, []string{"p.A"}) {
		t.Errorf("mains = %v", got)
	}
	if d.Written() == 0 {
		t.Errorf("no bytes accounted for")
	}
}

func typeNames(types []*resolved.Type) []string {
	var names []string
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	return strings.Join(a, "\x00") == strings.Join(b, "\x00")
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[rel] = readFile(t, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return files
}

func TestGenerateIsDeterministic(t *testing.T) {
	var runs []map[string]string
	for i := 0; i < 2; i++ {
		f := newFixture()
		root := t.TempDir()
		if _, diag, err := runDriver(t, f, root, sampleProgram(f)); err != nil {
			t.Fatalf("Generate() = %v\n%s", err, diag)
		}
		runs = append(runs, snapshot(t, root))
	}
	if len(runs[0]) != len(runs[1]) {
		t.Fatalf("runs produced %d and %d files", len(runs[0]), len(runs[1]))
	}
	for name, content := range runs[0] {
		if runs[1][name] != content {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestFailingTypeIsIsolated(t *testing.T) {
	f := newFixture()
	a := f.class("p.A", nil)
	str := f.t("java.lang.String")

	bad := f.inner("p.A$Bad", a)
	m := f.method(bad, "m", str)
	broken := &resolved.Return{X: &resolved.Literal{ExprInfo: resolved.ExprInfo{Type: str, Boxing: true}, Kind: resolved.StringLit, Value: `"x"`}}
	badDecl := &resolved.TypeDecl{Type: bad, Body: []resolved.Decl{methodDecl(m, nil, broken)}}

	good := f.inner("p.A$Good", a)
	goodDecl := &resolved.TypeDecl{Type: good}

	top := &resolved.TypeDecl{Type: a, Body: []resolved.Decl{badDecl, goodDecl}}
	root := t.TempDir()
	d, diag, err := runDriver(t, f, root, top)
	if err == nil {
		t.Fatalf("Generate() succeeded, want the failure of p.A$Bad")
	}
	var failure *TypeFailure
	if !errors.As(err, &failure) || failure.Type != "p.A$Bad" {
		t.Fatalf("Generate() = %v, want a failure of p.A$Bad", err)
	}
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Errorf("failure cause = %v, want an invariant error", failure.Err)
	}
	assertContains(t, diag.String(), "error: p.A$Bad")

	for _, name := range []string{"A.h", "A.cpp", "A_Good.h", "A_Good.cpp"} {
		if _, err := os.Stat(filepath.Join(root, "p", name)); err != nil {
			t.Errorf("%s was not generated: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "p", "A_Bad.cpp")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("failed type left an artifact behind: %v", err)
	}
	if got := typeNames(d.Registry().Implemented); !equalStrings(got, []string{"p.A", "p.A$Good"}) {
		t.Errorf("implemented = %v", got)
	}
}

func TestWriteErrorDoesNotStopThePass(t *testing.T) {
	f := newFixture()
	root := t.TempDir()
	// A file where the package directory should go.
	if err := os.WriteFile(filepath.Join(root, "p"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	var diag bytes.Buffer
	d := NewDriver(Options{Root: root}, f.u, NewDiagnostics(&diag))
	err := d.Generate(&resolved.TypeDecl{Type: f.class("p.A", nil)})
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("Generate() = %v, want a write error", err)
	}
	if err := d.Generate(&resolved.TypeDecl{Type: f.class("q.B", nil)}); err != nil {
		t.Errorf("Generate(q.B) = %v", err)
	}
	if got := typeNames(d.Registry().Implemented); !equalStrings(got, []string{"q.B"}) {
		t.Errorf("implemented = %v", got)
	}
}

func TestEnumConstants(t *testing.T) {
	f := newFixture()
	color := f.t("p.Color")
	color.Kind = resolved.Enum
	color.Super = f.class("java.lang.Enum", nil)
	red := &resolved.Variable{ID: "red", Name: "RED", Type: color, Field: true, Static: true, Final: true, Owner: color}
	green := &resolved.Variable{ID: "green", Name: "GREEN", Type: color, Field: true, Static: true, Final: true, Owner: color}
	body := &resolved.TypeDecl{Type: f.inner("p.Color$1", color)}
	decl := &resolved.TypeDecl{Type: color, Constants: []*resolved.EnumConstant{
		{Var: red},
		{Var: green, Body: body},
	}}
	root := t.TempDir()
	_, diag, err := runDriver(t, f, root, decl)
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	impl := readFile(t, filepath.Join(root, "p", "Color.cpp"))
	assertContains(t, impl,
		"::p::Color* p::Color::RED;\n",
		"    RED = new ::p::Color();\n",
		"    GREEN = new ::p::Color();\n",
		"static bool in_cl_init = false;",
	)
	header := readFile(t, filepath.Join(root, "p", "Color.h"))
	assertContains(t, header, "    static void clinit_();\n", "    static ::p::Color* RED;\n")
	assertContains(t, diag.String(), "unsupported: EnumConstantBody --> p.Color (constant=GREEN)")
}

func TestDiagnosticsColor(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnostics(&out)
	d.Unsupported(Construct{Kind: "Lambda", Context: "p.A.m"})
	d.SetColor(true)
	d.Unsupported(Construct{Kind: "Lambda", Context: "p.A.m", Attrs: map[string]string{"b": "2", "a": "1"}})
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if lines[0] != "unsupported: Lambda --> p.A.m" {
		t.Errorf("plain line = %q", lines[0])
	}
	if !strings.Contains(lines[1], ansiYellow) || !strings.HasSuffix(lines[1], " p.A.m (a=1:b=2)") {
		t.Errorf("colored line = %q", lines[1])
	}
	if len(d.Constructs()) != 2 {
		t.Errorf("constructs = %d, want 2", len(d.Constructs()))
	}
}

func TestStaticInitializationAcrossTypes(t *testing.T) {
	f := newFixture()
	color := f.t("p.Color")
	color.Kind = resolved.Enum
	color.Super = f.class("java.lang.Enum", nil)
	red := &resolved.Variable{ID: "red", Name: "RED", Type: color, Field: true, Static: true, Final: true, Owner: color}
	colorDecl := &resolved.TypeDecl{Type: color, Constants: []*resolved.EnumConstant{{Var: red}}}

	base := f.class("p.Base", nil)
	count := f.field(base, "count", f.t("int"))
	count.Static = true
	limit := f.field(base, "LIMIT", f.t("int"))
	limit.Static, limit.Final, limit.Const = true, true, "3"
	baseDecl := &resolved.TypeDecl{Type: base, Body: []resolved.Decl{
		&resolved.FieldDecl{Static: true, Vars: []*resolved.VarFrag{{Var: count, Init: f.intLit(1)}}},
		&resolved.FieldDecl{Static: true, Vars: []*resolved.VarFrag{{Var: limit, Init: f.intLit(3)}}},
	}}
	sub := f.class("p.Sub", base)
	subDecl := &resolved.TypeDecl{Type: sub}

	user := f.class("p.User", nil)
	pick := f.method(user, "pick", color)
	limitOf := f.method(user, "limitOf", f.t("int"))
	qualified := func(owner *resolved.Type, v *resolved.Variable) *resolved.Name {
		return &resolved.Name{ExprInfo: resolved.ExprInfo{Type: v.Type}, Ident: v.Name, Var: v,
			Qualifier: &resolved.Name{Ident: owner.BinaryName(), Ref: owner}}
	}
	userDecl := &resolved.TypeDecl{Type: user, Body: []resolved.Decl{
		methodDecl(pick, nil, &resolved.Return{X: qualified(color, red)}),
		methodDecl(limitOf, nil, &resolved.Return{X: qualified(base, limit)}),
	}}

	root := t.TempDir()
	var diag bytes.Buffer
	d := NewDriver(Options{Root: root}, f.u, NewDiagnostics(&diag))
	pm := &PassManager{Units: []*resolved.TypeDecl{userDecl, subDecl, colorDecl, baseDecl}, Driver: d}
	if err := pm.RunPasses(); err != nil {
		t.Fatalf("RunPasses() = %v\n%s", err, diag.String())
	}

	tests := []struct {
		file    string
		want    []string
		missing []string
	}{
		{
			file: "User.cpp",
			want: []string{
				"    return (::p::Color::clinit_(), ::p::Color::RED);\n",
				"    return ::p::Base::LIMIT;\n",
			},
			missing: []string{"p::User::clinit_", "clinit_trigger"},
		},
		{
			file: "Color.cpp",
			want: []string{
				"    RED = new ::p::Color();\n",
				"namespace {\n    struct clinit_trigger {\n        clinit_trigger() { ::p::Color::clinit_(); }\n    } clinit_trigger_;\n}\n",
			},
		},
		{
			file: "Sub.cpp",
			want: []string{
				"void p::Sub::clinit_()\n{\n    static bool in_cl_init = false;\n    if (in_cl_init) return;\n    in_cl_init = true;\n    ::p::Base::clinit_();\n}\n",
			},
		},
		{
			file: "Sub.h",
			want: []string{"    static void clinit_();\n"},
		},
		{
			file:    "Base.cpp",
			want:    []string{"    count = 1;\n"},
			missing: []string{"::java::lang::Object::clinit_"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := readFile(t, filepath.Join(root, "p", tt.file))
			assertContains(t, got, tt.want...)
			assertNotContains(t, got, tt.missing...)
		})
	}
}

func TestPanicIsIsolatedToItsType(t *testing.T) {
	f := newFixture()
	a := f.class("p.A", nil)
	bad := f.inner("p.A$Bad", a)
	m := f.method(bad, "m", nil)
	dangling := &resolved.Variable{ID: "v404", Method: m}
	badDecl := &resolved.TypeDecl{Type: bad, Body: []resolved.Decl{methodDecl(m, nil, localVar(dangling, nil))}}
	good := f.inner("p.A$Good", a)
	top := &resolved.TypeDecl{Type: a, Body: []resolved.Decl{badDecl, &resolved.TypeDecl{Type: good}}}

	root := t.TempDir()
	d, diag, err := runDriver(t, f, root, top)
	var failure *TypeFailure
	if !errors.As(err, &failure) || failure.Type != "p.A$Bad" {
		t.Fatalf("Generate() = %v, want a failure of p.A$Bad", err)
	}
	var ie *InvariantError
	if !errors.As(err, &ie) || ie.Type != "p.A$Bad" {
		t.Errorf("failure cause = %v, want an invariant error of p.A$Bad", failure.Err)
	}
	assertContains(t, diag.String(), "error: p.A$Bad")
	if got := typeNames(d.Registry().Implemented); !equalStrings(got, []string{"p.A", "p.A$Good"}) {
		t.Errorf("implemented = %v", got)
	}
}
