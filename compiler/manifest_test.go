package compiler

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"j2cgen/resolved"
)

func TestWriteMakefile(t *testing.T) {
	f := newFixture()
	a := f.class("p.A", nil)
	b := f.inner("p.A$B", a)
	m := f.class("Main", nil)
	r := &Registry{
		Implemented: []*resolved.Type{a, b, m},
		Stubs:       []*resolved.Type{a},
		Mains:       []*resolved.Type{m, a},
	}

	tests := []struct {
		name       string
		runtimeDir string
		want       string
	}{
		{
			name: "without runtime",
			want: "CXXFLAGS = -std=gnu++11 -I.\n" +
				"SRCS = \\\n" +
				"    p/A.cpp \\\n" +
				"    p/A_B.cpp \\\n" +
				"    Main.cpp \\\n" +
				"\n" +
				"STUB_SRCS = \\\n" +
				"    p/A-native.cpp \\\n" +
				"\n" +
				"OBJS = $(SRCS:.cpp=.o)\n" +
				"STUB_OBJS = $(STUB_SRCS:.cpp=.o)\n" +
				"\n" +
				"all: $(OBJS) $(STUB_OBJS)\n" +
				"\n" +
				"# mains: Main p.A\n" +
				"\n" +
				".PHONY: all\n",
		},
		{
			name:       "with runtime",
			runtimeDir: "runtime",
			want: "CXXFLAGS = -std=gnu++11 -I. -Iruntime\n" +
				"SRCS = \\\n" +
				"    p/A.cpp \\\n" +
				"    p/A_B.cpp \\\n" +
				"    Main.cpp \\\n" +
				"\n" +
				"STUB_SRCS = \\\n" +
				"    p/A-native.cpp \\\n" +
				"\n" +
				"RUNTIME_SRCS = \\\n" +
				"    runtime/j2c/runtime.cpp \\\n" +
				"\n" +
				"OBJS = $(SRCS:.cpp=.o)\n" +
				"STUB_OBJS = $(STUB_SRCS:.cpp=.o)\n" +
				"RUNTIME_OBJS = $(RUNTIME_SRCS:.cpp=.o)\n" +
				"\n" +
				"all: $(OBJS) $(STUB_OBJS) $(RUNTIME_OBJS)\n" +
				"\n" +
				"# mains: Main p.A\n" +
				"\n" +
				".PHONY: all\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := WriteMakefile(&out, r, tt.runtimeDir); err != nil {
				t.Fatalf("WriteMakefile() = %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("WriteMakefile():\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestPassOrderAndMakefile(t *testing.T) {
	f := newFixture()
	a := f.class("p.A", nil)
	z := f.class("p.Z", nil)
	b := f.class("p.B", z)
	root := t.TempDir()

	var diag bytes.Buffer
	d := NewDriver(Options{Root: root, Makefile: true}, f.u, NewDiagnostics(&diag))
	pm := &PassManager{
		Units: []*resolved.TypeDecl{
			{Type: b},
			{Type: z},
			{Type: a},
		},
		Driver: d,
	}
	if err := pm.RunPasses(); err != nil {
		t.Fatalf("RunPasses() = %v\n%s", err, diag.String())
	}
	if got, want := typeNames(d.Registry().Implemented), []string{"p.A", "p.Z", "p.B"}; !equalStrings(got, want) {
		t.Errorf("generation order = %v, want %v", got, want)
	}
	makefile := readFile(t, filepath.Join(root, "Makefile"))
	assertContains(t, makefile, "SRCS = \\\n    p/A.cpp \\\n    p/Z.cpp \\\n    p/B.cpp \\\n\n")
	assertNotContains(t, makefile, "# mains:")
}

func TestPassOrderKeepsInputOnCycle(t *testing.T) {
	f := newFixture()
	x := f.class("p.X", nil)
	y := f.class("p.Y", x)
	x.Super = y
	units := []*resolved.TypeDecl{{Type: y}, {Type: x}}
	pm := &PassManager{Units: units}
	got := pm.order()
	if len(got) != 2 || got[0] != units[0] || got[1] != units[1] {
		t.Errorf("order() changed the input order of a cyclic hierarchy")
	}
}

func TestManifestStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenManifestStore(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("OpenManifestStore() = %v", err)
	}
	defer s.Close()

	if id, err := s.LatestRun(ctx); err != nil || id != "" {
		t.Fatalf("LatestRun() on an empty store = %q, %v", id, err)
	}

	f := newFixture()
	a := f.class("p.A", nil)
	b := f.inner("p.A$B", a)
	first, err := s.Record(ctx, &Registry{
		Implemented: []*resolved.Type{a, b},
		Stubs:       []*resolved.Type{a},
		Mains:       []*resolved.Type{a},
	})
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	if id, err := s.LatestRun(ctx); err != nil || id != first {
		t.Errorf("LatestRun() = %q, %v, want %q", id, err, first)
	}

	second, err := s.Record(ctx, &Registry{Implemented: []*resolved.Type{b}})
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	if second == first {
		t.Fatalf("two runs share the id %q", first)
	}

	tests := []struct {
		run, kind string
		want      []string
	}{
		{first, KindImplemented, []string{"p/A.cpp", "p/A_B.cpp"}},
		{first, KindStub, []string{"p/A-native.cpp"}},
		{first, KindMain, []string{"p/A.cpp"}},
		{second, KindImplemented, []string{"p/A_B.cpp"}},
		{second, KindStub, nil},
	}
	for _, tt := range tests {
		got, err := s.Artifacts(ctx, tt.run, tt.kind)
		if err != nil {
			t.Fatalf("Artifacts(%s) = %v", tt.kind, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Artifacts(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
