package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"j2cgen/resolved"
)

// Registry collects what a generation pass produced. Entries are only ever
// appended.
type Registry struct {
	Implemented []*resolved.Type
	Stubs       []*resolved.Type
	Mains       []*resolved.Type
}

// Sources returns the implementation file paths in generation order.
func (r *Registry) Sources() []string {
	return paths(r.Implemented, implPath)
}

// StubSources returns the native stub file paths in generation order.
func (r *Registry) StubSources() []string {
	return paths(r.Stubs, stubPath)
}

func paths(types []*resolved.Type, fn func(*resolved.Type) string) []string {
	var ps []string
	for _, t := range types {
		ps = append(ps, fn(t))
	}
	return ps
}

// WriteMakefile prints a Makefile building every generated translation
// unit. runtimeDir, when set, adds the C++ runtime to the include path and
// the sources.
func WriteMakefile(w io.Writer, r *Registry, runtimeDir string) error {
	var sb strings.Builder
	flags := "-std=gnu++11 -I."
	if runtimeDir != "" {
		flags += " -I" + filepath.ToSlash(runtimeDir)
	}
	sb.WriteString("CXXFLAGS = " + flags + "\n")
	list := func(name string, srcs []string) {
		sb.WriteString(name + " = \\\n")
		for _, s := range srcs {
			sb.WriteString("    " + s + " \\\n")
		}
		sb.WriteString("\n")
	}
	list("SRCS", r.Sources())
	list("STUB_SRCS", r.StubSources())
	if runtimeDir != "" {
		list("RUNTIME_SRCS", []string{filepath.ToSlash(filepath.Join(runtimeDir, "j2c", "runtime.cpp"))})
	}
	sb.WriteString("OBJS = $(SRCS:.cpp=.o)\n")
	sb.WriteString("STUB_OBJS = $(STUB_SRCS:.cpp=.o)\n")
	all := "$(OBJS) $(STUB_OBJS)"
	if runtimeDir != "" {
		sb.WriteString("RUNTIME_OBJS = $(RUNTIME_SRCS:.cpp=.o)\n")
		all += " $(RUNTIME_OBJS)"
	}
	sb.WriteString("\nall: " + all + "\n\n")
	if mains := r.mainNames(); len(mains) > 0 {
		sb.WriteString("# mains: " + strings.Join(mains, " ") + "\n\n")
	}
	sb.WriteString(".PHONY: all\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Registry) mainNames() []string {
	var names []string
	for _, t := range r.Mains {
		names = append(names, t.Name)
	}
	slices.Sort(names)
	return names
}

// writeMakefile writes <root>/Makefile.
func (d *Driver) writeMakefile() error {
	path := filepath.Join(d.opts.Root, "Makefile")
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer f.Close()
	if err := WriteMakefile(f, d.registry, d.opts.LinkRuntime); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("makefile: %w", err)}
	}
	return nil
}
