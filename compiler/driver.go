package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"j2cgen/resolved"
)

type Options struct {
	// Root is the output directory every artifact path is relative to.
	Root string
	// Makefile writes <Root>/Makefile after the pass.
	Makefile bool
	// LinkRuntime is the directory of the C++ runtime sources, added to
	// the Makefile when set.
	LinkRuntime string
}

// Driver generates the artifacts of resolved top-level types. Types nested
// in them are generated from a worklist as they are discovered.
type Driver struct {
	opts     Options
	universe *resolved.Universe
	diag     *Diagnostics
	registry *Registry
	statics  *StaticInits
	written  int64
}

func NewDriver(opts Options, universe *resolved.Universe, diag *Diagnostics) *Driver {
	return &Driver{opts: opts, universe: universe, diag: diag, registry: &Registry{}, statics: NewStaticInits()}
}

func (d *Driver) Registry() *Registry { return d.registry }

// Written returns the number of bytes written so far.
func (d *Driver) Written() int64 { return d.written }

// Note records the static initialization of top and the types inside it.
// Units noted before generation trigger their initialization when other
// units read their static fields.
func (d *Driver) Note(top *resolved.TypeDecl) error {
	return guard(top.Type.Name, func() { d.statics.Note(top) })
}

// Generate writes the artifacts of top and every type declared inside it.
// A failing type is reported and skipped; the others are still generated.
func (d *Driver) Generate(top *resolved.TypeDecl) error {
	closures := NewClosureCollector()
	err := guard(top.Type.Name, func() {
		d.statics.Note(top)
		closures.Collect(top)
	})
	if err != nil {
		f := &TypeFailure{Type: top.Type.Name, Err: err}
		d.diag.Failure(f)
		return f
	}

	var errs []error
	queue := []*resolved.TypeDecl{top}
	seen := map[*resolved.TypeDecl]bool{top: true}
	enqueue := func(decl *resolved.TypeDecl) {
		if decl != nil && !seen[decl] {
			seen[decl] = true
			queue = append(queue, decl)
		}
	}
	for len(queue) > 0 {
		decl := queue[0]
		queue = queue[1:]
		if err := d.generateType(decl, closures, enqueue); err != nil {
			f := &TypeFailure{Type: decl.Type.Name, Err: err}
			d.diag.Failure(f)
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}

// guard runs fn and turns an invariant violation into an error. Any other
// panic is reported as a violation of typ, with the stack in debug output.
func guard(typ string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InvariantError)
			if !ok {
				DebugLogPrintf("%s: panic: %v\n%s", typ, r, debug.Stack())
				ie = &InvariantError{Msg: fmt.Sprint(r)}
			}
			if ie.Type == "" {
				ie.Type = typ
			}
			err = ie
		}
	}()
	fn()
	return nil
}

func (d *Driver) generateType(decl *resolved.TypeDecl, closures *ClosureCollector, enqueue func(*resolved.TypeDecl)) error {
	t := decl.Type
	DebugLogPrintf("generating %s", t.Name)
	var unit *Unit
	var impl, header, stub string
	err := guard(t.Name, func() {
		unit = newUnit(decl, closures.Closures(t), d.statics)
		l := newLowering(unit, d.universe, closures, d.statics, d.diag, enqueue)
		l.lowerBody()
		NewConstructorSynthesizer(unit, closures).Synthesize()
		impl = d.definition(unit, l)
		header = NewHeaderWriter(unit, d.universe).Write()
		if unit.HasNatives {
			stub = writeStub(unit)
		}
	})
	if err != nil {
		return err
	}

	if err := d.write(includePath(t), header); err != nil {
		return err
	}
	if err := d.write(implPath(t), impl); err != nil {
		return err
	}
	d.registry.Implemented = append(d.registry.Implemented, t)
	if unit.Main {
		d.registry.Mains = append(d.registry.Mains, t)
	}
	if stub != "" {
		if err := d.write(stubPath(t), stub); err != nil {
			return err
		}
		d.registry.Stubs = append(d.registry.Stubs, t)
	}
	return nil
}

func (d *Driver) write(rel, content string) error {
	path := filepath.Join(d.opts.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	d.written += int64(len(content))
	DebugLogPrintf("wrote %s (%d bytes)", path, len(content))
	return nil
}

// definition assembles the implementation artifact of a lowered unit.
func (d *Driver) definition(u *Unit, l *Lowering) string {
	t := u.Type
	// Constructors and the own header are needed in full.
	u.Deps.Use(t, UseValue)
	for _, c := range u.Ctors {
		for _, p := range c.Params {
			u.Deps.Soft(p.Type)
		}
	}
	if t.Super != nil {
		u.Deps.Use(t.Super, UseBase)
	}
	usings := l.usings(u.Decl.Imports)

	var sb strings.Builder
	sb.WriteString("// Generated from " + t.Name + "\n\n")
	for _, inc := range u.Deps.Includes() {
		sb.WriteString(inc + "\n")
	}
	if u.NeedsMath {
		sb.WriteString("#include <cmath>\n")
	}
	sb.WriteString(runtimeInclude + "\n\n")
	if fwd := u.Deps.ForwardDecls(); len(fwd) > 0 {
		sb.WriteString(strings.Join(fwd, "\n") + "\n\n")
	}
	sb.WriteString("using namespace java::lang;\n")
	for _, line := range usings {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
	if u.NeedsFinally {
		sb.WriteString(finallyHelper)
	}
	if u.NeedsSynchronized {
		sb.WriteString(synchronizedHelper)
	}

	qname := qualifiedCName(t, false)
	if u.HasClinit {
		fmt.Fprintf(&sb, "void %s::clinit_()\n{\n", qname)
		sb.WriteString("    static bool in_cl_init = false;\n")
		sb.WriteString("    if (in_cl_init) return;\n")
		sb.WriteString("    in_cl_init = true;\n")
		if s := t.Super; s != nil && d.statics.Has(s) {
			fmt.Fprintf(&sb, "    %s::clinit_();\n", qualifiedCName(s, true))
		}
		sb.WriteString(u.clinit.String())
		sb.WriteString("}\n\n")
		fmt.Fprintf(&sb, staticInitializer, qualifiedCName(t, true))
	}
	if u.HasInit {
		fmt.Fprintf(&sb, "void %s::init_()\n{\n", qname)
		sb.WriteString(u.init.String())
		sb.WriteString("}\n\n")
	}
	p := newPrinter()
	for _, c := range u.Ctors {
		c.write(p, t)
	}
	sb.WriteString(p.String())
	sb.WriteString(strings.TrimPrefix(u.body, "\n"))
	return sb.String()
}

// staticInitializer runs clinit_ during static initialization of the
// program, like a class loaded at startup.
const staticInitializer = `namespace {
    struct clinit_trigger {
        clinit_trigger() { %s::clinit_(); }
    } clinit_trigger_;
}

`

const finallyHelper = `namespace {
    template<typename F> struct finally_ {
        finally_(F f) : f(f), moved(false) { }
        finally_(finally_ &&x) : f(x.f), moved(false) { x.moved = true; }
        ~finally_() { if(!moved) f(); }
    private:
        finally_(const finally_&);
        finally_& operator=(const finally_&);
        F f;
        bool moved;
    };
    template<typename F> finally_<F> finally(F f) { return finally_<F>(f); }
}

`

const synchronizedHelper = `namespace {
    struct synchronized {
        synchronized(::java::lang::Object *o) : o(o) { ::lock(o); }
        ~synchronized() { ::unlock(o); }
    private:
        synchronized(const synchronized&);
        synchronized& operator=(const synchronized&);
        ::java::lang::Object *o;
    };
}

`
