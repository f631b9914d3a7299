package compiler

import (
	"errors"

	"j2cgen/resolved"
)

// PassManager runs the driver over every top-level unit of a program and
// writes the build manifest afterwards.
type PassManager struct {
	Units  []*resolved.TypeDecl
	Driver *Driver
}

// order returns the units with superclasses declared in the program ahead
// of their subclasses; ties are broken by name.
func (pm *PassManager) order() []*resolved.TypeDecl {
	byName := make(map[string]*resolved.TypeDecl, len(pm.Units))
	graph := make(map[string][]string, len(pm.Units))
	for _, u := range pm.Units {
		byName[u.Type.Name] = u
		graph[u.Type.Name] = nil
	}
	for _, u := range pm.Units {
		if s := u.Type.Super; s != nil {
			if _, ok := byName[s.Name]; ok && s.Name != u.Type.Name {
				graph[u.Type.Name] = append(graph[u.Type.Name], s.Name)
			}
		}
	}
	names, err := TopologicalSort(graph)
	if err != nil {
		DebugLogPrintf("unit order: %v, keeping input order", err)
		return pm.Units
	}
	ordered := make([]*resolved.TypeDecl, 0, len(names))
	for _, n := range names {
		ordered = append(ordered, byName[n])
	}
	return ordered
}

// RunPasses generates every unit and returns the joined failures. A failed
// unit does not stop the others.
func (pm *PassManager) RunPasses() error {
	var errs []error
	units := pm.order()
	for _, u := range units {
		if err := pm.Driver.Note(u); err != nil {
			DebugLogPrintf("note %s: %v", u.Type.Name, err)
		}
	}
	for _, u := range units {
		DebugLogPrintf("pass: %s", u.Type.Name)
		if err := pm.Driver.Generate(u); err != nil {
			errs = append(errs, err)
		}
	}
	if pm.Driver.opts.Makefile {
		if err := pm.Driver.writeMakefile(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
