package compiler

import (
	"slices"
	"strings"

	"j2cgen/resolved"
)

// Strength of a dependency. Hard needs the full definition (an include),
// Soft is satisfied by a forward declaration.
type Strength int

const (
	None Strength = iota
	Soft
	Hard
)

func (s Strength) String() string {
	switch s {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	}
	return "none"
}

// Usage says how generated code uses a type.
type Usage int

const (
	UsePointer Usage = iota // only behind a pointer or reference
	UseBase                 // base class
	UseField                // declared field type
	UseValue                // by value, or constructed
	UseLayout               // member access, casts, conversions
)

func (u Usage) Strength() Strength {
	if u == UsePointer {
		return Soft
	}
	return Hard
}

// DependencySet records every type one artifact references. Hard
// dominates: a type once Hard is never downgraded.
type DependencySet struct {
	deps map[*resolved.Type]Strength
}

func NewDependencySet() *DependencySet {
	return &DependencySet{deps: make(map[*resolved.Type]Strength)}
}

// normalize maps t to the type whose declaration the generated code needs,
// or nil when no declaration is needed.
func normalize(t *resolved.Type) *resolved.Type {
	t = t.Erased()
	if t == nil || t.IsPrimitive() || t.IsNull() || t.Kind == resolved.TypeVar {
		return nil
	}
	return t
}

func (d *DependencySet) Use(t *resolved.Type, u Usage) {
	t = normalize(t)
	if t == nil {
		return
	}
	if s := u.Strength(); s > d.deps[t] {
		d.deps[t] = s
	}
}

func (d *DependencySet) Hard(t *resolved.Type) { d.Use(t, UseLayout) }
func (d *DependencySet) Soft(t *resolved.Type) { d.Use(t, UsePointer) }

func (d *DependencySet) Strength(t *resolved.Type) Strength {
	if t = normalize(t); t == nil {
		return None
	}
	return d.deps[t]
}

func (d *DependencySet) sorted(s Strength) []*resolved.Type {
	var types []*resolved.Type
	for t, ts := range d.deps {
		if ts == s {
			types = append(types, t)
		}
	}
	slices.SortFunc(types, func(a, b *resolved.Type) int {
		return strings.Compare(canonicalName(a), canonicalName(b))
	})
	return types
}

// HardDeps returns the Hard types ordered by canonical name.
func (d *DependencySet) HardDeps() []*resolved.Type { return d.sorted(Hard) }

// SoftDeps returns the Soft-only types ordered by canonical name.
func (d *DependencySet) SoftDeps() []*resolved.Type { return d.sorted(Soft) }

// Includes returns one include directive per Hard type.
func (d *DependencySet) Includes() []string {
	var lines []string
	for _, t := range d.HardDeps() {
		lines = append(lines, "#include <"+includePath(t)+">")
	}
	return lines
}

// ForwardDecls returns one forward declaration per Soft-only type.
func (d *DependencySet) ForwardDecls() []string {
	var lines []string
	for _, t := range d.SoftDeps() {
		lines = append(lines, forwardDecl(t))
	}
	return lines
}
