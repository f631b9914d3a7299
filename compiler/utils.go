package compiler

import (
	"errors"
	"slices"

	"golang.org/x/exp/constraints"
)

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TopologicalSort performs a topological sort on the given graph.
// The input graph is a map where keys are nodes and values are slices of their dependencies.
// Dependencies come before their dependents; ties are broken by name.
func TopologicalSort(graph map[string][]string) ([]string, error) {
	// Track the state of each node: 0 = unvisited, 1 = visiting, 2 = visited
	visited := make(map[string]int)
	result := []string{}

	var visit func(string) error
	visit = func(node string) error {
		switch visited[node] {
		case 2:
			return nil
		case 1:
			return errors.New("cycle detected in the graph")
		}
		visited[node] = 1
		deps := slices.Clone(graph[node])
		slices.Sort(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visited[node] = 2
		result = append(result, node)
		return nil
	}

	for _, node := range sortedKeys(graph) {
		if err := visit(node); err != nil {
			return nil, err
		}
	}
	return result, nil
}

var cppKeywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {}, "bitand": {},
	"bitor": {}, "bool": {}, "compl": {}, "concept": {}, "const_cast": {}, "constexpr": {},
	"decltype": {}, "delete": {}, "dynamic_cast": {}, "explicit": {}, "export": {}, "extern": {},
	"friend": {}, "inline": {}, "mutable": {}, "namespace": {}, "noexcept": {}, "not": {},
	"not_eq": {}, "nullptr": {}, "operator": {}, "or": {}, "or_eq": {}, "register": {},
	"reinterpret_cast": {}, "requires": {}, "signed": {}, "sizeof": {}, "static_assert": {},
	"static_cast": {}, "struct": {}, "template": {}, "thread_local": {}, "typedef": {},
	"typeid": {}, "typename": {}, "union": {}, "unsigned": {}, "using": {}, "virtual": {},
	"xor": {}, "xor_eq": {}, "NULL": {}, "EOF": {}, "errno": {},
}

// identifier returns a C++-safe spelling of a source identifier.
func identifier(name string) string {
	if _, ok := cppKeywords[name]; ok {
		return name + "_"
	}
	return name
}
