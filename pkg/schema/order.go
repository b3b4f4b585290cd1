package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fixgen/fixgen/pkg/errors"
)

// Order computes a deterministic generation order for the given entity
// types. A type must come after every allowlisted target of its required
// reference fields, so that reference sampling always finds published
// identifiers. Optional reference fields do not constrain the order; they
// may legitimately stay empty early in a run.
//
// The result is a stable topological sort (Kahn's algorithm with a
// lexicographically sorted ready set). A cycle among required references
// is a configuration error.
func Order(r *Registry, names []string) ([]string, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		if !r.Has(name) {
			return nil, errors.NewConfigError("schema",
				fmt.Sprintf("unknown entity type %q in allowlist", name), nil)
		}
		allowed[name] = true
	}

	// Build edges target -> dependent over required reference fields.
	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for name := range allowed {
		indegree[name] += 0
		t, _ := r.Type(name)
		for _, f := range t.RequiredReferences() {
			// A self-reference cannot seed itself: the first record of a type
			// has nothing earlier to point at. Only targets of other types
			// count as a base case for a required field.
			inScope := 0
			for _, target := range f.Targets {
				if !allowed[target] || target == name {
					continue
				}
				inScope++
				dependents[target] = append(dependents[target], name)
				indegree[name]++
			}
			if inScope == 0 {
				return nil, errors.NewConfigError("schema",
					fmt.Sprintf("required reference %s.%s has no target in the requested types (%s)",
						name, f.Name, strings.Join(f.Targets, ", ")), nil)
			}
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(order) != len(indegree) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, errors.NewConfigError("schema",
			fmt.Sprintf("required references form a cycle with no base case: %s", strings.Join(stuck, ", ")),
			errors.ErrCyclicSchema)
	}
	return order, nil
}

// insertSorted inserts s into a sorted slice, keeping it sorted.
func insertSorted(sorted []string, s string) []string {
	i := sort.SearchStrings(sorted, s)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = s
	return sorted
}
