package roles

import (
	"fmt"
	"sort"
	"strings"
)

// Graph declares role dependencies: graph[role] lists the roles that
// must also be held (or simultaneously granted) for role to be held.
// Roles without an entry have no requirements.
type Graph map[string][]string

// Requires reports whether target lists required as a prerequisite.
func (g Graph) Requires(target, required string) bool {
	for _, id := range g[target] {
		if id == required {
			return true
		}
	}
	return false
}

// Dependents returns the roles that list roleID as a prerequisite.
func (g Graph) Dependents(roleID string) []string {
	var out []string
	for target := range g {
		if g.Requires(target, roleID) {
			out = append(out, target)
		}
	}
	sort.Strings(out)
	return out
}

// CycleError reports a dependency cycle found during validation.
type CycleError struct {
	// Roles are the identifiers participating in the cycle, in
	// lexical order.
	Roles []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("role dependency cycle involving: %s", strings.Join(e.Roles, ", "))
}

// Validate checks that the graph is cycle-free using Kahn's
// topological ordering. Reconcile assumes an acyclic graph, so this
// runs whenever a configuration is written or loaded, never on the
// hot resolution path.
func (g Graph) Validate() error {
	indegree := make(map[string]int, len(g))
	for target, required := range g {
		if _, ok := indegree[target]; !ok {
			indegree[target] = 0
		}
		for _, req := range required {
			indegree[req]++
		}
	}

	queue := make([]string, 0, len(indegree))
	for id, degree := range indegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, req := range g[id] {
			indegree[req]--
			if indegree[req] == 0 {
				queue = append(queue, req)
			}
		}
	}

	if visited == len(indegree) {
		return nil
	}

	var cycle []string
	for id, degree := range indegree {
		if degree > 0 {
			cycle = append(cycle, id)
		}
	}
	sort.Strings(cycle)
	return &CycleError{Roles: cycle}
}
