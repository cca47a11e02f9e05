package roles

// Reconcile computes the dependency-consistent role changes for a
// member: the roles to grant out of desired, and the currently-held
// roles that must be revoked because a prerequisite is going away.
//
// A role is satisfiable under a candidate pool when every required
// role that still resolves is in the pool. The provisional add set is
// filtered against current ∪ desired, so a role may depend on another
// role granted in the same batch. The final add set is re-filtered
// against current ∪ provisional; the two pools differ when a desired
// role was itself dropped for unmet requirements.
//
// Forced removals are a single pass over direct dependents: a
// currently-held role that is not desired and whose currently-held,
// non-desired prerequisite is leaving gets revoked too. Chains of
// dependencies are not followed transitively.
//
// The grant set always wins over the remove set: a role slated for
// both stays granted and is dropped from the removals.
func Reconcile(desired, current Set, graph Graph, resolve Resolver) Result {
	provisional := make(Set)
	pool := current.Union(desired)
	for id := range desired {
		if satisfiable(id, pool, graph, resolve) {
			provisional.Add(id)
		}
	}

	remove := make(Set)
	for held := range current {
		if desired.Has(held) {
			continue
		}
		for _, dependent := range graph.Dependents(held) {
			if current.Has(dependent) && !desired.Has(dependent) {
				remove.Add(dependent)
			}
		}
	}

	add := make(Set)
	pool = current.Union(provisional)
	for id := range provisional {
		if current.Has(id) {
			// Already held; granting again would defeat idempotence.
			continue
		}
		if satisfiable(id, pool, graph, resolve) {
			add.Add(id)
		}
	}

	// Grant intent takes precedence over a cascade computed in the
	// same pass.
	for id := range add {
		remove.Remove(id)
	}

	return Result{Add: add, Remove: remove}
}

func satisfiable(roleID string, pool Set, graph Graph, resolve Resolver) bool {
	for _, required := range graph[roleID] {
		if !resolve(required) {
			continue
		}
		if !pool.Has(required) {
			return false
		}
	}
	return true
}
