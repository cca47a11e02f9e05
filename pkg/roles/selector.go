package roles

import "github.com/campuscord/rolesync/pkg/attribute"

// Select computes the desired role set for a member from their
// attribute record. The result is not yet dependency-consistent; that
// is Reconcile's job.
//
// Priority slots are evaluated in declared order and are mutually
// exclusive: the first slot whose triggers intersect the normalized
// classification values fires, and no later slot is considered, even
// if the record would satisfy several tiers. The mapping table is
// evaluated independently of the slots.
//
// Roles that no longer resolve are dropped silently; a stale mapping
// never contributes to the desired set.
func Select(record attribute.Record, cfg Config, resolve Resolver) Set {
	desired := make(Set)

	classValues := record.Values(cfg.ClassificationKey)
	for _, slot := range cfg.Priority {
		if !intersects(slot.Triggers, classValues) {
			continue
		}
		if slot.RoleID != "" && resolve(slot.RoleID) {
			desired.Add(slot.RoleID)
		}
		break
	}

	for key, valueMap := range cfg.Mappings {
		for _, value := range record.Values(key) {
			roleID, ok := valueMap[value]
			if !ok {
				continue
			}
			if resolve(roleID) {
				desired.Add(roleID)
			}
		}
	}

	return desired
}

func intersects(triggers, values []string) bool {
	for _, trigger := range triggers {
		for _, value := range values {
			if trigger == value {
				return true
			}
		}
	}
	return false
}
