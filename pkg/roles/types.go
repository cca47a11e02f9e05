package roles

import "sort"

// Resolver reports whether a role identifier still resolves against
// the platform's live role list. Mappings and dependency entries that
// point at deleted roles degrade by omission.
type Resolver func(roleID string) bool

// Set is an unordered collection of role identifiers.
type Set map[string]struct{}

// NewSet builds a Set from the given identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an identifier.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes an identifier.
func (s Set) Remove(id string) {
	delete(s, id)
}

// Union returns a new set with the members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the identifiers in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Slot is one rule of the priority classification: if any of its
// trigger values matches the member's classification attribute, the
// slot's role is granted and all lower-priority slots are skipped.
// RoleID may be empty for an unconfigured slot.
type Slot struct {
	Name     string   `yaml:"name" json:"name"`
	Triggers []string `yaml:"triggers" json:"triggers"`
	RoleID   string   `yaml:"role" json:"role"`
}

// Config is the per-guild engine configuration, assembled fresh from
// the configuration store for every synchronization run.
type Config struct {
	// ClassificationKey is the attribute whose values drive the
	// priority slots (eduPersonAffiliation in the reference setup).
	ClassificationKey string

	// Priority lists the classification slots highest-priority first.
	Priority []Slot

	// Mappings maps attribute key -> attribute value -> role ID.
	// Values are matched against the normalized (lower-cased) view of
	// the record, so they must be stored lower-cased.
	Mappings map[string]map[string]string

	// Dependencies declares which roles require which other roles.
	Dependencies Graph
}

// Result is the outcome of reconciliation: the roles to grant and the
// roles to revoke. The two sets are disjoint; when a role qualifies
// for both, the grant wins.
type Result struct {
	Add    Set
	Remove Set
}

// Empty reports whether the result calls for no changes at all.
func (r Result) Empty() bool {
	return len(r.Add) == 0 && len(r.Remove) == 0
}
