// Package roles implements the role synchronization engine: selecting
// the target role set for a member from their identity attributes, and
// reconciling that target against the member's current roles under a
// declared dependency graph.
//
// The engine is pure. Role identifiers are resolved against the live
// platform role list through a caller-supplied Resolver; the engine
// never touches the network or the database.
//
// # Flow
//
//   - Select combines the priority classification with the general
//     attribute mapping table into the desired role set.
//   - Reconcile turns (desired, current, graph) into a
//     dependency-consistent add set and remove set.
//
// The surrounding sync package drives this per member and applies the
// result through the platform client.
package roles
