// Package sync orchestrates role synchronization runs.
//
// A Synchronizer wires the pure engine (pkg/roles) to its external
// collaborators: the identity store holding verified attribute
// records, the configuration store, and the platform client that
// reads and mutates member roles. Each run is a pure function of
// (attributes, configuration, current membership); the orchestrator
// owns no state beyond per-member serialization.
package sync
