// Package store defines the persistence interfaces the
// synchronization engine consumes: verified identity records and
// per-guild configuration. The gorm subpackage implements them
// against PostgreSQL.
package store
