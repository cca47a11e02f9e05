// Package model defines the database models for rolesync.
//
// This package contains GORM models mapping to the rolesync
// PostgreSQL schema.
//
// # Core Models
//
//   - VerifiedIdentity: verified attribute records per member, with
//     verification, reminder and expiration timestamps
//   - RoleMapping: attribute value to role mappings per guild
//   - RoleDependency: declared role dependency edges per guild
//   - PrioritySlot: ordered priority classification rules per guild
//   - GuildSetting: per-guild synchronization settings
//
// # Database Schema
//
// The schema lives in db/migrations and is applied with
// "rolesyncctl db migrate":
//
//   - verified_identities: attribute records from the identity provider
//   - role_mappings: administrator-configured mapping table
//   - role_dependencies: dependency graph edges
//   - priority_slots: priority classification configuration
//   - guild_settings: guild-level toggles
package model
