package store

import (
	"context"
	"errors"
	"time"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/roles"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Identity is a member's verified attribute record with its
// verification lifecycle timestamps.
type Identity struct {
	MemberID         string
	Record           attribute.Record
	VerificationDate time.Time
	ReminderDate     time.Time
	ExpirationDate   time.Time
}

// IdentityStore abstracts verified-identity persistence.
type IdentityStore interface {
	// AttributeRecord returns the member's verified record, or
	// ok=false when the member has never verified.
	AttributeRecord(ctx context.Context, memberID string) (attribute.Record, bool, error)

	// FetchIdentity returns the full identity row.
	// Returns ErrNotFound when absent.
	FetchIdentity(ctx context.Context, memberID string) (*Identity, error)

	// Upsert stores a freshly verified record, resetting the
	// verification, reminder and expiration dates.
	Upsert(ctx context.Context, memberID string, record attribute.Record) error

	// Delete removes the member's record; reports whether one existed.
	Delete(ctx context.Context, memberID string) (bool, error)

	// MemberIDs lists every member with a verified record.
	MemberIDs(ctx context.Context) ([]string, error)

	// List returns all identities ordered by member ID.
	List(ctx context.Context) ([]Identity, error)

	// DeleteExpired removes records past their expiration date and
	// returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// DueReminders returns unexpired identities whose reminder date
	// has passed, soonest expiration first.
	DueReminders(ctx context.Context) ([]Identity, error)
}

// Mapping is one row of the administrator-configured mapping table.
type Mapping struct {
	AttributeKey   string
	AttributeValue string
	RoleID         string
}

// Settings holds guild-level synchronization toggles.
type Settings struct {
	AutoAssign        bool
	SyncOnJoin        bool
	ClassificationKey string
}

// SettingsStore abstracts guild configuration persistence.
type SettingsStore interface {
	// GuildConfig assembles the engine configuration for a guild.
	GuildConfig(ctx context.Context, guildID string) (roles.Config, error)

	// GuildSettings returns the guild toggles, defaults when unset.
	GuildSettings(ctx context.Context, guildID string) (Settings, error)

	// UpdateGuildSettings writes the guild toggles.
	UpdateGuildSettings(ctx context.Context, guildID string, settings Settings) error

	// AddMapping stores one mapping entry. The attribute value is
	// lower-cased so it matches the normalized record view.
	AddMapping(ctx context.Context, guildID, attributeKey, attributeValue, roleID string) error

	// RemoveMapping deletes one mapping entry; reports whether it
	// existed.
	RemoveMapping(ctx context.Context, guildID, attributeKey, attributeValue string) (bool, error)

	// ListMappings returns the guild's mapping table ordered by key
	// then value.
	ListMappings(ctx context.Context, guildID string) ([]Mapping, error)

	// AddDependency stores one dependency edge after checking that
	// the resulting graph stays acyclic. A cycle yields a
	// *roles.CycleError.
	AddDependency(ctx context.Context, guildID, roleID, requiredRoleID string) error

	// RemoveDependency deletes one edge; reports whether it existed.
	RemoveDependency(ctx context.Context, guildID, roleID, requiredRoleID string) (bool, error)

	// Dependencies returns the guild's dependency graph.
	Dependencies(ctx context.Context, guildID string) (roles.Graph, error)

	// ReplacePriority replaces the guild's priority classification,
	// keeping slot order.
	ReplacePriority(ctx context.Context, guildID string, slots []roles.Slot) error

	// SetPriorityRole points a named slot at a role. An empty roleID
	// clears the slot.
	SetPriorityRole(ctx context.Context, guildID, slotName, roleID string) error

	// Priority returns the guild's slots highest-priority first.
	Priority(ctx context.Context, guildID string) ([]roles.Slot, error)
}
