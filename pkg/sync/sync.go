package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/roles"
)

// Audit log reasons attached to platform mutations.
const (
	ReasonRemoval = "Role dependency enforcement"
	ReasonGrant   = "Identity role synchronization"
)

// IdentitySource provides verified attribute records. Implemented by
// the identity persistence layer.
type IdentitySource interface {
	// AttributeRecord returns the member's verified record, or
	// ok=false if the member has never verified.
	AttributeRecord(ctx context.Context, memberID string) (attribute.Record, bool, error)

	// MemberIDs lists every member with a verified record.
	MemberIDs(ctx context.Context) ([]string, error)
}

// ConfigSource provides the per-guild engine configuration, sourced
// fresh for every run.
type ConfigSource interface {
	GuildConfig(ctx context.Context, guildID string) (roles.Config, error)
}

// Platform reads and mutates member roles on the chat platform.
type Platform interface {
	// MemberRoles returns the member's current role set, excluding
	// the implicit everyone role. ok=false if the member is not in
	// the guild.
	MemberRoles(ctx context.Context, guildID, memberID string) (roles.Set, bool, error)

	// GuildRoles returns the identifiers of all roles that currently
	// exist in the guild.
	GuildRoles(ctx context.Context, guildID string) (roles.Set, error)

	// ApplyRoleChanges removes and then grants roles for a member.
	// Removals are applied before additions. A human-readable reason
	// accompanies each mutation for the platform's audit log.
	ApplyRoleChanges(ctx context.Context, guildID, memberID string, remove, add []string, reason string) error
}

// Result describes a completed synchronization run for one member.
type Result struct {
	Outcome Outcome
	Added   []string
	Removed []string
}

// Synchronizer drives role synchronization runs against the
// collaborators. The zero value is not usable; construct with New.
//
// SyncMember is safe to call concurrently for different members; calls
// for the same guild+member are serialized internally.
type Synchronizer struct {
	identities IdentitySource
	configs    ConfigSource
	platform   Platform

	locks       *memberLocks
	concurrency int
	joinDelay   time.Duration
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithConcurrency bounds the number of members synced in parallel
// during a bulk run.
func WithConcurrency(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithJoinDelay sets the grace period applied by SyncOnJoin before
// the member's state is read.
func WithJoinDelay(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.joinDelay = d
	}
}

// New creates a Synchronizer.
func New(identities IdentitySource, configs ConfigSource, platform Platform, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		identities:  identities,
		configs:     configs,
		platform:    platform,
		locks:       newMemberLocks(),
		concurrency: 4,
		joinDelay:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncMember reconciles one member's roles with their verified
// attributes. Expected conditions (no identity data, nothing to do)
// are reported as outcomes; the error is non-nil only for collaborator
// failures, and accompanies the ApplyFailed outcome when the platform
// mutation fails.
func (s *Synchronizer) SyncMember(ctx context.Context, guildID, memberID string) (Result, error) {
	unlock := s.locks.lock(guildID + "/" + memberID)
	defer unlock()

	record, ok, err := s.identities.AttributeRecord(ctx, memberID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch attribute record: %w", err)
	}
	if !ok {
		return Result{Outcome: NoIdentityData}, nil
	}

	cfg, err := s.configs.GuildConfig(ctx, guildID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load guild configuration: %w", err)
	}

	current, ok, err := s.platform.MemberRoles(ctx, guildID, memberID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read member roles: %w", err)
	}
	if !ok {
		return Result{Outcome: MemberNotInGuild}, nil
	}

	existing, err := s.platform.GuildRoles(ctx, guildID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list guild roles: %w", err)
	}
	resolve := roles.Resolver(existing.Has)

	desired := roles.Select(record, cfg, resolve)
	changes := roles.Reconcile(desired, current, cfg.Dependencies, resolve)
	if changes.Empty() {
		return Result{Outcome: NoChange}, nil
	}

	result := Result{
		Added:   changes.Add.Sorted(),
		Removed: changes.Remove.Sorted(),
	}

	if err := s.platform.ApplyRoleChanges(ctx, guildID, memberID, result.Removed, result.Added, applyReason(changes)); err != nil {
		result.Outcome = ApplyFailed
		return result, fmt.Errorf("failed to apply role changes: %w", err)
	}

	result.Outcome = Applied
	return result, nil
}

// SyncOnJoin waits out the configured grace period before syncing a
// freshly joined member, giving other provisioning systems time to
// settle before current state is read.
func (s *Synchronizer) SyncOnJoin(ctx context.Context, guildID, memberID string) (Result, error) {
	timer := time.NewTimer(s.joinDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-timer.C:
	}
	return s.SyncMember(ctx, guildID, memberID)
}

func applyReason(changes roles.Result) string {
	if len(changes.Add) == 0 {
		return ReasonRemoval
	}
	return ReasonGrant
}
