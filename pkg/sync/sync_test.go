package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/roles"
)

const affiliationKey = "urn:oid:1.3.6.1.4.1.5923.1.1.1.1"

type fakeIdentities struct {
	records map[string]attribute.Record
	err     error
}

func (f *fakeIdentities) AttributeRecord(_ context.Context, memberID string) (attribute.Record, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	record, ok := f.records[memberID]
	return record, ok, nil
}

func (f *fakeIdentities) MemberIDs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeConfigs struct {
	cfg roles.Config
}

func (f *fakeConfigs) GuildConfig(context.Context, string) (roles.Config, error) {
	return f.cfg, nil
}

type appliedChange struct {
	memberID string
	removed  []string
	added    []string
	reason   string
}

type fakePlatform struct {
	roles    roles.Set
	members  map[string]roles.Set
	applyErr error
	applied  []appliedChange
}

func (f *fakePlatform) MemberRoles(_ context.Context, _, memberID string) (roles.Set, bool, error) {
	current, ok := f.members[memberID]
	if !ok {
		return nil, false, nil
	}
	copied := make(roles.Set, len(current))
	for id := range current {
		copied.Add(id)
	}
	return copied, true, nil
}

func (f *fakePlatform) GuildRoles(context.Context, string) (roles.Set, error) {
	return f.roles, nil
}

func (f *fakePlatform) ApplyRoleChanges(_ context.Context, _, memberID string, remove, add []string, reason string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, appliedChange{memberID: memberID, removed: remove, added: add, reason: reason})
	current := f.members[memberID]
	for _, id := range remove {
		current.Remove(id)
	}
	for _, id := range add {
		current.Add(id)
	}
	return nil
}

func studentConfig() roles.Config {
	return roles.Config{
		ClassificationKey: affiliationKey,
		Priority: []roles.Slot{
			{Name: "student", Triggers: []string{"student"}, RoleID: "role-student"},
			{Name: "faculty-staff", Triggers: []string{"faculty", "staff", "employee"}, RoleID: "role-faculty"},
			{Name: "alum", Triggers: []string{"alum"}, RoleID: "role-alum"},
		},
	}
}

func newFixture(cfg roles.Config) (*fakeIdentities, *fakeConfigs, *fakePlatform, *Synchronizer) {
	identities := &fakeIdentities{records: map[string]attribute.Record{}}
	configs := &fakeConfigs{cfg: cfg}
	platform := &fakePlatform{
		roles:   roles.NewSet("role-student", "role-faculty", "role-alum", "role-verified"),
		members: map[string]roles.Set{},
	}
	return identities, configs, platform, New(identities, configs, platform)
}

func TestSyncMember_NoIdentityData(t *testing.T) {
	_, _, platform, s := newFixture(studentConfig())
	platform.members["alice"] = roles.NewSet()

	result, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)
	assert.Equal(t, NoIdentityData, result.Outcome)
	assert.Empty(t, platform.applied)
}

func TestSyncMember_AppliesStudentRole(t *testing.T) {
	identities, _, platform, s := newFixture(studentConfig())
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "Student"})
	platform.members["alice"] = roles.NewSet()

	result, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)

	assert.Equal(t, Applied, result.Outcome)
	assert.Equal(t, []string{"role-student"}, result.Added)
	assert.Empty(t, result.Removed)
	assert.True(t, platform.members["alice"].Has("role-student"))
}

func TestSyncMember_Idempotent(t *testing.T) {
	identities, _, platform, s := newFixture(studentConfig())
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})
	platform.members["alice"] = roles.NewSet()

	first, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)
	require.Equal(t, Applied, first.Outcome)

	second, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)
	assert.Equal(t, NoChange, second.Outcome)
	assert.Len(t, platform.applied, 1)
}

func TestSyncMember_CascadeRemoval(t *testing.T) {
	cfg := studentConfig()
	cfg.Dependencies = roles.Graph{"role-verified": {"role-student"}}
	identities, _, platform, s := newFixture(cfg)

	// Attributes changed: no longer a student, nothing desired.
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "affiliate"})
	platform.members["alice"] = roles.NewSet("role-student", "role-verified")

	result, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)

	assert.Equal(t, Applied, result.Outcome)
	assert.Equal(t, []string{"role-verified"}, result.Removed)
	assert.Empty(t, result.Added)

	require.Len(t, platform.applied, 1)
	assert.Equal(t, ReasonRemoval, platform.applied[0].reason)
}

func TestSyncMember_RemovalsBeforeAdditions(t *testing.T) {
	cfg := studentConfig()
	cfg.Dependencies = roles.Graph{"role-verified": {"role-alum"}}
	identities, _, platform, s := newFixture(cfg)

	// Transitioning alum -> student: the alum role is not revoked by
	// the engine (non-desired roles without dependents stay), but the
	// dependent verified role goes, and the student role arrives in
	// the same batch. The platform client receives removals first.
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})
	platform.members["alice"] = roles.NewSet("role-alum", "role-verified")

	result, err := s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)
	require.Equal(t, Applied, result.Outcome)

	require.Len(t, platform.applied, 1)
	change := platform.applied[0]
	assert.Equal(t, []string{"role-verified"}, change.removed)
	assert.Equal(t, []string{"role-student"}, change.added)
}

func TestSyncMember_ApplyFailed(t *testing.T) {
	identities, _, platform, s := newFixture(studentConfig())
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})
	platform.members["alice"] = roles.NewSet()
	platform.applyErr = errors.New("rate limited")

	result, err := s.SyncMember(context.Background(), "guild", "alice")

	assert.Equal(t, ApplyFailed, result.Outcome)
	assert.ErrorContains(t, err, "rate limited")

	// Retrying after the platform recovers succeeds with the same
	// changes.
	platform.applyErr = nil
	result, err = s.SyncMember(context.Background(), "guild", "alice")
	require.NoError(t, err)
	assert.Equal(t, Applied, result.Outcome)
}

func TestSyncMember_MemberNotInGuild(t *testing.T) {
	// Verified but absent from the guild is its own outcome, distinct
	// from a member who never verified.
	identities, _, _, s := newFixture(studentConfig())
	identities.records["ghost"] = attribute.New(map[string]any{affiliationKey: "student"})

	result, err := s.SyncMember(context.Background(), "guild", "ghost")
	require.NoError(t, err)
	assert.Equal(t, MemberNotInGuild, result.Outcome)
}

func TestSyncMember_IdentityStoreError(t *testing.T) {
	identities, _, _, s := newFixture(studentConfig())
	identities.err = errors.New("connection refused")

	_, err := s.SyncMember(context.Background(), "guild", "alice")
	assert.ErrorContains(t, err, "attribute record")
}

func TestSyncOnJoin_CancelledDuringGrace(t *testing.T) {
	identities, _, platform, _ := newFixture(studentConfig())
	s := New(identities, &fakeConfigs{cfg: studentConfig()}, platform, WithJoinDelay(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SyncOnJoin(ctx, "guild", "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncOnJoin_RunsAfterGrace(t *testing.T) {
	identities, _, platform, _ := newFixture(studentConfig())
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})
	platform.members["alice"] = roles.NewSet()
	s := New(identities, &fakeConfigs{cfg: studentConfig()}, platform, WithJoinDelay(time.Millisecond))

	result, err := s.SyncOnJoin(context.Background(), "guild", "alice")
	require.NoError(t, err)
	assert.Equal(t, Applied, result.Outcome)
}
