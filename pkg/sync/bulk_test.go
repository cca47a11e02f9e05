package sync

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/roles"
)

func TestSyncGuild_Counts(t *testing.T) {
	identities, configs, platform, _ := newFixture(studentConfig())
	s := New(identities, configs, platform, WithConcurrency(2))

	// alice needs the student role, bob is already in sync, carol has
	// a record but left the guild.
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})
	identities.records["bob"] = attribute.New(map[string]any{affiliationKey: "faculty"})
	identities.records["carol"] = attribute.New(map[string]any{affiliationKey: "alum"})
	platform.members["alice"] = roles.NewSet()
	platform.members["bob"] = roles.NewSet("role-faculty")

	result, err := s.SyncGuild(context.Background(), "guild")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.RunID)
}

func TestSyncGuild_CancelledContext(t *testing.T) {
	identities, configs, platform, _ := newFixture(studentConfig())
	s := New(identities, configs, platform)
	identities.records["alice"] = attribute.New(map[string]any{affiliationKey: "student"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SyncGuild(ctx, "guild")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemberLocks_Serializes(t *testing.T) {
	locks := newMemberLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		peak    int
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("guild/alice")
			defer unlock()

			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak, "same-member runs must not overlap")
}

func TestMemberLocks_ReleasesEntries(t *testing.T) {
	locks := newMemberLocks()

	unlock := locks.lock("guild/alice")
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks, "released entries must be reclaimed")
}
