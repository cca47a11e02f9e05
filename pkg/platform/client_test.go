package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	reason string
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			reason: r.Header.Get(AuditReasonHeader),
		})
		require.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewClient(server.URL, "test-token"), &requests
}

func TestClient_MemberRoles(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/guild-1/members/1001", r.URL.Path)
		w.Write([]byte(`{"roles": ["guild-1", "role-a", "role-b"]}`))
	})

	current, ok, err := client.MemberRoles(context.Background(), "guild-1", "1001")
	require.NoError(t, err)
	require.True(t, ok)

	// The everyone role carries the guild's own identifier and must
	// be excluded from membership state.
	assert.Equal(t, []string{"role-a", "role-b"}, current.Sorted())
}

func TestClient_MemberRoles_NotInGuild(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, ok, err := client.MemberRoles(context.Background(), "guild-1", "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_GuildRoles(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/guild-1/roles", r.URL.Path)
		w.Write([]byte(`[{"id": "guild-1", "name": "@everyone"}, {"id": "role-a", "name": "Student"}]`))
	})

	existing, err := client.GuildRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"role-a"}, existing.Sorted())
}

func TestClient_ApplyRoleChanges_RemovesBeforeAdds(t *testing.T) {
	client, requests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.ApplyRoleChanges(context.Background(), "guild-1", "1001",
		[]string{"role-old"}, []string{"role-new"}, "Identity role synchronization")
	require.NoError(t, err)

	require.Len(t, *requests, 2)
	first, second := (*requests)[0], (*requests)[1]

	assert.Equal(t, http.MethodDelete, first.method)
	assert.Equal(t, "/guilds/guild-1/members/1001/roles/role-old", first.path)
	assert.Equal(t, http.MethodPut, second.method)
	assert.Equal(t, "/guilds/guild-1/members/1001/roles/role-new", second.path)
	assert.Equal(t, "Identity role synchronization", first.reason)
	assert.Equal(t, "Identity role synchronization", second.reason)
}

func TestClient_ApplyRoleChanges_SurfacesFailure(t *testing.T) {
	calls := 0
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`missing permissions`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// The removal succeeds, the addition fails: partial application
	// is surfaced, not rolled back.
	err := client.ApplyRoleChanges(context.Background(), "guild-1", "1001",
		[]string{"role-old"}, []string{"role-new"}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add role role-new")
	assert.Contains(t, err.Error(), "missing permissions")
}

func TestClient_GuildRoles_GuildMissing(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GuildRoles(context.Background(), "guild-gone")
	assert.ErrorContains(t, err, "not found")
}
