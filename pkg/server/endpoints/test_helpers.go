package endpoints

import (
	"context"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/store"
	"github.com/campuscord/rolesync/pkg/sync"
)

// memIdentities is an in-memory IdentityStore for endpoint tests.
type memIdentities struct {
	identities map[string]store.Identity
}

func newMemIdentities() *memIdentities {
	return &memIdentities{identities: make(map[string]store.Identity)}
}

func (m *memIdentities) AttributeRecord(ctx context.Context, memberID string) (attribute.Record, bool, error) {
	identity, ok := m.identities[memberID]
	if !ok {
		return nil, false, nil
	}
	return identity.Record, true, nil
}

func (m *memIdentities) FetchIdentity(ctx context.Context, memberID string) (*store.Identity, error) {
	identity, ok := m.identities[memberID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &identity, nil
}

func (m *memIdentities) Upsert(ctx context.Context, memberID string, record attribute.Record) error {
	now := time.Now()
	m.identities[memberID] = store.Identity{
		MemberID:         memberID,
		Record:           record,
		VerificationDate: now,
		ReminderDate:     now.Add(365 * 24 * time.Hour),
		ExpirationDate:   now.Add(395 * 24 * time.Hour),
	}
	return nil
}

func (m *memIdentities) Delete(ctx context.Context, memberID string) (bool, error) {
	_, ok := m.identities[memberID]
	delete(m.identities, memberID)
	return ok, nil
}

func (m *memIdentities) MemberIDs(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(m.identities))
	for id := range m.identities {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memIdentities) List(ctx context.Context) ([]store.Identity, error) {
	ids, _ := m.MemberIDs(ctx)
	out := make([]store.Identity, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.identities[id])
	}
	return out, nil
}

func (m *memIdentities) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	now := time.Now()
	for id, identity := range m.identities {
		if identity.ExpirationDate.Before(now) {
			delete(m.identities, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memIdentities) DueReminders(ctx context.Context) ([]store.Identity, error) {
	now := time.Now()
	var out []store.Identity
	for _, identity := range m.identities {
		if identity.ReminderDate.Before(now) && identity.ExpirationDate.After(now) {
			out = append(out, identity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpirationDate.Before(out[j].ExpirationDate)
	})
	return out, nil
}

// memSettings is an in-memory SettingsStore for endpoint tests.
type memSettings struct {
	settings     map[string]store.Settings
	mappings     map[string][]store.Mapping
	dependencies map[string]roles.Graph
	priority     map[string][]roles.Slot
}

func newMemSettings() *memSettings {
	return &memSettings{
		settings:     make(map[string]store.Settings),
		mappings:     make(map[string][]store.Mapping),
		dependencies: make(map[string]roles.Graph),
		priority:     make(map[string][]roles.Slot),
	}
}

func (m *memSettings) GuildConfig(ctx context.Context, guildID string) (roles.Config, error) {
	cfg := roles.Config{
		ClassificationKey: m.settings[guildID].ClassificationKey,
		Priority:          m.priority[guildID],
		Mappings:          make(map[string]map[string]string),
		Dependencies:      m.dependencies[guildID],
	}
	for _, mapping := range m.mappings[guildID] {
		if cfg.Mappings[mapping.AttributeKey] == nil {
			cfg.Mappings[mapping.AttributeKey] = make(map[string]string)
		}
		cfg.Mappings[mapping.AttributeKey][mapping.AttributeValue] = mapping.RoleID
	}
	return cfg, nil
}

func (m *memSettings) GuildSettings(ctx context.Context, guildID string) (store.Settings, error) {
	return m.settings[guildID], nil
}

func (m *memSettings) UpdateGuildSettings(ctx context.Context, guildID string, s store.Settings) error {
	m.settings[guildID] = s
	return nil
}

func (m *memSettings) AddMapping(ctx context.Context, guildID, key, value, roleID string) error {
	m.mappings[guildID] = append(m.mappings[guildID], store.Mapping{
		AttributeKey:   key,
		AttributeValue: strings.ToLower(value),
		RoleID:         roleID,
	})
	return nil
}

func (m *memSettings) RemoveMapping(ctx context.Context, guildID, key, value string) (bool, error) {
	rows := m.mappings[guildID]
	for i, row := range rows {
		if row.AttributeKey == key && row.AttributeValue == value {
			m.mappings[guildID] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memSettings) ListMappings(ctx context.Context, guildID string) ([]store.Mapping, error) {
	return append([]store.Mapping(nil), m.mappings[guildID]...), nil
}

func (m *memSettings) AddDependency(ctx context.Context, guildID, roleID, requiredRoleID string) error {
	graph := m.dependencies[guildID]
	if graph == nil {
		graph = make(roles.Graph)
		m.dependencies[guildID] = graph
	}
	graph[roleID] = append(graph[roleID], requiredRoleID)
	if err := graph.Validate(); err != nil {
		graph[roleID] = graph[roleID][:len(graph[roleID])-1]
		return err
	}
	return nil
}

func (m *memSettings) RemoveDependency(ctx context.Context, guildID, roleID, requiredRoleID string) (bool, error) {
	graph := m.dependencies[guildID]
	for i, req := range graph[roleID] {
		if req == requiredRoleID {
			graph[roleID] = append(graph[roleID][:i], graph[roleID][i+1:]...)
			if len(graph[roleID]) == 0 {
				delete(graph, roleID)
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memSettings) Dependencies(ctx context.Context, guildID string) (roles.Graph, error) {
	out := make(roles.Graph, len(m.dependencies[guildID]))
	for roleID, required := range m.dependencies[guildID] {
		out[roleID] = append([]string(nil), required...)
	}
	return out, nil
}

func (m *memSettings) ReplacePriority(ctx context.Context, guildID string, slots []roles.Slot) error {
	m.priority[guildID] = append([]roles.Slot(nil), slots...)
	return nil
}

func (m *memSettings) SetPriorityRole(ctx context.Context, guildID, slotName, roleID string) error {
	for i, slot := range m.priority[guildID] {
		if slot.Name == slotName {
			m.priority[guildID][i].RoleID = roleID
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memSettings) Priority(ctx context.Context, guildID string) ([]roles.Slot, error) {
	return append([]roles.Slot(nil), m.priority[guildID]...), nil
}

// fakePlatform is an in-memory sync.Platform for endpoint tests.
type fakePlatform struct {
	members    map[string]roles.Set
	guildRoles roles.Set
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:    make(map[string]roles.Set),
		guildRoles: roles.NewSet(),
	}
}

func (p *fakePlatform) MemberRoles(ctx context.Context, guildID, memberID string) (roles.Set, bool, error) {
	current, ok := p.members[memberID]
	if !ok {
		return nil, false, nil
	}
	return current, true, nil
}

func (p *fakePlatform) GuildRoles(ctx context.Context, guildID string) (roles.Set, error) {
	return p.guildRoles, nil
}

func (p *fakePlatform) ApplyRoleChanges(ctx context.Context, guildID, memberID string, remove, add []string, reason string) error {
	current := p.members[memberID]
	for _, id := range remove {
		current.Remove(id)
	}
	for _, id := range add {
		current.Add(id)
	}
	return nil
}

const testSecret = "endpoint-test-secret"

type testHarness struct {
	server     *server.Server
	identities *memIdentities
	settings   *memSettings
	platform   *fakePlatform
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	identities := newMemIdentities()
	settings := newMemSettings()
	platform := newFakePlatform()

	synchronizer := sync.New(identities, settings, platform)
	srv := server.NewServer(identities, settings, synchronizer, "localhost", "0", []byte(testSecret))
	RegisterAll(srv)

	return &testHarness{
		server:     srv,
		identities: identities,
		settings:   settings,
		platform:   platform,
	}
}

// request performs an authenticated request against the test server.
func (h *testHarness) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	token, err := h.server.Auth.IssueToken("test-admin", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.server.Router.ServeHTTP(w, req)
	return w
}
