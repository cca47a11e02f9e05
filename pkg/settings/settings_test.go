package settings

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/store"
)

const sampleDocument = `
classification_key: urn:oid:1.3.6.1.4.1.5923.1.1.1.1
settings:
  auto_assign: true
  sync_on_join: true
priority:
  - name: student
    triggers: [student]
    role: "198"
  - name: employee
    triggers: [faculty, staff, employee]
    role: "204"
mappings:
  urn:oid:2.5.4.11:
    mathematics: "311"
    physics: "312"
dependencies:
  "311": ["198"]
`

func TestParse(t *testing.T) {
	doc, err := ParseString(sampleDocument)
	require.NoError(t, err)

	assert.Equal(t, "urn:oid:1.3.6.1.4.1.5923.1.1.1.1", doc.ClassificationKey)
	assert.True(t, doc.Settings.AutoAssign)
	require.Len(t, doc.Priority, 2)
	assert.Equal(t, "student", doc.Priority[0].Name)
	assert.Equal(t, []string{"faculty", "staff", "employee"}, doc.Priority[1].Triggers)
	assert.Equal(t, "311", doc.Mappings["urn:oid:2.5.4.11"]["mathematics"])
	assert.Equal(t, []string{"198"}, doc.Dependencies["311"])
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name:    "unknown field",
			text:    "classification_key: x\nbogus: true\n",
			wantErr: "failed to parse document",
		},
		{
			name:    "unnamed slot",
			text:    "priority:\n  - triggers: [a]\n",
			wantErr: "has no name",
		},
		{
			name:    "duplicate slot",
			text:    "priority:\n  - name: a\n    triggers: [x]\n  - name: a\n    triggers: [y]\n",
			wantErr: "duplicate priority slot",
		},
		{
			name:    "slot without triggers",
			text:    "priority:\n  - name: a\n",
			wantErr: "has no triggers",
		},
		{
			name:    "mapping without role",
			text:    "mappings:\n  key:\n    value: \"\"\n",
			wantErr: "has no role",
		},
		{
			name:    "self dependency",
			text:    "dependencies:\n  \"1\": [\"1\"]\n",
			wantErr: "cannot require itself",
		},
		{
			name:    "dependency cycle",
			text:    "dependencies:\n  \"1\": [\"2\"]\n  \"2\": [\"1\"]\n",
			wantErr: "cycle",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.text)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tc.wantErr))
		})
	}
}

// memorySettings is an in-memory SettingsStore for apply tests.
type memorySettings struct {
	settings     map[string]store.Settings
	mappings     map[string][]store.Mapping
	dependencies map[string]roles.Graph
	priority     map[string][]roles.Slot
}

func newMemorySettings() *memorySettings {
	return &memorySettings{
		settings:     make(map[string]store.Settings),
		mappings:     make(map[string][]store.Mapping),
		dependencies: make(map[string]roles.Graph),
		priority:     make(map[string][]roles.Slot),
	}
}

func (m *memorySettings) GuildConfig(ctx context.Context, guildID string) (roles.Config, error) {
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

func (m *memorySettings) GuildSettings(ctx context.Context, guildID string) (store.Settings, error) {
	return m.settings[guildID], nil
}

func (m *memorySettings) UpdateGuildSettings(ctx context.Context, guildID string, s store.Settings) error {
	m.settings[guildID] = s
	return nil
}

func (m *memorySettings) AddMapping(ctx context.Context, guildID, key, value, roleID string) error {
	m.mappings[guildID] = append(m.mappings[guildID], store.Mapping{
		AttributeKey:   key,
		AttributeValue: strings.ToLower(value),
		RoleID:         roleID,
	})
	return nil
}

func (m *memorySettings) RemoveMapping(ctx context.Context, guildID, key, value string) (bool, error) {
	rows := m.mappings[guildID]
	for i, row := range rows {
		if row.AttributeKey == key && row.AttributeValue == value {
			m.mappings[guildID] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memorySettings) ListMappings(ctx context.Context, guildID string) ([]store.Mapping, error) {
	return append([]store.Mapping(nil), m.mappings[guildID]...), nil
}

func (m *memorySettings) AddDependency(ctx context.Context, guildID, roleID, requiredRoleID string) error {
	graph := m.dependencies[guildID]
	if graph == nil {
		graph = make(roles.Graph)
		m.dependencies[guildID] = graph
	}
	graph[roleID] = append(graph[roleID], requiredRoleID)
	return graph.Validate()
}

func (m *memorySettings) RemoveDependency(ctx context.Context, guildID, roleID, requiredRoleID string) (bool, error) {
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

func (m *memorySettings) Dependencies(ctx context.Context, guildID string) (roles.Graph, error) {
	out := make(roles.Graph, len(m.dependencies[guildID]))
	for roleID, required := range m.dependencies[guildID] {
		out[roleID] = append([]string(nil), required...)
	}
	return out, nil
}

func (m *memorySettings) ReplacePriority(ctx context.Context, guildID string, slots []roles.Slot) error {
	m.priority[guildID] = append([]roles.Slot(nil), slots...)
	return nil
}

func (m *memorySettings) SetPriorityRole(ctx context.Context, guildID, slotName, roleID string) error {
	for i, slot := range m.priority[guildID] {
		if slot.Name == slotName {
			m.priority[guildID][i].RoleID = roleID
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memorySettings) Priority(ctx context.Context, guildID string) ([]roles.Slot, error) {
	return append([]roles.Slot(nil), m.priority[guildID]...), nil
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	mem := newMemorySettings()

	result, err := NewApplier(mem, "guild-1").ApplyFromReader(ctx, strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Slots)
	assert.Equal(t, 2, result.Mappings)
	assert.Equal(t, 1, result.Dependencies)
	assert.False(t, result.DryRun)

	settings, err := mem.GuildSettings(ctx, "guild-1")
	require.NoError(t, err)
	assert.True(t, settings.AutoAssign)
	assert.Equal(t, "urn:oid:1.3.6.1.4.1.5923.1.1.1.1", settings.ClassificationKey)

	slots, err := mem.Priority(ctx, "guild-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "student", slots[0].Name)
}

func TestApplyReplacesExistingConfiguration(t *testing.T) {
	ctx := context.Background()
	mem := newMemorySettings()
	require.NoError(t, mem.AddMapping(ctx, "guild-1", "old-key", "old-value", "role-old"))
	require.NoError(t, mem.AddDependency(ctx, "guild-1", "role-old", "role-base"))

	_, err := NewApplier(mem, "guild-1").ApplyFromReader(ctx, strings.NewReader(sampleDocument))
	require.NoError(t, err)

	mappings, err := mem.ListMappings(ctx, "guild-1")
	require.NoError(t, err)
	for _, m := range mappings {
		assert.NotEqual(t, "old-key", m.AttributeKey)
	}

	graph, err := mem.Dependencies(ctx, "guild-1")
	require.NoError(t, err)
	assert.NotContains(t, graph, "role-old")
	assert.Contains(t, graph, "311")
}

func TestApplyDryRun(t *testing.T) {
	ctx := context.Background()
	mem := newMemorySettings()

	result, err := NewApplier(mem, "guild-1").
		WithDryRun(true).
		ApplyFromReader(ctx, strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Slots)

	mappings, err := mem.ListMappings(ctx, "guild-1")
	require.NoError(t, err)
	assert.Empty(t, mappings)
}
