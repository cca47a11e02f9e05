package gorm

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/campuscord/rolesync/pkg/model"
	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/store"
)

// DefaultClassificationKey is the attribute that drives priority
// classification unless a guild overrides it (eduPersonAffiliation).
const DefaultClassificationKey = "urn:oid:1.3.6.1.4.1.5923.1.1.1.1"

// Ensure SettingsStore implements store.SettingsStore
var _ store.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements store.SettingsStore using GORM
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// GuildConfig assembles the engine configuration for a guild
func (s *SettingsStore) GuildConfig(ctx context.Context, guildID string) (roles.Config, error) {
	settings, err := s.GuildSettings(ctx, guildID)
	if err != nil {
		return roles.Config{}, err
	}

	priority, err := s.Priority(ctx, guildID)
	if err != nil {
		return roles.Config{}, err
	}

	mappings, err := s.ListMappings(ctx, guildID)
	if err != nil {
		return roles.Config{}, err
	}
	mappingTable := make(map[string]map[string]string)
	for _, m := range mappings {
		if mappingTable[m.AttributeKey] == nil {
			mappingTable[m.AttributeKey] = make(map[string]string)
		}
		mappingTable[m.AttributeKey][m.AttributeValue] = m.RoleID
	}

	graph, err := s.Dependencies(ctx, guildID)
	if err != nil {
		return roles.Config{}, err
	}
	if err := graph.Validate(); err != nil {
		return roles.Config{}, err
	}

	return roles.Config{
		ClassificationKey: settings.ClassificationKey,
		Priority:          priority,
		Mappings:          mappingTable,
		Dependencies:      graph,
	}, nil
}

// GuildSettings returns the guild toggles, defaults when unset
func (s *SettingsStore) GuildSettings(ctx context.Context, guildID string) (store.Settings, error) {
	var rows []model.GuildSetting
	err := s.db.WithContext(ctx).Raw(`
		SELECT auto_assign, sync_on_join, classification_key
		FROM guild_settings
		WHERE guild_id = ?
	`, guildID).Scan(&rows).Error
	if err != nil {
		return store.Settings{}, err
	}
	if len(rows) == 0 {
		return store.Settings{
			AutoAssign:        true,
			SyncOnJoin:        true,
			ClassificationKey: DefaultClassificationKey,
		}, nil
	}
	return store.Settings{
		AutoAssign:        rows[0].AutoAssign,
		SyncOnJoin:        rows[0].SyncOnJoin,
		ClassificationKey: rows[0].ClassificationKey,
	}, nil
}

// UpdateGuildSettings writes the guild toggles
func (s *SettingsStore) UpdateGuildSettings(ctx context.Context, guildID string, settings store.Settings) error {
	key := settings.ClassificationKey
	if key == "" {
		key = DefaultClassificationKey
	}
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO guild_settings (guild_id, auto_assign, sync_on_join, classification_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET
			auto_assign = EXCLUDED.auto_assign,
			sync_on_join = EXCLUDED.sync_on_join,
			classification_key = EXCLUDED.classification_key
	`, guildID, settings.AutoAssign, settings.SyncOnJoin, key).Error
}

// AddMapping stores one mapping entry
func (s *SettingsStore) AddMapping(ctx context.Context, guildID, attributeKey, attributeValue, roleID string) error {
	// Values are matched against the record's normalized view.
	value := strings.ToLower(attributeValue)
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO role_mappings (guild_id, attribute_key, attribute_value, role_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id, attribute_key, attribute_value) DO UPDATE SET
			role_id = EXCLUDED.role_id
	`, guildID, attributeKey, value, roleID).Error
}

// RemoveMapping deletes one mapping entry
func (s *SettingsStore) RemoveMapping(ctx context.Context, guildID, attributeKey, attributeValue string) (bool, error) {
	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM role_mappings
		WHERE guild_id = ? AND attribute_key = ? AND attribute_value = ?
	`, guildID, attributeKey, strings.ToLower(attributeValue))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListMappings returns the guild's mapping table
func (s *SettingsStore) ListMappings(ctx context.Context, guildID string) ([]store.Mapping, error) {
	var rows []model.RoleMapping
	err := s.db.WithContext(ctx).Raw(`
		SELECT attribute_key, attribute_value, role_id
		FROM role_mappings
		WHERE guild_id = ?
		ORDER BY attribute_key, attribute_value
	`, guildID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	mappings := make([]store.Mapping, 0, len(rows))
	for _, row := range rows {
		mappings = append(mappings, store.Mapping{
			AttributeKey:   row.AttributeKey,
			AttributeValue: row.AttributeValue,
			RoleID:         row.RoleID,
		})
	}
	return mappings, nil
}

// AddDependency stores one dependency edge, rejecting cycles
func (s *SettingsStore) AddDependency(ctx context.Context, guildID, roleID, requiredRoleID string) error {
	graph, err := s.Dependencies(ctx, guildID)
	if err != nil {
		return err
	}
	graph[roleID] = append(graph[roleID], requiredRoleID)
	if err := graph.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Exec(`
		INSERT INTO role_dependencies (guild_id, role_id, required_role_id)
		VALUES (?, ?, ?)
		ON CONFLICT (guild_id, role_id, required_role_id) DO NOTHING
	`, guildID, roleID, requiredRoleID).Error
}

// RemoveDependency deletes one edge
func (s *SettingsStore) RemoveDependency(ctx context.Context, guildID, roleID, requiredRoleID string) (bool, error) {
	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM role_dependencies
		WHERE guild_id = ? AND role_id = ? AND required_role_id = ?
	`, guildID, roleID, requiredRoleID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Dependencies returns the guild's dependency graph
func (s *SettingsStore) Dependencies(ctx context.Context, guildID string) (roles.Graph, error) {
	var rows []model.RoleDependency
	err := s.db.WithContext(ctx).Raw(`
		SELECT role_id, required_role_id
		FROM role_dependencies
		WHERE guild_id = ?
		ORDER BY role_id, required_role_id
	`, guildID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	graph := make(roles.Graph)
	for _, row := range rows {
		graph[row.RoleID] = append(graph[row.RoleID], row.RequiredRoleID)
	}
	return graph, nil
}

// ReplacePriority replaces the guild's priority classification
func (s *SettingsStore) ReplacePriority(ctx context.Context, guildID string, slots []roles.Slot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM priority_slots WHERE guild_id = ?`, guildID).Error; err != nil {
			return err
		}
		for i, slot := range slots {
			triggers := strings.ToLower(strings.Join(slot.Triggers, ","))
			err := tx.Exec(`
				INSERT INTO priority_slots (guild_id, position, name, triggers, role_id)
				VALUES (?, ?, ?, ?, ?)
			`, guildID, i, slot.Name, triggers, slot.RoleID).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SetPriorityRole points a named slot at a role
func (s *SettingsStore) SetPriorityRole(ctx context.Context, guildID, slotName, roleID string) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE priority_slots SET role_id = ?
		WHERE guild_id = ? AND name = ?
	`, roleID, guildID, slotName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Priority returns the guild's slots highest-priority first
func (s *SettingsStore) Priority(ctx context.Context, guildID string) ([]roles.Slot, error) {
	var rows []model.PrioritySlot
	err := s.db.WithContext(ctx).Raw(`
		SELECT name, triggers, role_id
		FROM priority_slots
		WHERE guild_id = ?
		ORDER BY position
	`, guildID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	slots := make([]roles.Slot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, roles.Slot{
			Name:     row.Name,
			Triggers: splitTriggers(row.Triggers),
			RoleID:   row.RoleID,
		})
	}
	return slots, nil
}

func splitTriggers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
