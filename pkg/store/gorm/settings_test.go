package gorm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/store"
)

func TestSettingsStore_GuildSettings_Defaults(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectQuery(`SELECT auto_assign, sync_on_join, classification_key`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"auto_assign", "sync_on_join", "classification_key"}))

	settings, err := s.GuildSettings(context.Background(), "guild")
	require.NoError(t, err)
	assert.True(t, settings.AutoAssign)
	assert.True(t, settings.SyncOnJoin)
	assert.Equal(t, DefaultClassificationKey, settings.ClassificationKey)
}

func TestSettingsStore_AddMapping_NormalizesValue(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectExec(`INSERT INTO role_mappings`).
		WithArgs("guild", "groups", "esports", "role-esports").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.AddMapping(context.Background(), "guild", "groups", "Esports", "role-esports")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsStore_RemoveMapping_Missing(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectExec(`DELETE FROM role_mappings`).
		WithArgs("guild", "groups", "esports").
		WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err := s.RemoveMapping(context.Background(), "guild", "groups", "esports")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestSettingsStore_AddDependency_RejectsCycle(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	rows := sqlmock.NewRows([]string{"role_id", "required_role_id"}).
		AddRow("r1", "r2")
	mock.ExpectQuery(`SELECT role_id, required_role_id`).
		WithArgs("guild").
		WillReturnRows(rows)

	err := s.AddDependency(context.Background(), "guild", "r2", "r1")

	var cycleErr *roles.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"r1", "r2"}, cycleErr.Roles)
	// The insert must never run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsStore_AddDependency(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectQuery(`SELECT role_id, required_role_id`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "required_role_id"}))
	mock.ExpectExec(`INSERT INTO role_dependencies`).
		WithArgs("guild", "r2", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.AddDependency(context.Background(), "guild", "r2", "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsStore_ReplacePriority(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM priority_slots`).
		WithArgs("guild").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO priority_slots`).
		WithArgs("guild", 0, "student", "student", "role-student").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO priority_slots`).
		WithArgs("guild", 1, "faculty-staff", "faculty,staff,employee", "role-faculty").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.ReplacePriority(context.Background(), "guild", []roles.Slot{
		{Name: "student", Triggers: []string{"Student"}, RoleID: "role-student"},
		{Name: "faculty-staff", Triggers: []string{"faculty", "staff", "employee"}, RoleID: "role-faculty"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsStore_SetPriorityRole_UnknownSlot(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectExec(`UPDATE priority_slots SET role_id`).
		WithArgs("role-student", "guild", "nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetPriorityRole(context.Background(), "guild", "nonexistent", "role-student")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettingsStore_GuildConfig(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewSettingsStore(db)

	mock.ExpectQuery(`SELECT auto_assign, sync_on_join, classification_key`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"auto_assign", "sync_on_join", "classification_key"}).
			AddRow(true, true, DefaultClassificationKey))

	mock.ExpectQuery(`SELECT name, triggers, role_id`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"name", "triggers", "role_id"}).
			AddRow("student", "student", "role-student").
			AddRow("faculty-staff", "faculty,staff,employee", "role-faculty"))

	mock.ExpectQuery(`SELECT attribute_key, attribute_value, role_id`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"attribute_key", "attribute_value", "role_id"}).
			AddRow("groups", "esports", "role-esports"))

	mock.ExpectQuery(`SELECT role_id, required_role_id`).
		WithArgs("guild").
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "required_role_id"}).
			AddRow("role-esports", "role-student"))

	cfg, err := s.GuildConfig(context.Background(), "guild")
	require.NoError(t, err)

	assert.Equal(t, DefaultClassificationKey, cfg.ClassificationKey)
	require.Len(t, cfg.Priority, 2)
	assert.Equal(t, []string{"faculty", "staff", "employee"}, cfg.Priority[1].Triggers)
	assert.Equal(t, "role-esports", cfg.Mappings["groups"]["esports"])
	assert.Equal(t, []string{"role-student"}, cfg.Dependencies["role-esports"])
}
