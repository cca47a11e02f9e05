package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/store"
)

const affiliationKey = "urn:oid:1.3.6.1.4.1.5923.1.1.1.1"

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

func identityColumns() []string {
	return []string{"member_id", "attributes", "verification_date", "reminder_date", "expiration_date"}
}

func TestIdentityStore_AttributeRecord(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	now := time.Now()
	rows := sqlmock.NewRows(identityColumns()).
		AddRow("1001", []byte(`{"urn:oid:1.3.6.1.4.1.5923.1.1.1.1": ["Student"]}`), now, now, now)
	mock.ExpectQuery(`SELECT member_id, attributes, verification_date, reminder_date, expiration_date`).
		WithArgs("1001").
		WillReturnRows(rows)

	record, ok, err := s.AttributeRecord(context.Background(), "1001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"student"}, record.Values(affiliationKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityStore_AttributeRecord_Absent(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	mock.ExpectQuery(`SELECT member_id, attributes`).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(identityColumns()))

	_, ok, err := s.AttributeRecord(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityStore_AttributeRecord_Corrupt(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	now := time.Now()
	rows := sqlmock.NewRows(identityColumns()).
		AddRow("1001", []byte(`not json`), now, now, now)
	mock.ExpectQuery(`SELECT member_id, attributes`).
		WithArgs("1001").
		WillReturnRows(rows)

	_, _, err := s.AttributeRecord(context.Background(), "1001")
	assert.ErrorContains(t, err, "corrupt attribute record")
}

func TestIdentityStore_Upsert_SetsWindows(t *testing.T) {
	db, mock := setupTestDB(t)

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	s := NewIdentityStore(db)
	s.now = func() time.Time { return base }

	record := attribute.New(map[string]any{affiliationKey: []any{"student"}})

	mock.ExpectExec(`INSERT INTO verified_identities`).
		WithArgs(
			"1001",
			sqlmock.AnyArg(),
			base,
			base.Add(DefaultReminderAfter),
			base.Add(DefaultExpireAfter),
			base,
			base,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Upsert(context.Background(), "1001", record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityStore_Delete(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	mock.ExpectExec(`DELETE FROM verified_identities`).
		WithArgs("1001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	existed, err := s.Delete(context.Background(), "1001")
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestIdentityStore_Delete_Missing(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	mock.ExpectExec(`DELETE FROM verified_identities`).
		WithArgs("unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err := s.Delete(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestIdentityStore_MemberIDs(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	rows := sqlmock.NewRows([]string{"member_id"}).AddRow("1001").AddRow("1002")
	mock.ExpectQuery(`SELECT member_id FROM verified_identities ORDER BY member_id`).
		WillReturnRows(rows)

	ids, err := s.MemberIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002"}, ids)
}

func TestIdentityStore_DeleteExpired(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	mock.ExpectExec(`DELETE FROM verified_identities WHERE expiration_date`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := s.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestIdentityStore_DueReminders(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	now := time.Now()
	rows := sqlmock.NewRows(identityColumns()).
		AddRow("1001", []byte(`{"urn:oid:1.3.6.1.4.1.5923.1.1.1.1": ["alum"]}`), now, now, now.Add(time.Hour))
	mock.ExpectQuery(`WHERE reminder_date <= (.+) AND expiration_date >`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	identities, err := s.DueReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "1001", identities[0].MemberID)
	assert.Equal(t, []string{"alum"}, identities[0].Record.Values(affiliationKey))
}

func TestIdentityStore_FetchIdentity_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewIdentityStore(db)

	mock.ExpectQuery(`SELECT member_id, attributes`).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(identityColumns()))

	_, err := s.FetchIdentity(context.Background(), "unknown")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
