package audit

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(
			sqlmock.AnyArg(), // timestamp
			FacilityAuth,
			int(SeverityInfo),
			sqlmock.AnyArg(), // hostname
			"rolesync",
			sqlmock.AnyArg(), // procid
			"sync",
			sqlmock.AnyArg(), // structured data
			sqlmock.AnyArg(), // message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(SyncEvent{
		GuildID:  "guild-1",
		MemberID: "member-1",
		Outcome:  "no_change",
	})
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec("INSERT INTO messages").
		WillReturnError(assert.AnError)

	err = store.Save(CleanupEvent{Removed: 2})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert audit message")
}
