package gorm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/model"
	"github.com/campuscord/rolesync/pkg/store"
)

// Verification lifecycle defaults, matching the identity provider's
// annual re-verification policy.
const (
	DefaultReminderAfter = 365 * 24 * time.Hour
	DefaultExpireAfter   = 395 * 24 * time.Hour
)

// Ensure IdentityStore implements store.IdentityStore
var _ store.IdentityStore = (*IdentityStore)(nil)

// IdentityStore implements store.IdentityStore using GORM
type IdentityStore struct {
	db            *gorm.DB
	reminderAfter time.Duration
	expireAfter   time.Duration
	now           func() time.Time
}

// NewIdentityStore creates a new IdentityStore with the default
// reminder and expiration windows.
func NewIdentityStore(db *gorm.DB) *IdentityStore {
	return &IdentityStore{
		db:            db,
		reminderAfter: DefaultReminderAfter,
		expireAfter:   DefaultExpireAfter,
		now:           time.Now,
	}
}

// WithWindows overrides the reminder and expiration windows.
func (s *IdentityStore) WithWindows(reminderAfter, expireAfter time.Duration) *IdentityStore {
	s.reminderAfter = reminderAfter
	s.expireAfter = expireAfter
	return s
}

// Ping verifies the backing database connection.
func (s *IdentityStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AttributeRecord returns the member's verified record
func (s *IdentityStore) AttributeRecord(ctx context.Context, memberID string) (attribute.Record, bool, error) {
	var rows []model.VerifiedIdentity
	err := s.db.WithContext(ctx).Raw(`
		SELECT member_id, attributes, verification_date, reminder_date, expiration_date
		FROM verified_identities
		WHERE member_id = ?
	`, memberID).Scan(&rows).Error
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	record, err := attribute.FromJSON(rows[0].Attributes)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt attribute record for %s: %w", memberID, err)
	}
	return record, true, nil
}

// FetchIdentity returns the full identity row
func (s *IdentityStore) FetchIdentity(ctx context.Context, memberID string) (*store.Identity, error) {
	var rows []model.VerifiedIdentity
	err := s.db.WithContext(ctx).Raw(`
		SELECT member_id, attributes, verification_date, reminder_date, expiration_date
		FROM verified_identities
		WHERE member_id = ?
	`, memberID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rowToIdentity(rows[0])
}

// Upsert stores a freshly verified record
func (s *IdentityStore) Upsert(ctx context.Context, memberID string, record attribute.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode attribute record: %w", err)
	}

	now := s.now().UTC()
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO verified_identities
			(member_id, attributes, verification_date, reminder_date, expiration_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id) DO UPDATE SET
			attributes = EXCLUDED.attributes,
			verification_date = EXCLUDED.verification_date,
			reminder_date = EXCLUDED.reminder_date,
			expiration_date = EXCLUDED.expiration_date,
			updated_at = EXCLUDED.updated_at
	`, memberID, data, now, now.Add(s.reminderAfter), now.Add(s.expireAfter), now, now).Error
}

// Delete removes the member's record
func (s *IdentityStore) Delete(ctx context.Context, memberID string) (bool, error) {
	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM verified_identities WHERE member_id = ?
	`, memberID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MemberIDs lists every member with a verified record
func (s *IdentityStore) MemberIDs(ctx context.Context) ([]string, error) {
	type memberRow struct {
		MemberID string `gorm:"column:member_id"`
	}
	var rows []memberRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT member_id FROM verified_identities ORDER BY member_id
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MemberID)
	}
	return ids, nil
}

// List returns all identities ordered by member ID
func (s *IdentityStore) List(ctx context.Context) ([]store.Identity, error) {
	return s.scanIdentities(ctx, `
		SELECT member_id, attributes, verification_date, reminder_date, expiration_date
		FROM verified_identities
		ORDER BY member_id
	`)
}

// DeleteExpired removes records past their expiration date
func (s *IdentityStore) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM verified_identities WHERE expiration_date < ?
	`, s.now().UTC())
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DueReminders returns unexpired identities past their reminder date
func (s *IdentityStore) DueReminders(ctx context.Context) ([]store.Identity, error) {
	now := s.now().UTC()
	return s.scanIdentities(ctx, `
		SELECT member_id, attributes, verification_date, reminder_date, expiration_date
		FROM verified_identities
		WHERE reminder_date <= ? AND expiration_date > ?
		ORDER BY expiration_date
	`, now, now)
}

func (s *IdentityStore) scanIdentities(ctx context.Context, query string, args ...interface{}) ([]store.Identity, error) {
	var rows []model.VerifiedIdentity
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	identities := make([]store.Identity, 0, len(rows))
	for _, row := range rows {
		identity, err := rowToIdentity(row)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, nil
}

func rowToIdentity(row model.VerifiedIdentity) (*store.Identity, error) {
	record, err := attribute.FromJSON(row.Attributes)
	if err != nil {
		return nil, fmt.Errorf("corrupt attribute record for %s: %w", row.MemberID, err)
	}
	return &store.Identity{
		MemberID:         row.MemberID,
		Record:           record,
		VerificationDate: row.VerificationDate,
		ReminderDate:     row.ReminderDate,
		ExpirationDate:   row.ExpirationDate,
	}, nil
}
