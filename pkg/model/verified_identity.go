package model

import "time"

// VerifiedIdentity holds the attribute record asserted by the identity
// provider for one member, plus the verification lifecycle timestamps.
type VerifiedIdentity struct {
	MemberID         string    `gorm:"column:member_id;primaryKey"`
	Attributes       []byte    `gorm:"column:attributes;type:jsonb"`
	VerificationDate time.Time `gorm:"column:verification_date"`
	ReminderDate     time.Time `gorm:"column:reminder_date"`
	ExpirationDate   time.Time `gorm:"column:expiration_date"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (VerifiedIdentity) TableName() string {
	return "verified_identities"
}
