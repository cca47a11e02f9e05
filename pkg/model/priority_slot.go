package model

// PrioritySlot is one rule of a guild's priority classification.
// Position orders the slots, lowest first = highest priority.
// Triggers is a comma-separated list of lower-cased trigger values.
// RoleID is empty for a slot with no role configured.
type PrioritySlot struct {
	GuildID  string `gorm:"column:guild_id;primaryKey"`
	Position int    `gorm:"column:position;primaryKey"`
	Name     string `gorm:"column:name;not null"`
	Triggers string `gorm:"column:triggers;not null"`
	RoleID   string `gorm:"column:role_id"`
}

func (PrioritySlot) TableName() string {
	return "priority_slots"
}
