package model

// RoleMapping maps one attribute (key, value) pair to a role for a
// guild. A (guild, key, value) triple maps to at most one role; a
// role may appear under many values.
type RoleMapping struct {
	GuildID        string `gorm:"column:guild_id;primaryKey"`
	AttributeKey   string `gorm:"column:attribute_key;primaryKey"`
	AttributeValue string `gorm:"column:attribute_value;primaryKey"`
	RoleID         string `gorm:"column:role_id;not null"`
}

func (RoleMapping) TableName() string {
	return "role_mappings"
}
