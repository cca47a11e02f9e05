package model

// GuildSetting holds guild-level synchronization settings.
type GuildSetting struct {
	GuildID           string `gorm:"column:guild_id;primaryKey"`
	AutoAssign        bool   `gorm:"column:auto_assign;not null;default:true"`
	SyncOnJoin        bool   `gorm:"column:sync_on_join;not null;default:true"`
	ClassificationKey string `gorm:"column:classification_key;not null"`
}

func (GuildSetting) TableName() string {
	return "guild_settings"
}
