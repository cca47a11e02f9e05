package model

// RoleDependency is one edge of the dependency graph: RoleID cannot
// be held without RequiredRoleID.
type RoleDependency struct {
	GuildID        string `gorm:"column:guild_id;primaryKey"`
	RoleID         string `gorm:"column:role_id;primaryKey"`
	RequiredRoleID string `gorm:"column:required_role_id;primaryKey"`
}

func (RoleDependency) TableName() string {
	return "role_dependencies"
}
