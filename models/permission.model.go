package models

import "time"

const (
	RoleAdmin              = "admin"
	RoleMasterPractitioner = "master_practitioner"
	RolePractitioner       = "practitioner"
)

// Role is a named bundle of permissions. System roles cannot be renamed or deleted.
type Role struct {
	Base
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string       `json:"description"`
	IsSystem    bool         `gorm:"not null" json:"isSystem"`
	Permissions []Permission `gorm:"many2many:role_permissions;joinForeignKey:RoleID;joinReferences:PermissionID" json:"permissions,omitempty"`
}

type Permission struct {
	Base
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `json:"description"`
}

type RolePermission struct {
	RoleID       uint      `gorm:"primaryKey" json:"roleId"`
	PermissionID uint      `gorm:"primaryKey" json:"permissionId"`
	CreatedAt    time.Time `json:"createdAt"`
}
