package model

import "time"

const (
	RoleIDUser  uint = 1
	RoleIDAdmin uint = 2

	RoleNameUser  = "user"
	RoleNameAdmin = "admin"
)

type Role struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Login        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"login"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	RoleID       uint      `gorm:"not null;default:1;index" json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RoleName is the role carried in access tokens.
func (u *User) RoleName() string {
	if u.RoleID == RoleIDAdmin {
		return RoleNameAdmin
	}
	return RoleNameUser
}
