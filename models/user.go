package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCreator  = "creator"
	RoleBusiness = "business"
)

// User is an authenticated account. The ID is the token subject.
type User struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	Name      string         `json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;size:16" json:"role"` // "creator" or "business"
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Actor is the calling identity resolved for a single API call.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsCreator() bool {
	return a.Role == RoleCreator
}

func (a Actor) IsBusiness() bool {
	return a.Role == RoleBusiness
}

// ValidRole reports whether role is one of the two marketplace roles.
func ValidRole(role string) bool {
	return role == RoleCreator || role == RoleBusiness
}
