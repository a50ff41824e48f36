package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleEmployee   UserRole = "EMPLOYEE"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// IsAdmin reports whether the role carries organization-admin rights.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"type:varchar(255);not null" json:"-"`
	Role           UserRole       `gorm:"type:varchar(20);not null;default:'EMPLOYEE'" json:"role"`
	OrganizationID uint64         `gorm:"not null" json:"organization_id"`
	BuddyID        *uint64        `json:"buddy_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization   `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Buddy        *User          `gorm:"foreignKey:BuddyID" json:"buddy,omitempty"`
	Progress     []TaskProgress `gorm:"foreignKey:UserID" json:"-"`
}
