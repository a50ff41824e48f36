package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	// No column default: gorm skips zero values on insert when one is
	// set, which would turn an explicit false back into true.
	BuddyEnabled bool           `gorm:"not null" json:"buddy_enabled"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Checklist *Checklist `gorm:"foreignKey:OrganizationID" json:"checklist,omitempty"`
	Users     []User     `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
}
