package models

import (
	"time"

	"gorm.io/gorm"
)

// Checklist is the onboarding template of exactly one organization.
type Checklist struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"uniqueIndex;not null" json:"organization_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Categories   []Category   `gorm:"foreignKey:ChecklistID" json:"categories,omitempty"`
}
