package models

import (
	"time"

	"gorm.io/gorm"
)

// BuddyPreparation is a placeholder for a person who has not been hired
// yet. The assigned buddy can complete buddy tasks against it before an
// account exists; once a user signs up with a matching email the
// preparation is linked via LinkedUserID. Linking does not deactivate the
// row, only an explicit DELETE does.
type BuddyPreparation struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	FirstName      string         `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName       string         `gorm:"type:varchar(255);not null" json:"last_name"`
	Email          string         `gorm:"type:varchar(255);index" json:"email,omitempty"`
	BuddyID        uint64         `gorm:"not null" json:"buddy_id"`
	OrganizationID uint64         `gorm:"index;not null" json:"organization_id"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	LinkedUserID   *uint64        `json:"linked_user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Buddy        User                          `gorm:"foreignKey:BuddyID" json:"buddy,omitempty"`
	Organization Organization                  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	LinkedUser   *User                         `gorm:"foreignKey:LinkedUserID" json:"linked_user,omitempty"`
	Progress     []BuddyPreparationTaskProgress `gorm:"foreignKey:PreparationID" json:"-"`
}

// BuddyPreparationTaskProgress mirrors TaskProgress but is scoped to a
// preparation placeholder instead of a real user.
type BuddyPreparationTaskProgress struct {
	PreparationID uint64     `gorm:"primarykey" json:"preparation_id"`
	TaskID        uint64     `gorm:"primarykey" json:"task_id"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Preparation BuddyPreparation `gorm:"foreignKey:PreparationID" json:"preparation,omitempty"`
	Task        Task             `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
